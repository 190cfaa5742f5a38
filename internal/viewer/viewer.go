// Package viewer is the desktop front end: the garment in 3D, the 2D
// placement guide and a control panel, drawn with raylib.
package viewer

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"shirtforge/internal/design"
	"shirtforge/internal/export"
	"shirtforge/internal/geom"
	"shirtforge/internal/live"
	"shirtforge/internal/logging"
	"shirtforge/internal/placement"
	"shirtforge/internal/raycast"
	"shirtforge/internal/region"
	"shirtforge/internal/texture"
)

const guideMargin = 16

type Options struct {
	Title          string
	Width, Height  int
	ExportDir      string
	Layout         design.Storage
	RecordDuration time.Duration
	RecordFPS      int
	FontSize       float64
	ListenAddr     string // shown in the panel when a live hub is attached
}

// Viewer runs the window. All store access happens on the render thread,
// including work queued by an attached live hub.
type Viewer struct {
	opts   Options
	store  *design.Store
	ctrl   *placement.Controller
	placer *raycast.Adapter
	hub    *live.Hub

	rig    *Rig
	scene  *scene
	guide  *guide
	images *texture.Cache[image.Image]
	rec    export.Recorder

	recDone     <-chan export.Result
	followed    region.Region
	orbiting    bool
	sweep       bool
	text        string
	editingText bool
	status      string
	statusAt    float64
}

func New(store *design.Store, ctrl *placement.Controller, placer *raycast.Adapter, opts Options) *Viewer {
	if opts.Title == "" {
		opts.Title = "shirtforge"
	}
	if opts.RecordFPS <= 0 {
		opts.RecordFPS = 30
	}
	if opts.RecordDuration <= 0 {
		opts.RecordDuration = 5 * time.Second
	}
	v := &Viewer{
		opts:   opts,
		store:  store,
		ctrl:   ctrl,
		placer: placer,
		rig:    NewRig(),
		images: texture.NewCache(func(ref string) (image.Image, error) {
			return texture.Load(ref)
		}, nil),
	}
	v.scene = newScene(hexColor(store.Color(), design.DefaultShirtColor))
	v.guide = newGuide(store, ctrl, v.scene.textures.Get)
	v.followed = store.ActiveRegion()
	v.rig.Yaw = ctrl.Mapper().Registry.CameraYaw(v.followed)
	v.rig.Follow(v.rig.Yaw)

	store.OnChange.AddListener(func(c design.Change) {
		switch c.Kind {
		case design.DecalRemoved, design.DesignReset, design.SnapshotApplied:
			v.sweep = true
		}
	})
	return v
}

// SetHub attaches a live session. Its queued work runs once per frame.
func (v *Viewer) SetHub(h *live.Hub) { v.hub = h }

// Run opens the window and blocks until it is closed.
func (v *Viewer) Run() error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(v.opts.Width), int32(v.opts.Height), v.opts.Title)
	defer rl.CloseWindow()
	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(60)
	initStyle()
	defer v.scene.unload()

	logging.L().Info("viewer: window open", "width", v.opts.Width, "height", v.opts.Height)
	for !rl.WindowShouldClose() {
		v.frame(float64(rl.GetFrameTime()))
	}
	v.rec.Stop()
	return nil
}

// screenLayout splits a w×h window into the 3D viewport, the guide and the
// side panel. The guide keeps its size and sits right of the viewport.
func screenLayout(w, h float64, guide geom.Vec2) (view, guideRect, panel geom.Rect) {
	panel = geom.Rect{X: w - panelWidth, Width: panelWidth, Height: h}
	gx := panel.X - guide.X - guideMargin
	guideRect = geom.Rect{X: gx, Y: guideMargin, Width: guide.X, Height: guide.Y}
	view = geom.Rect{Width: max(1, gx-guideMargin), Height: h}
	return view, guideRect, panel
}

func (v *Viewer) frame(dt float64) {
	if v.hub != nil {
		v.hub.Pump()
	}
	v.handleFileDrop()

	w, h := float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
	view, guideRect, panel := screenLayout(w, h, v.ctrl.Container())
	v.guide.origin = geom.Vec2{X: guideRect.X, Y: guideRect.Y}
	v.scene.resize(int32(view.Width), int32(view.Height))

	mouse := fromVec2(rl.GetMousePosition())
	consumed := v.guide.update(mouse,
		rl.IsMouseButtonPressed(rl.MouseLeftButton),
		rl.IsMouseButtonDown(rl.MouseLeftButton),
		rl.IsMouseButtonReleased(rl.MouseLeftButton))
	if !consumed && view.Contains(mouse) {
		v.handleSceneInput(mouse.Sub(geom.Vec2{X: view.X, Y: view.Y}))
	}
	if !rl.IsMouseButtonDown(rl.MouseRightButton) {
		v.orbiting = false
	}

	if r := v.store.ActiveRegion(); r != v.followed {
		v.followed = r
		v.rig.Follow(v.ctrl.Mapper().Registry.CameraYaw(r))
	}
	v.rig.Step(dt)

	if v.sweep {
		v.sweep = false
		decals := v.store.Decals()
		v.scene.sweep(decals)
		keep := make(map[string]bool, len(decals))
		for _, d := range decals {
			keep[d.Texture] = true
		}
		v.images.Retain(keep)
	}

	st := v.store.State()
	v.scene.render(st, v.rig, dt)
	v.rec.Offer(time.Now(), v.scene.capture)
	v.pollRecording()

	rl.BeginDrawing()
	rl.ClearBackground(colorBgDark)
	v.scene.present(rl.Vector2{X: float32(view.X), Y: float32(view.Y)})
	if v.rec.Recording() {
		rl.DrawCircle(int32(view.X)+20, 20, 8, rl.Red)
	}
	v.guide.draw(st)
	v.drawPanel(rect(panel))
	rl.EndDrawing()
}

// handleSceneInput orbits on right drag and zooms on the wheel. A left
// click places the selected decal where it hits the garment. Orbit is off
// while a gesture is running. p is relative to the viewport.
func (v *Viewer) handleSceneInput(p geom.Vec2) {
	if v.store.IsManipulating() {
		return
	}
	if rl.IsMouseButtonPressed(rl.MouseRightButton) {
		v.orbiting = true
	}
	if v.orbiting && rl.IsMouseButtonDown(rl.MouseRightButton) {
		d := rl.GetMouseDelta()
		v.rig.Orbit(float64(d.X), float64(d.Y))
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.rig.Zoom(float64(wheel))
	}

	if !rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		return
	}
	hit, ok := v.scene.pick(v.rig, p)
	if !ok {
		return
	}
	placed, err := v.placer.PlaceSelected(hit)
	if err != nil {
		v.notify(fmt.Sprintf("Place failed: %v", err))
		return
	}
	if placed {
		logging.L().Debug("viewer: placed on garment", "region", hit.Region)
	}
}

// handleFileDrop adds each dropped image as a decal on the active region.
func (v *Viewer) handleFileDrop() {
	if !rl.IsFileDropped() {
		return
	}
	files := rl.LoadDroppedFiles()
	defer rl.UnloadDroppedFiles()

	for _, file := range files {
		v.addImage(file)
	}
}

func (v *Viewer) addImage(path string) {
	img, err := texture.Load(path)
	if err != nil {
		v.notify(fmt.Sprintf("Unsupported file: %s", filepath.Base(path)))
		logging.L().Warn("viewer: image rejected", "path", path, "err", err)
		return
	}
	ref, err := texture.EncodeDataURI(texture.Fit(img, maxTextureSide))
	if err != nil {
		v.notify(fmt.Sprintf("Import failed: %v", err))
		return
	}
	v.store.AddDecal(ref, design.KindImage)
	v.notify("Added " + filepath.Base(path))
}

func (v *Viewer) addText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	img, err := texture.RenderText(text, texture.TextOptions{FontSize: v.opts.FontSize})
	if err != nil {
		v.notify(fmt.Sprintf("Text failed: %v", err))
		return
	}
	ref, err := texture.EncodeDataURI(img)
	if err != nil {
		v.notify(fmt.Sprintf("Text failed: %v", err))
		return
	}
	v.store.AddDecal(ref, design.KindText)
	v.text = ""
}

func (v *Viewer) saveLayout() {
	if v.opts.Layout == nil {
		return
	}
	if err := v.store.SaveLayout(v.opts.Layout); err != nil {
		v.notify(fmt.Sprintf("Save failed: %v", err))
		return
	}
	v.notify("Layout saved")
}

func (v *Viewer) loadLayout() {
	if v.opts.Layout == nil {
		return
	}
	if err := v.store.LoadLayout(v.opts.Layout); err != nil {
		v.notify(fmt.Sprintf("Load failed: %v", err))
		return
	}
	v.notify("Layout loaded")
}

// exportStill saves the current 3D view, named after the active region.
func (v *Viewer) exportStill(f export.Format) {
	img, err := v.scene.capture()
	if err == nil {
		var path string
		path, err = export.SaveImage(v.opts.ExportDir, v.store.ActiveRegion(), img, f)
		if err == nil {
			v.notify("Saved " + path)
			return
		}
	}
	logging.L().Error("viewer: export failed", "format", f, "err", err)
	v.notify("Export failed")
}

func (v *Viewer) exportSheet() {
	st := v.store.State()
	m := v.ctrl.Mapper()
	size := v.ctrl.Container()
	preview := export.Preview(st, m, size, v.images.Get)
	path := filepath.Join(v.opts.ExportDir, export.SheetName(st.ActiveRegion))
	if err := export.DesignSheet(path, st, m, size, preview); err != nil {
		logging.L().Error("viewer: design sheet failed", "err", err)
		v.notify("Export failed")
		return
	}
	v.notify("Saved " + path)
}

func (v *Viewer) toggleRecording() {
	if v.rec.Recording() {
		v.rec.Stop()
		return
	}
	dir := export.VideoDir(v.opts.ExportDir)
	if err := v.rec.Start(dir, v.opts.RecordDuration, v.opts.RecordFPS, time.Now()); err != nil {
		v.notify(fmt.Sprintf("Recording failed: %v", err))
		return
	}
	v.recDone = v.rec.Done()
	v.notify("Recording...")
}

func (v *Viewer) pollRecording() {
	if v.recDone == nil {
		return
	}
	select {
	case res := <-v.recDone:
		v.recDone = nil
		if res.Err != nil {
			v.notify("Recording failed")
			return
		}
		v.notify(fmt.Sprintf("Recorded %d frames to %s", res.Frames, res.Dir))
	default:
	}
}

func (v *Viewer) notify(msg string) {
	v.status = msg
	v.statusAt = rl.GetTime()
}
