package viewer

import (
	"errors"
	"image"
	"image/draw"

	rl "github.com/gen2brain/raylib-go/raylib"

	"shirtforge/internal/design"
	"shirtforge/internal/geom"
	"shirtforge/internal/raycast"
	"shirtforge/internal/texture"
)

const (
	maxTextureSide = 1024
	decalLift      = 0.002 // keeps decals off the panel surface
	pickDistance   = 100
	colorRate      = 8
)

var errUpload = errors.New("viewer: texture upload failed")

// scene renders the garment into an offscreen target the size of the 3D
// viewport. Exports and recordings read frames back from the same target.
type scene struct {
	panels   []raycast.Panel
	shirt    tint
	target   rl.RenderTexture2D
	textures *texture.Cache[rl.Texture2D]
}

func newScene(shirt rl.Color) *scene {
	return &scene{
		panels:   raycast.GarmentPanels(),
		shirt:    tintOf(shirt),
		textures: texture.NewCache(loadTexture, rl.UnloadTexture),
	}
}

func loadTexture(ref string) (rl.Texture2D, error) {
	img, err := texture.Load(ref)
	if err != nil {
		return rl.Texture2D{}, err
	}
	tex := rl.LoadTextureFromImage(rl.NewImageFromImage(texture.Fit(img, maxTextureSide)))
	if tex.ID == 0 {
		return tex, errUpload
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	return tex, nil
}

// resize recreates the render target when the viewport size changes.
func (s *scene) resize(w, h int32) {
	if s.target.ID != 0 && s.target.Texture.Width == w && s.target.Texture.Height == h {
		return
	}
	if s.target.ID != 0 {
		rl.UnloadRenderTexture(s.target)
	}
	s.target = rl.LoadRenderTexture(w, h)
}

func (s *scene) unload() {
	s.textures.Clear()
	if s.target.ID != 0 {
		rl.UnloadRenderTexture(s.target)
		s.target = rl.RenderTexture2D{}
	}
}

// render draws the garment and its visible decals into the target.
func (s *scene) render(st design.State, rig *Rig, dt float64) {
	s.shirt.ease(hexColor(st.ShirtColor, design.DefaultShirtColor), colorRate, dt)
	shirt := s.shirt.color()

	rl.BeginTextureMode(s.target)
	rl.ClearBackground(hexColor(st.BackgroundColor, design.DefaultBackgroundColor))
	rl.BeginMode3D(rig.Camera3D())

	for _, p := range s.panels {
		center := vec3(p.Min.Add(p.Max).Scale(0.5))
		size := vec3(p.Max.Sub(p.Min))
		rl.DrawCubeV(center, size, shirt)
		rl.DrawCubeWiresV(center, size, shade(shirt, 0.3))
	}
	for _, d := range st.Decals {
		if !d.Visible {
			continue
		}
		tex, ok := s.textures.Get(d.Texture)
		if !ok {
			continue
		}
		drawDecal(tex, d, d.ID == st.ActiveDecalID)
	}

	rl.EndMode3D()
	rl.EndTextureMode()
}

// drawDecal draws tex as a quad on the decal's local XY plane, posed by its
// position and XYZ Euler rotation.
func drawDecal(tex rl.Texture2D, d design.Decal, selected bool) {
	hw := float32(d.Scale.X / 2)
	hh := float32(d.Scale.Y / 2)

	rl.PushMatrix()
	rl.Translatef(float32(d.Position.X), float32(d.Position.Y), float32(d.Position.Z))
	rl.Rotatef(float32(geom.Rad2Deg(d.Rotation.X)), 1, 0, 0)
	rl.Rotatef(float32(geom.Rad2Deg(d.Rotation.Y)), 0, 1, 0)
	rl.Rotatef(float32(geom.Rad2Deg(d.Rotation.Z)), 0, 0, 1)
	rl.Translatef(0, 0, decalLift)

	rl.SetTexture(tex.ID)
	rl.Begin(rl.Quads)
	rl.Color4ub(255, 255, 255, 255)
	rl.Normal3f(0, 0, 1)
	rl.TexCoord2f(0, 1)
	rl.Vertex3f(-hw, -hh, 0)
	rl.TexCoord2f(1, 1)
	rl.Vertex3f(hw, -hh, 0)
	rl.TexCoord2f(1, 0)
	rl.Vertex3f(hw, hh, 0)
	rl.TexCoord2f(0, 0)
	rl.Vertex3f(-hw, hh, 0)
	rl.End()
	rl.SetTexture(0)

	if selected {
		rl.DrawCubeWiresV(rl.Vector3{}, rl.Vector3{X: 2 * hw, Y: 2 * hh, Z: 0.001}, colorAccent)
	}
	rl.PopMatrix()
}

// present draws the target at pos. Render textures are stored upside down.
func (s *scene) present(pos rl.Vector2) {
	src := rl.Rectangle{Width: float32(s.target.Texture.Width), Height: -float32(s.target.Texture.Height)}
	rl.DrawTextureRec(s.target.Texture, src, pos, rl.White)
}

// capture reads the last rendered frame back as an image.
func (s *scene) capture() (image.Image, error) {
	if s.target.ID == 0 {
		return nil, errors.New("viewer: nothing rendered yet")
	}
	img := rl.LoadImageFromTexture(s.target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)

	src := img.ToImage()
	out := image.NewNRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out, nil
}

// pick casts a ray through viewport point p against the garment panels.
func (s *scene) pick(rig *Rig, p geom.Vec2) (raycast.Hit, bool) {
	w := float64(s.target.Texture.Width)
	h := float64(s.target.Texture.Height)
	if w <= 0 || h <= 0 {
		return raycast.Hit{}, false
	}
	origin, dir := rig.Ray(p, w, h)
	return raycast.Cast(origin, dir, s.panels, pickDistance)
}

// sweep releases textures no decal refers to any more.
func (s *scene) sweep(decals []design.Decal) {
	keep := make(map[string]bool, len(decals))
	for _, d := range decals {
		keep[d.Texture] = true
	}
	s.textures.Retain(keep)
}
