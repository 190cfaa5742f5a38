package viewer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"shirtforge/internal/design"
	"shirtforge/internal/geom"
	"shirtforge/internal/placement"
)

// guide is the 2D placement overlay. It owns the gesture widget and the
// live overlay styles the controller pushes while a gesture runs.
type guide struct {
	store  *design.Store
	ctrl   *placement.Controller
	widget placement.Widget
	live   map[string]placement.OverlayStyle
	tex    func(ref string) (rl.Texture2D, bool)
	origin geom.Vec2 // screen position of the top-left corner
}

func newGuide(store *design.Store, ctrl *placement.Controller, tex func(string) (rl.Texture2D, bool)) *guide {
	g := &guide{
		store: store,
		ctrl:  ctrl,
		live:  make(map[string]placement.OverlayStyle),
		tex:   tex,
	}
	ctrl.SetOverlay(placement.OverlayFunc(g.apply))
	store.OnChange.AddListener(func(c design.Change) {
		if c.Kind == design.ManipulationChanged && !store.IsManipulating() {
			clear(g.live)
		}
	})
	return g
}

func (g *guide) apply(id string, s placement.OverlayStyle) {
	g.live[id] = s
}

// style is where d's element is drawn: the live style during a gesture,
// otherwise the one derived from the store.
func (g *guide) style(d design.Decal) placement.OverlayStyle {
	if s, ok := g.live[d.ID]; ok {
		return s
	}
	return g.ctrl.OverlayOf(d)
}

func (g *guide) bounds() geom.Rect {
	size := g.ctrl.Container()
	return geom.Rect{X: g.origin.X, Y: g.origin.Y, Width: size.X, Height: size.Y}
}

// hit finds the topmost visible decal under local point p and the part of
// it that was hit. Handles only count on the selected decal.
func (g *guide) hit(p geom.Vec2) (string, placement.Kind, bool) {
	selected, _ := g.store.ActiveDecalID()
	decals := g.store.Decals()
	for i := len(decals) - 1; i >= 0; i-- {
		d := decals[i]
		if !d.Visible {
			continue
		}
		s := g.style(d)
		box := s.Rect()
		q := rotateAbout(p, box.Center(), -s.RotationDeg)
		kind, ok := placement.HitTest(box, q)
		if !ok {
			continue
		}
		if d.ID != selected && kind != placement.Drag {
			if !box.Contains(q) {
				continue
			}
			kind = placement.Drag
		}
		return d.ID, kind, true
	}
	return "", 0, false
}

// update feeds the frame's pointer state through the widget into the
// controller. It reports whether the guide consumed the pointer.
func (g *guide) update(mouse geom.Vec2, pressed, down, released bool) bool {
	p := mouse.Sub(g.origin)
	if g.widget.Active() {
		if down {
			if gs, ok := g.widget.Moved(p); ok {
				g.ctrl.Handle(gs)
			}
		}
		if released || !down {
			if gs, ok := g.widget.Release(); ok {
				g.ctrl.Handle(gs)
			}
		}
		return true
	}
	if !pressed || !g.bounds().Contains(mouse) {
		return false
	}

	id, kind, ok := g.hit(p)
	if !ok {
		g.ctrl.ClickBackground()
		return true
	}
	g.ctrl.Click(id)
	d, ok := g.store.Decal(id)
	if !ok {
		return true
	}
	start := g.widget.Press(id, kind, g.style(d).Rect(), p)
	if !g.ctrl.Handle(start) {
		g.widget.Release()
	}
	return true
}

func (g *guide) draw(st design.State) {
	b := g.bounds()
	size := g.ctrl.Container()
	reg := g.ctrl.Mapper().Registry
	shirt := hexColor(st.ShirtColor, design.DefaultShirtColor)

	rl.BeginScissorMode(int32(b.X), int32(b.Y), int32(b.Width), int32(b.Height))
	rl.DrawRectangleRec(rect(b), hexColor(st.BackgroundColor, design.DefaultBackgroundColor))
	for _, r := range reg.Regions() {
		pr, ok := reg.PixelRectOf(r, size)
		if !ok {
			continue
		}
		sr := rect(geom.Rect{X: b.X + pr.X, Y: b.Y + pr.Y, Width: pr.Width, Height: pr.Height})
		rl.DrawRectangleRec(sr, shirt)
		border := shade(shirt, 0.25)
		thick := float32(1)
		if r == st.ActiveRegion {
			border, thick = colorAccent, 2
		}
		rl.DrawRectangleLinesEx(sr, thick, border)
		rl.DrawText(string(r), int32(sr.X)+4, int32(sr.Y)+4, 10, shade(shirt, 0.5))
	}

	for _, d := range st.Decals {
		if !d.Visible {
			continue
		}
		tex, ok := g.tex(d.Texture)
		if !ok {
			continue
		}
		s := g.style(d)
		w, h := float32(s.Width), float32(s.Height)
		dst := rl.Rectangle{X: float32(b.X+s.Left) + w/2, Y: float32(b.Y+s.Top) + h/2, Width: w, Height: h}
		src := rl.Rectangle{Width: float32(tex.Width), Height: float32(tex.Height)}
		rl.DrawTexturePro(tex, src, dst, rl.Vector2{X: w / 2, Y: h / 2}, float32(s.RotationDeg), rl.White)
		if d.ID == st.ActiveDecalID {
			g.drawHandles(s)
		}
	}
	rl.EndScissorMode()
	rl.DrawRectangleLinesEx(rect(b), 1, colorBorder)
}

func (g *guide) drawHandles(s placement.OverlayStyle) {
	box := s.Rect()
	c := box.Center()
	corners := []geom.Vec2{
		{X: box.X, Y: box.Y},
		{X: box.X + box.Width, Y: box.Y},
		{X: box.X + box.Width, Y: box.Y + box.Height},
		{X: box.X, Y: box.Y + box.Height},
	}
	screen := func(p geom.Vec2) rl.Vector2 {
		return vec2(rotateAbout(p, c, s.RotationDeg).Add(g.origin))
	}
	for i := range corners {
		rl.DrawLineEx(screen(corners[i]), screen(corners[(i+1)%len(corners)]), 1.5, colorAccent)
	}

	top := geom.Vec2{X: c.X, Y: box.Y}
	knob := screen(placement.KnobCenter(box))
	rl.DrawLineEx(screen(top), knob, 1, colorAccent)
	rl.DrawCircleV(knob, placement.HandleSize/2, colorAccentLight)

	hs := float32(placement.HandleSize)
	corner := screen(corners[2])
	rl.DrawRectangleRec(rl.Rectangle{X: corner.X - hs/2, Y: corner.Y - hs/2, Width: hs, Height: hs}, colorAccentLight)
}

// rotateAbout turns p around c by deg degrees, clockwise on screen.
func rotateAbout(p, c geom.Vec2, deg float64) geom.Vec2 {
	sin, cos := math.Sincos(geom.Deg2Rad(deg))
	d := p.Sub(c)
	return geom.Vec2{X: c.X + d.X*cos - d.Y*sin, Y: c.Y + d.X*sin + d.Y*cos}
}
