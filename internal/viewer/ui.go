package viewer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"shirtforge/internal/design"
	"shirtforge/internal/export"
	"shirtforge/internal/region"
)

// Dark theme with an indigo accent.
var (
	colorBgDark    = rl.NewColor(10, 10, 15, 255)
	colorBgPanel   = rl.NewColor(18, 18, 24, 245)
	colorBgElement = rl.NewColor(28, 28, 38, 255)
	colorBgHover   = rl.NewColor(38, 38, 52, 255)

	colorAccent      = rl.NewColor(108, 99, 255, 255)
	colorAccentLight = rl.NewColor(167, 139, 250, 255)

	colorTextPrimary   = rl.NewColor(255, 255, 255, 255)
	colorTextSecondary = rl.NewColor(200, 200, 208, 255)
	colorTextMuted     = rl.NewColor(119, 119, 119, 255)

	colorBorder = rl.NewColor(50, 50, 65, 255)
)

const (
	panelWidth = 250
	rowHeight  = 24
	rowGap     = 6
	statusTime = 3.0 // seconds a status message stays up
)

func initStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))

	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(colorBorder))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

// column lays out panel rows top to bottom.
type column struct {
	x, y, w float32
}

func (c *column) row() rl.Rectangle {
	r := rl.Rectangle{X: c.x, Y: c.y, Width: c.w, Height: rowHeight}
	c.y += rowHeight + rowGap
	return r
}

// split returns n equal cells across one row.
func (c *column) split(n int) []rl.Rectangle {
	r := c.row()
	cells := make([]rl.Rectangle, n)
	w := (r.Width - float32(n-1)*rowGap) / float32(n)
	for i := range cells {
		cells[i] = rl.Rectangle{X: r.X + float32(i)*(w+rowGap), Y: r.Y, Width: w, Height: r.Height}
	}
	return cells
}

func (c *column) header(text string) {
	c.y += 4
	rl.DrawText(text, int32(c.x), int32(c.y), 14, colorAccentLight)
	c.y += 20
}

// drawPanel draws the side panel and runs the actions its controls trigger.
func (v *Viewer) drawPanel(area rl.Rectangle) {
	rl.DrawRectangleRec(area, colorBgPanel)
	rl.DrawRectangle(int32(area.X), int32(area.Y), 1, int32(area.Height), colorBorder)

	col := &column{x: area.X + 12, y: area.Y + 12, w: area.Width - 24}
	rl.DrawText("SHIRTFORGE", int32(col.x), int32(col.y), 20, colorAccent)
	col.y += 32

	col.header("Shirt colour")
	if c, ok := colorSliders(col, hexColor(v.store.Color(), design.DefaultShirtColor)); ok {
		v.store.SetColor(toHex(c))
	}
	col.header("Background")
	if c, ok := colorSliders(col, hexColor(v.store.BackgroundColor(), design.DefaultBackgroundColor)); ok {
		v.store.SetBackgroundColor(toHex(c))
	}

	col.header("Region")
	regions := v.ctrl.Mapper().Registry.Regions()
	for i := 0; i < len(regions); i += 2 {
		for j, cell := range col.split(2) {
			if i+j < len(regions) {
				v.regionButton(cell, regions[i+j])
			}
		}
	}

	col.header("Add")
	v.textField(col.row())
	if gui.Button(col.row(), "Add text") {
		v.addText(v.text)
	}
	rl.DrawText("Drop an image file to add it", int32(col.x), int32(col.y), 12, colorTextMuted)
	col.y += 18

	col.header("Selected decal")
	if d, ok := v.store.ActiveDecal(); ok {
		visible := gui.CheckBox(rl.Rectangle{X: col.x, Y: col.y, Width: 18, Height: 18}, "Visible", d.Visible)
		col.y += rowHeight + rowGap
		if visible != d.Visible {
			v.store.UpdateDecal(d.ID, design.Patch{Visible: design.Ptr(visible)})
		}
		if gui.Button(col.row(), "Remove") {
			v.store.RemoveDecal(d.ID)
		}
	} else {
		rl.DrawText("Click a decal in the guide", int32(col.x), int32(col.y), 12, colorTextMuted)
		col.y += 18
	}

	col.header("Design")
	cells := col.split(3)
	if gui.Button(cells[0], "Reset") {
		v.store.Reset()
		v.notify("Design reset")
	}
	if gui.Button(cells[1], "Save") {
		v.saveLayout()
	}
	if gui.Button(cells[2], "Load") {
		v.loadLayout()
	}

	col.header("Export")
	cells = col.split(3)
	if gui.Button(cells[0], "PNG") {
		v.exportStill(export.PNG)
	}
	if gui.Button(cells[1], "WebP") {
		v.exportStill(export.WebP)
	}
	if gui.Button(cells[2], "PDF") {
		v.exportSheet()
	}
	label := fmt.Sprintf("Record %.0fs", v.opts.RecordDuration.Seconds())
	if v.rec.Recording() {
		label = "Stop recording"
	}
	if gui.Button(col.row(), label) {
		v.toggleRecording()
	}

	if v.hub != nil {
		col.header("Live session")
		rl.DrawText(fmt.Sprintf("%s  clients: %d", v.opts.ListenAddr, v.hub.Clients()), int32(col.x), int32(col.y), 12, colorTextSecondary)
		col.y += 18
	}

	if v.status != "" && rl.GetTime()-v.statusAt < statusTime {
		rl.DrawText(v.status, int32(col.x), int32(area.Y+area.Height)-28, 14, colorTextPrimary)
	}
}

// colorSliders draws RGB sliders for c and reports the new colour if one
// of them moved.
func colorSliders(col *column, c rl.Color) (rl.Color, bool) {
	channels := []*uint8{&c.R, &c.G, &c.B}
	names := []string{"R", "G", "B"}
	changed := false
	for i, ch := range channels {
		r := col.row()
		r.X += 16
		r.Width -= 56
		cur := float32(*ch)
		val := gui.Slider(r, names[i], fmt.Sprintf("%d", *ch), cur, 0, 255)
		if val != cur {
			*ch = channel(float64(val))
			changed = true
		}
	}
	return c, changed
}

func (v *Viewer) regionButton(r rl.Rectangle, reg region.Region) {
	text := string(reg)
	if reg == v.store.ActiveRegion() {
		text = "> " + text
	}
	if gui.Button(r, text) {
		v.store.SetActiveRegion(reg)
	}
}

// textField is a single-line text input for new text decals.
func (v *Viewer) textField(r rl.Rectangle) {
	hovered := rl.CheckCollisionPointRec(rl.GetMousePosition(), r)
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		v.editingText = hovered
	}

	bg := colorBgElement
	if v.editingText {
		bg = colorBgHover
	}
	rl.DrawRectangleRec(r, bg)
	rl.DrawRectangleLinesEx(r, 1, colorBorder)

	shown := v.text
	if v.editingText {
		shown += "_"
		for {
			key := rl.GetCharPressed()
			if key == 0 {
				break
			}
			v.text += string(rune(key))
		}
		if rl.IsKeyPressed(rl.KeyBackspace) && len(v.text) > 0 {
			runes := []rune(v.text)
			v.text = string(runes[:len(runes)-1])
		}
		if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter) {
			v.addText(v.text)
			v.editingText = false
		}
		if rl.IsKeyPressed(rl.KeyEscape) {
			v.editingText = false
		}
	}
	if shown == "" {
		rl.DrawText("Text...", int32(r.X)+6, int32(r.Y)+6, 12, colorTextMuted)
		return
	}
	rl.DrawText(shown, int32(r.X)+6, int32(r.Y)+6, 12, colorTextPrimary)
}
