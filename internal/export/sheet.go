package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"shirtforge/internal/design"
	"shirtforge/internal/geom"
	"shirtforge/internal/mapper"
)

const (
	sheetMargin = 15.0
	sheetWidth  = 180.0
)

// DesignSheet writes an A4 PDF with the rendered guide preview, an
// outline of every decal over it and a table of decal placements.
// preview may be nil, in which case only the outlines are drawn.
func DesignSheet(path string, st design.State, m mapper.Mapper, guide geom.Vec2, preview image.Image) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle("T-shirt design", true)
	p.AddPage()

	p.SetFont("Helvetica", "B", 16)
	p.CellFormat(0, 10, "T-shirt design", "", 1, "L", false, 0, "")
	p.SetFont("Helvetica", "", 10)
	p.CellFormat(0, 6, fmt.Sprintf("Shirt %s   Background %s   Decals %d",
		st.ShirtColor, st.BackgroundColor, len(st.Decals)), "", 1, "L", false, 0, "")

	top := p.GetY() + 4
	mmPerPx := sheetWidth / guide.X
	height := guide.Y * mmPerPx

	if preview != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, preview); err != nil {
			return fmt.Errorf("export: encode preview: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		p.RegisterImageOptionsReader("preview", opts, &buf)
		p.ImageOptions("preview", sheetMargin, top, sheetWidth, height, false, opts, 0, "")
	}

	toPage := func(v geom.Vec2) (float64, float64) {
		return sheetMargin + v.X*mmPerPx, top + v.Y*mmPerPx
	}

	p.SetLineWidth(0.3)
	p.SetDrawColor(60, 60, 60)
	p.Rect(sheetMargin, top, sheetWidth, height, "D")
	p.SetFont("Helvetica", "", 8)
	for _, r := range m.Registry.Regions() {
		rect, ok := m.Registry.PixelRectOf(r, guide)
		if !ok {
			continue
		}
		x, y := toPage(geom.Vec2{X: rect.X, Y: rect.Y})
		p.SetDashPattern([]float64{1, 1}, 0)
		p.Rect(x, y, rect.Width*mmPerPx, rect.Height*mmPerPx, "D")
		p.SetDashPattern(nil, 0)
		p.Text(x+1, y+3, string(r))
	}

	p.SetDrawColor(200, 30, 30)
	for i, d := range st.Decals {
		c := m.To2D(d.Position, guide, d.Region)
		w := mapper.ScaleToPixels(d.Scale.X) * mmPerPx
		h := mapper.ScaleToPixels(d.Scale.Y) * mmPerPx
		cx, cy := toPage(c)
		p.TransformBegin()
		// gofpdf turns counter-clockwise, matching the stored Z rotation.
		p.TransformRotate(geom.Rad2Deg(d.Rotation.Z), cx, cy)
		p.Rect(cx-w/2, cy-h/2, w, h, "D")
		p.Text(cx-w/2+1, cy-h/2+3, fmt.Sprint(i+1))
		p.TransformEnd()
	}

	p.SetY(top + height + 8)
	decalTable(p, st)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

func decalTable(p *gofpdf.Fpdf, st design.State) {
	cols := []struct {
		title string
		width float64
	}{
		{"#", 8}, {"Kind", 14}, {"Region", 26}, {"Position", 50},
		{"Rotation (deg)", 44}, {"Scale", 30}, {"Shown", 8},
	}
	p.SetFont("Helvetica", "B", 9)
	p.SetFillColor(230, 230, 230)
	for _, c := range cols {
		p.CellFormat(c.width, 6, c.title, "1", 0, "C", true, 0, "")
	}
	p.Ln(-1)
	p.SetFont("Helvetica", "", 8)
	for i, d := range st.Decals {
		shown := "no"
		if d.Visible {
			shown = "yes"
		}
		row := []string{
			fmt.Sprint(i + 1),
			string(d.Kind),
			string(d.Region),
			fmt.Sprintf("%.3f, %.3f, %.3f", d.Position.X, d.Position.Y, d.Position.Z),
			fmt.Sprintf("%.1f, %.1f, %.1f", deg(d.Rotation.X), deg(d.Rotation.Y), deg(d.Rotation.Z)),
			fmt.Sprintf("%.3f, %.3f", d.Scale.X, d.Scale.Y),
			shown,
		}
		for j, c := range cols {
			p.CellFormat(c.width, 6, row[j], "1", 0, "L", false, 0, "")
		}
		p.Ln(-1)
	}
}

func deg(rad float64) float64 {
	v := geom.Rad2Deg(rad)
	if math.Abs(v) < 5e-3 {
		return 0
	}
	return v
}
