package export

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"shirtforge/internal/design"
	"shirtforge/internal/geom"
	"shirtforge/internal/mapper"
	"shirtforge/internal/region"
)

// TextureSource resolves a decal's texture reference.
type TextureSource func(ref string) (image.Image, bool)

// Preview renders the 2D guide at the given size: the region panels in
// the shirt colour over the background, and every visible decal at its
// mapped position, size and rotation. Decals whose texture cannot be
// resolved are skipped.
func Preview(st design.State, m mapper.Mapper, size geom.Vec2, tex TextureSource) *image.NRGBA {
	w, h := int(math.Round(size.X)), int(math.Round(size.Y))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	bg := parseOr(st.BackgroundColor, design.DefaultBackgroundColor)
	shirt := parseOr(st.ShirtColor, design.DefaultShirtColor)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	for _, r := range m.Registry.Regions() {
		rect, ok := m.Registry.PixelRectOf(r, size)
		if !ok {
			continue
		}
		draw.Draw(dst, toImageRect(rect), image.NewUniform(shirt), image.Point{}, draw.Src)
	}

	for _, d := range st.Decals {
		if !d.Visible {
			continue
		}
		src, ok := tex(d.Texture)
		if !ok {
			continue
		}
		center := m.To2D(d.Position, size, d.Region)
		bw := mapper.ScaleToPixels(d.Scale.X)
		bh := mapper.ScaleToPixels(d.Scale.Y)
		xdraw.BiLinear.Transform(dst, decalTransform(src.Bounds(), center, bw, bh, -d.Rotation.Z), src, src.Bounds(), xdraw.Over, nil)
	}
	return dst
}

// decalTransform maps the source bounds onto a w×h box centred on c and
// turned clockwise by theta radians in screen space.
func decalTransform(sb image.Rectangle, c geom.Vec2, w, h, theta float64) f64.Aff3 {
	sx := w / float64(sb.Dx())
	sy := h / float64(sb.Dy())
	cos, sin := math.Cos(theta), math.Sin(theta)
	scx := float64(sb.Min.X) + float64(sb.Dx())/2
	scy := float64(sb.Min.Y) + float64(sb.Dy())/2
	a, b := cos*sx, -sin*sy
	d, e := sin*sx, cos*sy
	return f64.Aff3{
		a, b, c.X - (a*scx + b*scy),
		d, e, c.Y - (d*scx + e*scy),
	}
}

func toImageRect(r geom.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)), int(math.Round(r.Y+r.Height)),
	)
}

func parseOr(hex, fallback string) color.NRGBA {
	if c, err := design.ParseHex(hex); err == nil {
		return c
	}
	c, _ := design.ParseHex(fallback)
	return c
}

// RegionCrop cuts the guide preview down to one region's rectangle.
func RegionCrop(img *image.NRGBA, m mapper.Mapper, size geom.Vec2, r region.Region) image.Image {
	rect, ok := m.Registry.PixelRectOf(r, size)
	if !ok {
		return img
	}
	return img.SubImage(toImageRect(rect).Intersect(img.Bounds()))
}
