package texture

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultFontSize = 48
	minTextWidth    = 200
	textPadding     = 40
)

type TextOptions struct {
	Color    color.Color
	FontSize float64
}

var (
	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error
)

func bold() (*opentype.Font, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	return boldFont, boldErr
}

// RenderText draws text in bold on a transparent canvas. The canvas is
// max(200, textWidth+40) pixels wide and twice the font size tall, with
// the text centred on both axes.
func RenderText(text string, opts TextOptions) (*image.NRGBA, error) {
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	if opts.Color == nil {
		opts.Color = color.Black
	}
	f, err := bold()
	if err != nil {
		return nil, fmt.Errorf("texture: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("texture: font face: %w", err)
	}
	defer face.Close()

	textWidth := font.MeasureString(face, text).Ceil()
	w := max(minTextWidth, textWidth+textPadding)
	h := int(2 * opts.FontSize)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	m := face.Metrics()
	baseline := (fixed.I(h) + m.Ascent - m.Descent) / 2
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(opts.Color),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I((w - textWidth) / 2), Y: baseline},
	}
	d.DrawString(text)
	return img, nil
}
