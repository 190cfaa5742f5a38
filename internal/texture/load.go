// Package texture produces decal bitmaps: uploaded images decoded from
// files or data URIs, and rendered text.
package texture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	_ "github.com/ftrvxmtrx/tga"
	xdraw "golang.org/x/image/draw"
)

// ErrUnsupported is returned for references that are neither a file path
// nor a base64 image data URI, or whose bytes are not a known format.
var ErrUnsupported = errors.New("texture: unsupported source")

// Load decodes a texture reference: a data:image/...;base64 URI or a path.
func Load(ref string) (*image.NRGBA, error) {
	var raw []byte
	var err error
	if strings.HasPrefix(ref, "data:") {
		raw, err = decodeDataURI(ref)
	} else {
		raw, err = os.ReadFile(ref)
		if err != nil {
			err = fmt.Errorf("texture: read %s: %w", ref, err)
		}
	}
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// Decode reads PNG, JPEG or TGA bytes.
func Decode(raw []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if errors.Is(err, image.ErrFormat) {
		return nil, ErrUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("texture: decode: %w", err)
	}
	return toNRGBA(img), nil
}

func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasPrefix(meta, "image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrUnsupported
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("texture: data uri: %w", err)
	}
	return raw, nil
}

// EncodeDataURI serialises img as a PNG data URI, the form text decals are
// stored in.
func EncodeDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("texture: encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Fit shrinks img so neither side exceeds maxSide, keeping the aspect
// ratio. Smaller images are returned as is.
func Fit(img *image.NRGBA, maxSide int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}
	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
