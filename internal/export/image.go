// Package export writes the design out: still images of the guide, frame
// sequences and a printable design sheet.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"

	"shirtforge/internal/region"
)

type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
)

// ErrBusy is returned when a recording is already running.
var ErrBusy = errors.New("export: recording in progress")

const (
	filePrefix = "tshirt_design_"
	videoName  = filePrefix + "video"
)

// FileName is the export name for a still of region r.
func FileName(r region.Region, f Format) string {
	return filePrefix + string(r) + "." + string(f)
}

// SheetName is the PDF design sheet name for region r.
func SheetName(r region.Region) string {
	return filePrefix + string(r) + ".pdf"
}

// VideoDir is the frame directory name for recordings under dir.
func VideoDir(dir string) string {
	return filepath.Join(dir, videoName)
}

// SaveImage writes img into dir under the name for r and returns the path.
func SaveImage(dir string, r region.Region, img image.Image, f Format) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("export: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(r, f))
	if err := writeImage(path, img, f); err != nil {
		return "", err
	}
	return path, nil
}

func writeImage(path string, img image.Image, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	switch f {
	case WebP:
		err = nativewebp.Encode(out, img, nil)
	case PNG:
		err = png.Encode(out, img)
	default:
		err = fmt.Errorf("unknown format %q", f)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	return nil
}
