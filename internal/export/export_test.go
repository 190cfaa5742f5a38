package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shirtforge/internal/design"
	"shirtforge/internal/geom"
	"shirtforge/internal/mapper"
	"shirtforge/internal/region"
)

var guide = geom.Vec2{X: 900, Y: 800}

func solid(c color.NRGBA, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestFileName(t *testing.T) {
	if got := FileName(region.LeftSleeve, PNG); got != "tshirt_design_left_sleeve.png" {
		t.Errorf("FileName = %s", got)
	}
	if got := SheetName(region.Back); got != "tshirt_design_back.pdf" {
		t.Errorf("SheetName = %s", got)
	}
	if got := filepath.Base(VideoDir("out")); got != "tshirt_design_video" {
		t.Errorf("VideoDir = %s", got)
	}
}

func TestSaveImageFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	img := solid(color.NRGBA{R: 10, G: 200, B: 30, A: 255}, 16, 16)

	path, err := SaveImage(dir, region.Front, img, PNG)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("png signature missing")
	}

	path, err = SaveImage(dir, region.Back, img, WebP)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "tshirt_design_back.webp" {
		t.Errorf("path = %s", path)
	}
	data, _ = os.ReadFile(path)
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Contains(data[:16], []byte("WEBP")) {
		t.Error("webp header missing")
	}

	if _, err := SaveImage(dir, region.Front, img, Format("gif")); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestPreviewDrawsPanelsAndDecals(t *testing.T) {
	s := design.NewStore()
	s.AddDecal("red", design.KindImage)
	s.SetActiveRegion(region.Back)
	hidden := s.AddDecal("red", design.KindImage)
	s.UpdateDecal(hidden, design.Patch{Visible: design.Ptr(false)})
	s.AddDecal("missing", design.KindImage)

	red := color.NRGBA{R: 255, A: 255}
	tex := func(ref string) (image.Image, bool) {
		if ref == "red" {
			return solid(red, 10, 10), true
		}
		return nil, false
	}
	m := mapper.New(region.Default())
	img := Preview(s.State(), m, guide, tex)

	if got := img.NRGBAAt(2, 2); got != (color.NRGBA{128, 128, 128, 255}) {
		t.Errorf("background = %v", got)
	}
	if got := img.NRGBAAt(100, 200); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("front panel = %v", got)
	}
	if got := img.NRGBAAt(238, 404); got != red {
		t.Errorf("front decal center = %v", got)
	}
	// Hidden decal on back and the unresolved one leave the panel bare.
	if got := img.NRGBAAt(661, 404); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("back center = %v", got)
	}

	crop := RegionCrop(img, m, guide, region.Front)
	if crop.Bounds().Dx() != 387 {
		t.Errorf("crop width = %d", crop.Bounds().Dx())
	}
}

func TestRecorderFixedDuration(t *testing.T) {
	dir := t.TempDir()
	var rec Recorder
	t0 := time.Unix(1000, 0)
	if err := rec.Start(dir, time.Second, 10, t0); err != nil {
		t.Fatal(err)
	}
	if err := rec.Start(dir, time.Second, 10, t0); !errors.Is(err, ErrBusy) {
		t.Errorf("second start err = %v", err)
	}
	grabs := 0
	grab := func() (image.Image, error) {
		grabs++
		return solid(color.NRGBA{A: 255}, 4, 4), nil
	}
	for i := 0; i <= 20; i++ {
		rec.Offer(t0.Add(time.Duration(i)*50*time.Millisecond), grab)
	}
	if rec.Recording() {
		t.Error("recording did not stop at the deadline")
	}
	res := <-rec.Done()
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if grabs != 10 || res.Frames != 10 {
		t.Errorf("grabs=%d frames=%d, want 10", grabs, res.Frames)
	}
	if _, err := os.Stat(filepath.Join(dir, "frame_00009.png")); err != nil {
		t.Errorf("last frame missing: %v", err)
	}
	// Retryable once finished.
	if err := rec.Start(dir, time.Second, 10, t0); err != nil {
		t.Errorf("restart: %v", err)
	}
	rec.Stop()
	<-rec.Done()
}

func TestRecorderGrabFailure(t *testing.T) {
	var rec Recorder
	t0 := time.Unix(0, 0)
	rec.Start(t.TempDir(), time.Second, 5, t0)
	rec.Offer(t0, func() (image.Image, error) { return nil, errors.New("no context") })
	res := <-rec.Done()
	if res.Err == nil {
		t.Error("grab failure not reported")
	}
	if rec.Recording() {
		t.Error("still recording after failure")
	}
}

func TestRecorderSkipsWhenEncoderBehind(t *testing.T) {
	release := make(chan struct{})
	rec := Recorder{encode: func(string, image.Image) error {
		<-release
		return nil
	}}
	t0 := time.Unix(0, 0)
	if err := rec.Start(t.TempDir(), 5*time.Second, 10, t0); err != nil {
		t.Fatal(err)
	}
	grab := func() (image.Image, error) { return solid(color.NRGBA{A: 255}, 1, 1), nil }

	// At most one frame sits in the stalled encoder and ten fill the
	// queue. Every later due frame must be skipped without blocking.
	offered := make(chan struct{})
	go func() {
		for i := 0; i < 49; i++ {
			rec.Offer(t0.Add(time.Duration(i)*100*time.Millisecond), grab)
		}
		close(offered)
	}()
	select {
	case <-offered:
	case <-time.After(3 * time.Second):
		t.Fatal("Offer blocked on a stalled encoder")
	}

	rec.Stop()
	close(release)
	res := <-rec.Done()
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Frames+res.Skipped != 49 || res.Frames > 11 || res.Skipped < 38 {
		t.Errorf("frames = %d skipped = %d", res.Frames, res.Skipped)
	}
}

type frames struct{ n int }

func (f *frames) Frame() (image.Image, error) {
	f.n++
	return solid(color.NRGBA{G: 255, A: 255}, 2, 2), nil
}

func TestRecordOnTicker(t *testing.T) {
	var rec Recorder
	src := &frames{}
	res, err := Record(context.Background(), &rec, src, t.TempDir(), 150*time.Millisecond, 20)
	if err != nil {
		t.Fatal(err)
	}
	if res.Frames == 0 || res.Frames != src.n {
		t.Errorf("frames = %d, grabbed %d", res.Frames, src.n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Record(ctx, &rec, src, t.TempDir(), time.Hour, 20); err != nil {
		t.Errorf("cancelled record err = %v", err)
	}
}

func TestDesignSheet(t *testing.T) {
	s := design.NewStore()
	id := s.AddDecal("logo", design.KindImage)
	s.UpdateDecal(id, design.Patch{Rotation: design.Ptr(geom.V3(0, 0, 0.5))})
	s.SetActiveRegion(region.RightSleeve)
	s.AddDecal("text", design.KindText)

	m := mapper.New(region.Default())
	preview := Preview(s.State(), m, guide, func(string) (image.Image, bool) { return nil, false })
	path := filepath.Join(t.TempDir(), "nested", "sheet.pdf")
	if err := DesignSheet(path, s.State(), m, guide, preview); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("not a pdf")
	}

	if err := DesignSheet(filepath.Join(t.TempDir(), "bare.pdf"), s.State(), m, guide, nil); err != nil {
		t.Errorf("sheet without preview: %v", err)
	}
}
