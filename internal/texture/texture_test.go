package texture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			}
		}
	}
	return img
}

func TestDataURIRoundTrip(t *testing.T) {
	src := checker(4, 3)
	uri, err := EncodeDataURI(src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("uri prefix = %q", uri[:24])
	}
	got, err := Load(uri)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != src.Bounds() {
		t.Errorf("bounds = %v", got.Bounds())
	}
	if got.NRGBAAt(0, 0) != src.NRGBAAt(0, 0) || got.NRGBAAt(1, 0) != src.NRGBAAt(1, 0) {
		t.Error("pixels differ after round trip")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, checker(8, 8)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("data:text/plain;base64,aGVsbG8="); !errors.Is(err, ErrUnsupported) {
		t.Errorf("text data uri err = %v", err)
	}
	if _, err := Load("data:image/png,rawbytes"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("non-base64 uri err = %v", err)
	}
	if _, err := Load("data:image/png;base64,aGVsbG8="); !errors.Is(err, ErrUnsupported) {
		t.Errorf("garbage image err = %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestFit(t *testing.T) {
	img := checker(400, 100)
	got := Fit(img, 200)
	if got.Bounds().Dx() != 200 || got.Bounds().Dy() != 50 {
		t.Errorf("fit = %v", got.Bounds())
	}
	if small := Fit(checker(10, 10), 200); small.Bounds().Dx() != 10 {
		t.Error("small image resized")
	}
}

func TestRenderTextCanvas(t *testing.T) {
	img, err := RenderText("Hi", TextOptions{Color: color.White, FontSize: 48})
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 96 {
		t.Errorf("short text canvas = %v", img.Bounds())
	}
	if !hasInk(img) {
		t.Error("no pixels drawn")
	}
	if img.NRGBAAt(0, 0).A != 0 {
		t.Error("background not transparent")
	}

	long, err := RenderText(strings.Repeat("WIDE ", 10), TextOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if long.Bounds().Dx() <= 200 {
		t.Errorf("long text canvas = %v", long.Bounds())
	}
	if long.Bounds().Dy() != 2*DefaultFontSize {
		t.Errorf("default height = %d", long.Bounds().Dy())
	}
}

func hasInk(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return true
		}
	}
	return false
}

func TestCacheLoadsOnceAndRemembersMisses(t *testing.T) {
	loads := map[string]int{}
	released := 0
	c := NewCache(func(ref string) (string, error) {
		loads[ref]++
		if ref == "bad" {
			return "", errors.New("boom")
		}
		return "tex:" + ref, nil
	}, func(string) { released++ })

	for i := 0; i < 3; i++ {
		if v, ok := c.Get("a"); !ok || v != "tex:a" {
			t.Fatalf("Get(a) = %q %v", v, ok)
		}
		if _, ok := c.Get("bad"); ok {
			t.Fatal("bad ref loaded")
		}
	}
	if loads["a"] != 1 || loads["bad"] != 1 {
		t.Errorf("loads = %v", loads)
	}

	c.Forget("bad")
	c.Get("bad")
	if loads["bad"] != 2 {
		t.Errorf("forget did not retry: %v", loads)
	}

	c.Get("b")
	c.Retain(map[string]bool{"b": true})
	if c.Len() != 1 || released != 1 {
		t.Errorf("after retain len=%d released=%d", c.Len(), released)
	}
	c.Clear()
	if c.Len() != 0 || released != 2 {
		t.Errorf("after clear len=%d released=%d", c.Len(), released)
	}
}
