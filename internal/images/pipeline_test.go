package images

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eventdeck/eventdeck/internal/store"
)

// writeTestImage writes a small PNG to use as pipeline input.
func writeTestImage(t *testing.T, dir string, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}

	path := filepath.Join(dir, "source.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func smallSizes() Sizes {
	return Sizes{FullWidth: 64, SmallWidth: 32, ThumbSize: 16}
}

func TestProcessProducesThreeVariants(t *testing.T) {
	dir := t.TempDir()
	source := writeTestImage(t, dir, 48, 24)

	p := New(filepath.Join(dir, "images"), smallSizes(), nil)
	res, err := p.Process(source, "20250601-AB12-001")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	outputs := map[string]Output{
		"full":  res.Full,
		"small": res.Small,
		"thumb": res.Thumb,
	}
	seen := map[string]bool{}
	for variant, out := range outputs {
		if out.Path == "" {
			t.Fatalf("%s path is empty", variant)
		}
		if seen[out.Path] {
			t.Errorf("%s path collides with another variant: %s", variant, out.Path)
		}
		seen[out.Path] = true

		if _, err := os.Stat(out.Path); err != nil {
			t.Errorf("%s variant not on disk: %v", variant, err)
		}
		wantPrefix := store.LocalPathPrefix + variant + "/"
		if !strings.HasPrefix(out.URL, wantPrefix) {
			t.Errorf("%s url %q does not start with %q", variant, out.URL, wantPrefix)
		}
	}
}

func TestProcessVariantDimensions(t *testing.T) {
	dir := t.TempDir()
	source := writeTestImage(t, dir, 48, 24)

	p := New(filepath.Join(dir, "images"), smallSizes(), nil)
	res, err := p.Process(source, "20250601-AB12-001")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	checkSize := func(path string, wantW, wantH int) {
		t.Helper()
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("failed to open %s: %v", path, err)
		}
		defer f.Close()
		cfg, _, err := image.DecodeConfig(f)
		if err != nil {
			t.Fatalf("failed to decode %s: %v", path, err)
		}
		if cfg.Width != wantW || cfg.Height != wantH {
			t.Errorf("%s is %dx%d, want %dx%d", filepath.Base(path), cfg.Width, cfg.Height, wantW, wantH)
		}
	}

	checkSize(res.Full.Path, 64, 32)
	checkSize(res.Small.Path, 32, 16)
	checkSize(res.Thumb.Path, 16, 16)
}

func TestProcessNamesNeverCollide(t *testing.T) {
	dir := t.TempDir()
	source := writeTestImage(t, dir, 20, 20)

	p := New(filepath.Join(dir, "images"), smallSizes(), nil)

	first, err := p.Process(source, "20250601-AB12-001")
	if err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	second, err := p.Process(source, "20250601-AB12-001")
	if err != nil {
		t.Fatalf("second Process failed: %v", err)
	}

	if first.Name == second.Name {
		t.Errorf("two runs for the same event produced the same name: %s", first.Name)
	}
	if first.Full.Path == second.Full.Path {
		t.Errorf("two runs produced the same full path: %s", first.Full.Path)
	}
}

func TestProcessBadSourceLeavesEventUntouched(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "not-an-image.png")
	if err := os.WriteFile(bad, []byte("garbage"), 0644); err != nil {
		t.Fatalf("failed to write bad source: %v", err)
	}

	p := New(filepath.Join(dir, "images"), smallSizes(), nil)
	e := &store.Event{ID: "20250601-AB12-001", FullImageURL: "https://cdn.example.com/old.png"}

	res, err := p.Process(bad, e.ID)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if res != nil {
		t.Error("failed Process should return no result")
	}
	if e.FullImageURL != "https://cdn.example.com/old.png" {
		t.Error("event fields changed on failure")
	}

	// No partial files left behind.
	for _, variant := range []string{"full", "small", "thumb"} {
		entries, err := os.ReadDir(filepath.Join(dir, "images", variant))
		if err != nil {
			continue // directory may not exist, which is fine
		}
		if len(entries) != 0 {
			t.Errorf("partial files left in %s: %v", variant, entries)
		}
	}
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	source := writeTestImage(t, dir, 20, 20)

	p := New(filepath.Join(dir, "images"), smallSizes(), nil)
	res, err := p.Process(source, "20250601-AB12-001")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	e := &store.Event{ID: "20250601-AB12-001", ImagesUploaded: true}
	p.Apply(e, res)

	if !e.HasLocalImages() {
		t.Error("event should hold local-path markers after Apply")
	}
	if e.ImagesUploaded {
		t.Error("Apply should clear the uploaded flag")
	}
	if !e.UpdatedNotSubmitted {
		t.Error("Apply should mark the event as needing submission")
	}
}
