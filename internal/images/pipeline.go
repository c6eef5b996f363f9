// Package images produces the three fixed-size renditions of an event
// image: full, small, and a square thumbnail.
package images

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/eventdeck/eventdeck/internal/store"
)

// Sizes holds the pixel targets for the three variants.
type Sizes struct {
	// FullWidth is the output width of the full rendition; height keeps
	// the source aspect ratio.
	FullWidth int

	// SmallWidth is the output width of the small rendition.
	SmallWidth int

	// ThumbSize is the edge length of the square thumbnail. The source
	// is scaled to cover and center-cropped.
	ThumbSize int
}

// DefaultSizes returns the standard pixel targets.
func DefaultSizes() Sizes {
	return Sizes{
		FullWidth:  1600,
		SmallWidth: 800,
		ThumbSize:  200,
	}
}

// Output describes one produced variant.
type Output struct {
	// Path is the absolute location of the file on disk.
	Path string

	// URL is the local-path marker stored on the event
	// (./images/{variant}/{name}).
	URL string
}

// Result holds the three produced variants.
type Result struct {
	Full  Output
	Small Output
	Thumb Output
	Name  string
}

// Pipeline turns a source image into the three variants under
// {imagesDir}/full, {imagesDir}/small and {imagesDir}/thumb.
type Pipeline struct {
	imagesDir string
	sizes     Sizes
	logger    *log.Logger
	now       func() time.Time
}

// New creates a Pipeline writing under imagesDir. If logger is nil, a
// default logger writing to stderr is used.
func New(imagesDir string, sizes Sizes, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(os.Stderr, "[images] ", log.LstdFlags)
	}
	if sizes.FullWidth == 0 {
		sizes = DefaultSizes()
	}
	return &Pipeline{
		imagesDir: imagesDir,
		sizes:     sizes,
		logger:    logger,
		now:       time.Now,
	}
}

// Process decodes the source image and writes the three variants.
//
// The operation is atomic: variants are rendered to temporary files and
// only renamed into place once all three succeeded, so a failure leaves
// no partial files attributed to the event. Output names combine the
// date, the event id and a random suffix, so repeated processing for the
// same event never collides.
func (p *Pipeline) Process(sourcePath, eventID string) (*Result, error) {
	src, err := decodeImage(sourcePath)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(sourcePath))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		ext = ".jpg"
	}

	name := fmt.Sprintf("%s-%s-%s%s", p.now().Format("20060102"), eventID, uuid.NewString(), ext)

	variants := []struct {
		variant string
		img     image.Image
	}{
		{store.VariantFull, scaleToWidth(src, p.sizes.FullWidth)},
		{store.VariantSmall, scaleToWidth(src, p.sizes.SmallWidth)},
		{store.VariantThumb, squareCrop(src, p.sizes.ThumbSize)},
	}

	// Render everything to temp files first; rename only once all
	// three variants exist.
	type staged struct {
		tmp, final, variant string
	}
	var stage []staged
	cleanup := func() {
		for _, st := range stage {
			os.Remove(st.tmp)
		}
	}

	for _, v := range variants {
		dir := filepath.Join(p.imagesDir, v.variant)
		if err := os.MkdirAll(dir, 0755); err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to create %s directory: %w", v.variant, err)
		}

		tmp, err := os.CreateTemp(dir, ".render-*"+ext)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to create temp file: %w", err)
		}
		if err := encodeImage(tmp, v.img, ext); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			cleanup()
			return nil, fmt.Errorf("failed to encode %s variant: %w", v.variant, err)
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			cleanup()
			return nil, fmt.Errorf("failed to close %s variant: %w", v.variant, err)
		}

		stage = append(stage, staged{
			tmp:     tmp.Name(),
			final:   filepath.Join(dir, name),
			variant: v.variant,
		})
	}

	result := &Result{Name: name}
	for _, st := range stage {
		if err := os.Rename(st.tmp, st.final); err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to place %s variant: %w", st.variant, err)
		}
		out := Output{
			Path: st.final,
			URL:  store.LocalPathPrefix + st.variant + "/" + name,
		}
		switch st.variant {
		case store.VariantFull:
			result.Full = out
		case store.VariantSmall:
			result.Small = out
		case store.VariantThumb:
			result.Thumb = out
		}
	}

	p.logger.Printf("Processed %s for event %s -> %s", filepath.Base(sourcePath), eventID, name)
	return result, nil
}

// Apply records the produced variants on the event: the three URL fields
// get local-path markers, the uploaded flag is cleared, and the event is
// marked as needing submission.
func (p *Pipeline) Apply(e *store.Event, r *Result) {
	e.FullImageURL = r.Full.URL
	e.SmallImageURL = r.Small.URL
	e.ThumbImageURL = r.Thumb.URL
	e.ImagesUploaded = false
	e.UpdatedNotSubmitted = true
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func encodeImage(f *os.File, img image.Image, ext string) error {
	if ext == ".png" {
		return png.Encode(f, img)
	}
	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}

// scaleToWidth scales to an exact width preserving aspect ratio.
func scaleToWidth(src image.Image, width int) image.Image {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return src
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// squareCrop scales the source to cover a size x size square and crops
// the center.
func squareCrop(src image.Image, size int) image.Image {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return src
	}

	// Scale the shorter edge to size.
	var w, h int
	if b.Dx() < b.Dy() {
		w = size
		h = b.Dy() * size / b.Dx()
	} else {
		h = size
		w = b.Dx() * size / b.Dy()
	}
	if w < size {
		w = size
	}
	if h < size {
		h = size
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, b, draw.Src, nil)

	x := (w - size) / 2
	y := (h - size) / 2
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Copy(dst, image.Point{}, scaled, image.Rect(x, y, x+size, y+size), draw.Src, nil)
	return dst
}
