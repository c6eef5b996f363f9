// Package stock applies curated stock images to events.
//
// Stock images already live on the CDN in the three standard variants,
// so applying one skips the local pipeline and blob sync entirely: the
// event gets remote URLs directly.
package stock

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/eventdeck/eventdeck/internal/store"
)

// ManifestName is the default manifest filename inside the data dir.
const ManifestName = "stock-images-manifest.json"

// Image describes one stock image in the manifest.
type Image struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Format string `json:"format,omitempty"`
}

// DisplayName returns a human-readable name, derived from the id when
// the manifest carries none.
func (i Image) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	name := strings.TrimPrefix(i.ID, "zzz-")
	return strings.ReplaceAll(name, "-", " ")
}

// Manifest is the stock image catalog.
type Manifest struct {
	Images []Image `json:"images"`
}

// LoadManifest reads the catalog from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse stock manifest %s: %w", path, err)
	}
	return &m, nil
}

// Find returns the image with the given id.
func (m *Manifest) Find(id string) (Image, bool) {
	for _, img := range m.Images {
		if img.ID == id {
			return img, true
		}
	}
	return Image{}, false
}

// URLs returns the CDN URLs for the three variants:
// {base}{id}-{variant}.{format}.
func (i Image) URLs(baseURL string) (full, small, thumb string) {
	format := i.Format
	if format == "" {
		format = "jpg"
	}
	base := baseURL + i.ID
	return base + "-full." + format,
		base + "-small." + format,
		base + "-thumb." + format
}

// Apply sets the event's image URLs to the stock image's CDN variants
// and marks the event as needing submission. The URLs are already
// remote, so the event needs no blob sync.
func Apply(e *store.Event, img Image, baseURL string) {
	e.FullImageURL, e.SmallImageURL, e.ThumbImageURL = img.URLs(baseURL)
	e.ImagesUploaded = true
	e.UpdatedNotSubmitted = true
}
