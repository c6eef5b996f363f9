// Package blob uploads event images to an S3-compatible object store and
// tracks the migration of local image paths to remote URLs.
package blob

import (
	"context"
	"path/filepath"
	"strings"
)

// Uploader puts a local file into the object store under a key and
// returns the resulting public URL.
//
// Implementations must be safe to call sequentially from a single
// goroutine; the syncer performs uploads one at a time.
type Uploader interface {
	// Upload stores the file at localPath under key and returns the
	// publicly reachable URL for the stored object.
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// ContentTypeFor maps a file extension to the content type sent with the
// upload. Unknown extensions fall back to octet-stream.
func ContentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
