// Package uploader pushes an indexed gallery to S3-compatible remote storage
// (AWS S3, Cloudflare R2).
package uploader

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// Uploader is the remote storage surface needed by the publish command.
type Uploader interface {
	// Upload stores content at key with the given MIME type.
	Upload(ctx context.Context, key string, content io.Reader, contentType string) error

	// Exists reports whether an object already lives at key.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL for key.
	GetURL(key string) string
}

// DetectContentType maps a filename to a MIME type by extension.
func DetectContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
