// Package gallery implements the incremental gallery indexer: album
// discovery, image validation, thumbnail synchronization, and manifest
// reconciliation against the on-disk index.json files.
package gallery

import (
	"strings"
)

const (
	// ThumbsDirName is the reserved per-album directory holding thumbnails.
	// It is never treated as an album itself.
	ThumbsDirName = "thumbnails"

	// ManifestName is the filename of both the root and album manifests.
	ManifestName = "index.json"

	// SchemaVersion tags every manifest written by this tool.
	SchemaVersion = "2.0"

	// ThumbQuality is the JPEG quality used for generated thumbnails.
	ThumbQuality = 80
)

// DefaultExtensions is the extension allow-list used when none is configured.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// Config holds the settings for one indexing run. It is an immutable value:
// construct it with NewConfig and pass it to the per-phase functions.
type Config struct {
	// Root is the gallery root directory containing album subdirectories.
	Root string

	// Extensions is the normalized allow-list: lowercase, leading dot.
	Extensions []string

	// ThumbWidth and ThumbHeight are the exact target thumbnail dimensions.
	ThumbWidth  int
	ThumbHeight int

	// DryRun suppresses every filesystem mutation and external invocation,
	// reporting what would happen instead.
	DryRun bool
}

// NewConfig builds a Config, normalizing the extension list. Extensions are
// matched case-insensitively and may be given with or without a leading dot.
func NewConfig(root string, extensions []string, thumbWidth, thumbHeight int, dryRun bool) Config {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return Config{
		Root:        root,
		Extensions:  normalized,
		ThumbWidth:  thumbWidth,
		ThumbHeight: thumbHeight,
		DryRun:      dryRun,
	}
}

// allowed reports whether an extension (as returned by filepath.Ext) is on
// the allow-list.
func (c Config) allowed(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range c.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
