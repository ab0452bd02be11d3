package gallery

import (
	"image"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	// Decoders for every supported format. The stdlib covers the default
	// allow-list; webp, bmp and tiff are available for custom --extensions.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// IsValidImage reports whether path names a well-formed image with an allowed
// extension. The check decodes only the image header, never the full pixel
// data. Decode failures are logged as warnings and treated as "not an image";
// they never abort the run.
func IsValidImage(cfg Config, path string) bool {
	if !cfg.allowed(filepath.Ext(path)) {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		log.Warn().Str("image", path).Err(err).Msg("Cannot open image")
		return false
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		log.Warn().Str("image", path).Err(err).Msg("Invalid image")
		return false
	}
	return true
}
