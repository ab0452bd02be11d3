package gallery

import (
	"image"
	"os"

	"github.com/rs/zerolog/log"
)

// thumbStale reports whether the thumbnail at thumbPath must be regenerated
// for imagePath. The checks run in order: missing thumbnail, source modified
// after the thumbnail, thumbnail unreadable or not at the target dimensions.
func thumbStale(cfg Config, imagePath, thumbPath string) bool {
	tst, err := os.Stat(thumbPath)
	if err != nil {
		return true
	}

	sst, err := os.Stat(imagePath)
	if err != nil {
		return true
	}
	if sst.ModTime().After(tst.ModTime()) {
		return true
	}

	f, err := os.Open(thumbPath)
	if err != nil {
		return true
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		return true
	}
	return ic.Width != cfg.ThumbWidth || ic.Height != cfg.ThumbHeight
}

// SyncThumbnail ensures the thumbnail for imagePath is fresh, regenerating it
// through the resizer when stale. ok reports whether the image may enter the
// manifest; regenerated reports whether a resize actually ran.
//
// Generation failures are logged and non-fatal: the image is skipped for this
// run. In dry-run mode nothing is invoked or written and the result is a
// vacuous success.
func SyncThumbnail(cfg Config, r Resizer, imagePath, thumbPath string) (ok, regenerated bool) {
	stale := thumbStale(cfg, imagePath, thumbPath)

	if cfg.DryRun {
		if stale {
			log.Info().Str("thumbnail", thumbPath).Msg("Would create thumbnail")
		} else {
			log.Debug().Str("thumbnail", thumbPath).Msg("Thumbnail up to date")
		}
		return true, false
	}

	if !stale {
		log.Debug().Str("thumbnail", thumbPath).Msg("Thumbnail up to date")
		return true, false
	}

	if err := r.Resize(imagePath, thumbPath, cfg.ThumbWidth, cfg.ThumbHeight); err != nil {
		log.Warn().Str("image", imagePath).Err(err).Msg("Thumbnail generation failed")
		return false, false
	}
	return true, true
}
