package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Resizer produces a thumbnail at exactly the target dimensions using a
// fill-and-center-crop policy: resize preserving aspect ratio to cover the
// target box, then crop centered. Implementations process one image per call
// and report per-image success or failure, so a pooled implementation can be
// substituted without changing the reconciler.
type Resizer interface {
	Resize(src, dst string, width, height int) error
}

// ImagingResizer is the in-process resize engine, built on
// disintegration/imaging. It needs no external tool.
type ImagingResizer struct {
	// Quality is the JPEG quality; ThumbQuality when zero.
	Quality int
}

// Resize implements Resizer with imaging.Fill, which covers the target box
// and center-crops to the exact dimensions.
func (r ImagingResizer) Resize(src, dst string, width, height int) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}

	quality := r.Quality
	if quality == 0 {
		quality = ThumbQuality
	}

	thumb := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	// imaging has no webp encoder; chai2010/webp covers that case.
	if strings.ToLower(filepath.Ext(dst)) == ".webp" {
		f, err := os.Create(dst)
		if err != nil {
			return fmt.Errorf("create %s: %w", dst, err)
		}
		defer f.Close()
		if err := webp.Encode(f, thumb, &webp.Options{Quality: float32(quality)}); err != nil {
			return fmt.Errorf("encode %s: %w", dst, err)
		}
		return nil
	}

	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("save %s: %w", dst, err)
	}
	return nil
}
