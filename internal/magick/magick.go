// Package magick drives the external ImageMagick convert tool for thumbnail
// generation.
package magick

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// binary is the ImageMagick command invoked for both the availability check
// and thumbnail generation.
const binary = "convert"

// InstallHint is shown to the operator when ImageMagick is missing.
const InstallHint = `ImageMagick is required for thumbnail generation.
  Ubuntu/Debian: sudo apt-get install imagemagick
  macOS:         brew install imagemagick
Also ensure ImageMagick has read/write permissions in policy.xml.`

// Check verifies that the convert tool is installed and invocable. A failure
// is a fatal precondition: the caller must abort before any mutation.
func Check() error {
	out, err := exec.Command(binary, "-version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("imagemagick unavailable: %w", err)
	}
	if !strings.Contains(string(out), "ImageMagick") {
		return errors.New("convert is installed but does not appear to be ImageMagick")
	}
	return nil
}

// Tool resizes images by shelling out to convert. It implements
// gallery.Resizer.
type Tool struct {
	// Quality is the output quality passed to convert; 80 when zero.
	Quality int
}

// Resize crops-and-resizes src to exactly width x height: resize to cover the
// box, gravity center, extent to the exact dimensions. A non-zero exit is
// returned as an error carrying the tool's stderr.
func (t Tool) Resize(src, dst string, width, height int) error {
	quality := t.Quality
	if quality == 0 {
		quality = 80
	}

	cmd := exec.Command(binary, resizeArgs(src, dst, width, height, quality)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("convert %s: %w: %s", src, err, msg)
		}
		return fmt.Errorf("convert %s: %w", src, err)
	}
	return nil
}

func resizeArgs(src, dst string, width, height, quality int) []string {
	box := fmt.Sprintf("%dx%d", width, height)
	return []string{
		src,
		"-thumbnail", box + "^",
		"-gravity", "center",
		"-extent", box,
		"-quality", strconv.Itoa(quality),
		dst,
	}
}
