// Package config loads the optional gallery.yaml settings file. The file
// supplies defaults for the index and crawl commands; explicit flags win.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so values like "1s" parse from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Thumbnail is the target thumbnail box.
type Thumbnail struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Crawler holds the crawl command defaults.
type Crawler struct {
	BaseURL     string   `yaml:"base_url"`
	GalleryPath string   `yaml:"gallery_path"`
	Output      string   `yaml:"output"`
	MaxPages    int      `yaml:"max_pages"`
	Delay       Duration `yaml:"delay"`
}

// File is the gallery.yaml schema.
type File struct {
	Extensions []string  `yaml:"extensions"`
	Thumbnail  Thumbnail `yaml:"thumbnail"`
	Crawler    Crawler   `yaml:"crawler"`
}

// Default returns the built-in settings, matching the CLI flag defaults.
func Default() File {
	return File{
		Extensions: []string{".jpg", ".jpeg", ".png", ".gif"},
		Thumbnail:  Thumbnail{Width: 300, Height: 300},
		Crawler: Crawler{
			BaseURL:     "https://www.olografix.org",
			GalleryPath: "/category/photogallery/",
			Output:      "downloads",
			MaxPages:    9,
			Delay:       Duration(time.Second),
		},
	}
}

// Load reads a settings file on top of the defaults.
func Load(path string) (File, error) {
	f := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return f, nil
}
