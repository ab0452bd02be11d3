package gallery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// ImageRecord is one manifest entry. Unknown JSON fields found in an existing
// manifest (added by a newer schema revision) survive a verbatim reuse of the
// entry, so reindexing with an older binary does not strip them.
type ImageRecord struct {
	Name      string    `json:"name"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Size      int64     `json:"size"`
	Modified  time.Time `json:"modified"`
	Thumbnail string    `json:"thumbnail"`
	Hash      string    `json:"hash"`

	extra map[string]json.RawMessage
}

// knownRecordFields are the keys owned by ImageRecord itself.
var knownRecordFields = map[string]bool{
	"name": true, "width": true, "height": true, "size": true,
	"modified": true, "thumbnail": true, "hash": true,
}

func (r *ImageRecord) UnmarshalJSON(data []byte) error {
	type plain ImageRecord
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for k := range fields {
		if knownRecordFields[k] {
			delete(fields, k)
		}
	}
	if len(fields) > 0 {
		r.extra = fields
	}
	return nil
}

func (r ImageRecord) MarshalJSON() ([]byte, error) {
	type plain ImageRecord
	data, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	if len(r.extra) == 0 {
		return data, nil
	}

	// Splice the preserved fields after the known ones, in sorted key order
	// so output stays deterministic.
	keys := make([]string, 0, len(r.extra))
	for k := range r.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1]) // strip closing brace
	for _, k := range keys {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(r.extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AlbumManifest describes one album's current contents.
type AlbumManifest struct {
	Name      string        `json:"name"`
	Images    []ImageRecord `json:"images"`
	Count     int           `json:"count"`
	Generated time.Time     `json:"generated"`
	Version   string        `json:"version"`
}

// RootManifest lists the discovered albums.
type RootManifest struct {
	Albums    []string  `json:"albums"`
	Generated time.Time `json:"generated"`
	Version   string    `json:"version"`
}

// LoadState is the typed outcome of loading an existing manifest. Corrupt and
// absent manifests are both handled as "no prior manifest", but the caller
// can tell them apart.
type LoadState int

const (
	ManifestAbsent LoadState = iota
	ManifestCorrupt
	ManifestPresent
)

// loadManifest reads the manifest at path into v. An unreadable or malformed
// file is logged as a warning and reported as ManifestCorrupt; it never
// aborts the run.
func loadManifest(path string, v any) LoadState {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ManifestAbsent
		}
		log.Warn().Str("manifest", path).Err(err).Msg("Could not read existing manifest")
		return ManifestCorrupt
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Str("manifest", path).Err(err).Msg("Could not parse existing manifest")
		return ManifestCorrupt
	}
	return ManifestPresent
}

// writeManifest atomically replaces the file at path with the JSON encoding
// of v. The write goes to a temp file in the same directory first, so a
// partial manifest is never observed.
func writeManifest(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ManifestName+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing manifest: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}

// imagesEqual compares two image sequences by value, including any preserved
// unknown fields.
func imagesEqual(a, b []ImageRecord) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
