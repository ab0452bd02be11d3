package gallery

import (
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// Indexer runs one indexing pass over a gallery root. Albums are processed
// one at a time, images within an album one at a time, in sorted order.
type Indexer struct {
	cfg     Config
	resizer Resizer
}

// NewIndexer creates an Indexer using the given resize engine.
func NewIndexer(cfg Config, r Resizer) *Indexer {
	return &Indexer{cfg: cfg, resizer: r}
}

// Summary reports what one indexing run did.
type Summary struct {
	Albums           int
	Images           int
	SkippedImages    int
	ThumbsBuilt      int
	ManifestsWritten int
}

// Run indexes the whole gallery: reconciles the root manifest, then every
// album manifest. Only root-level precondition failures are returned as
// errors; per-image and per-manifest problems are logged and skipped.
func (ix *Indexer) Run() (*Summary, error) {
	albums, err := Albums(ix.cfg.Root)
	if err != nil {
		return nil, err
	}

	if !ix.cfg.DryRun {
		for _, album := range albums {
			thumbDir := filepath.Join(ix.cfg.Root, album, ThumbsDirName)
			if err := os.MkdirAll(thumbDir, 0o755); err != nil {
				return nil, fmt.Errorf("creating thumbnails directory: %w", err)
			}
		}
	}

	sum := &Summary{Albums: len(albums)}

	if err := ix.reconcileRoot(albums, sum); err != nil {
		return nil, err
	}
	for _, album := range albums {
		if err := ix.indexAlbum(album, sum); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// reconcileRoot rewrites the root manifest only when the album list changed.
func (ix *Indexer) reconcileRoot(albums []string, sum *Summary) error {
	manifestPath := filepath.Join(ix.cfg.Root, ManifestName)

	var prior RootManifest
	state := loadManifest(manifestPath, &prior)
	if state == ManifestPresent && slices.Equal(prior.Albums, albums) {
		log.Info().Msg("Root manifest up to date")
		return nil
	}

	if ix.cfg.DryRun {
		log.Info().Int("albums", len(albums)).Msg("Would write root manifest")
		return nil
	}

	next := RootManifest{
		Albums:    albums,
		Generated: time.Now(),
		Version:   SchemaVersion,
	}
	if err := writeManifest(manifestPath, next); err != nil {
		return fmt.Errorf("root manifest: %w", err)
	}
	sum.ManifestsWritten++
	log.Info().Int("albums", len(albums)).Msg("Wrote root manifest")
	return nil
}

// indexAlbum validates and synchronizes every image in the album, reuses
// prior manifest entries whose content hash is unchanged, and rewrites the
// album manifest only when the images sequence differs from the prior one.
func (ix *Indexer) indexAlbum(album string, sum *Summary) error {
	dir := filepath.Join(ix.cfg.Root, album)
	manifestPath := filepath.Join(dir, ManifestName)

	var prior AlbumManifest
	state := loadManifest(manifestPath, &prior)

	priorByName := make(map[string]ImageRecord, len(prior.Images))
	if state == ManifestPresent {
		for _, rec := range prior.Images {
			priorByName[rec.Name] = rec
		}
	}

	files, err := ix.albumFiles(dir)
	if err != nil {
		return err
	}

	records := make([]ImageRecord, 0, len(files))
	for _, name := range files {
		imagePath := filepath.Join(dir, name)
		if !IsValidImage(ix.cfg, imagePath) {
			sum.SkippedImages++
			continue
		}

		thumbPath := filepath.Join(dir, ThumbsDirName, name)
		ok, regenerated := SyncThumbnail(ix.cfg, ix.resizer, imagePath, thumbPath)
		if regenerated {
			sum.ThumbsBuilt++
		}
		if !ok {
			sum.SkippedImages++
			continue
		}

		hash, err := FileHash(imagePath)
		if err != nil {
			log.Warn().Str("image", imagePath).Err(err).Msg("Hashing failed")
			sum.SkippedImages++
			continue
		}

		if prev, found := priorByName[name]; found && prev.Hash == hash {
			// Unchanged content: reuse the prior entry verbatim.
			records = append(records, prev)
			sum.Images++
			continue
		}

		rec, err := newImageRecord(imagePath, name, hash)
		if err != nil {
			log.Warn().Str("image", imagePath).Err(err).Msg("Reading image metadata failed")
			sum.SkippedImages++
			continue
		}
		records = append(records, rec)
		sum.Images++
	}

	if state == ManifestPresent && imagesEqual(prior.Images, records) {
		log.Info().Str("album", album).Msg("Album manifest up to date")
		return nil
	}

	if ix.cfg.DryRun {
		log.Info().Str("album", album).Int("images", len(records)).Msg("Would write album manifest")
		return nil
	}

	next := AlbumManifest{
		Name:      album,
		Images:    records,
		Count:     len(records),
		Generated: time.Now(),
		Version:   SchemaVersion,
	}
	if err := writeManifest(manifestPath, next); err != nil {
		return fmt.Errorf("album %s manifest: %w", album, err)
	}
	sum.ManifestsWritten++
	log.Info().Str("album", album).Int("images", len(records)).Msg("Wrote album manifest")
	return nil
}

// albumFiles lists the candidate image filenames in the album directory, in
// sorted order. Only plain files with an allowed extension are considered.
func (ix *Indexer) albumFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading album %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !ix.cfg.allowed(filepath.Ext(entry.Name())) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// newImageRecord computes fresh metadata for an image.
func newImageRecord(imagePath, name, hash string) (ImageRecord, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return ImageRecord{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		return ImageRecord{}, fmt.Errorf("decode: %w", err)
	}

	st, err := os.Stat(imagePath)
	if err != nil {
		return ImageRecord{}, fmt.Errorf("stat: %w", err)
	}

	return ImageRecord{
		Name:      name,
		Width:     ic.Width,
		Height:    ic.Height,
		Size:      st.Size(),
		Modified:  st.ModTime(),
		Thumbnail: path.Join(ThumbsDirName, name),
		Hash:      hash,
	}, nil
}
