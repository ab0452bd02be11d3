package gallery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrInvalidRoot indicates the gallery root directory does not exist. It is
// a fatal precondition failure: nothing is mutated when it is returned.
var ErrInvalidRoot = errors.New("gallery root does not exist")

// Albums returns the names of the album directories directly under root, in
// lexicographic order. The reserved thumbnails directory is excluded, as are
// plain files. Read-only: no side effects.
func Albums(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, root)
		}
		return nil, fmt.Errorf("reading gallery root: %w", err)
	}

	albums := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ThumbsDirName {
			continue
		}
		albums = append(albums, entry.Name())
	}
	return albums, nil
}
