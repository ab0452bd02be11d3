package gallery

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestAlbumsMissingRoot(t *testing.T) {
	_, err := Albums(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrInvalidRoot) {
		t.Fatalf("expected ErrInvalidRoot, got %v", err)
	}
}

func TestAlbumsExcludesFilesAndThumbnails(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"B", "A", ThumbsDirName} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "stray.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	albums, err := Albums(root)
	if err != nil {
		t.Fatalf("Albums: %v", err)
	}
	want := []string{"A", "B"}
	if !reflect.DeepEqual(albums, want) {
		t.Errorf("Albums = %v, want %v", albums, want)
	}
}

func TestAlbumsEmptyRoot(t *testing.T) {
	albums, err := Albums(t.TempDir())
	if err != nil {
		t.Fatalf("Albums: %v", err)
	}
	if len(albums) != 0 {
		t.Errorf("expected no albums, got %v", albums)
	}
}
