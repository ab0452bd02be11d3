package gallery

import (
	"encoding/json"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// galleryFixture builds a root with album A (two images) and empty album B.
func galleryFixture(t *testing.T) (cfg Config, root string) {
	t.Helper()
	root = t.TempDir()
	writeImage(t, filepath.Join(root, "A", "a1.jpg"), 640, 480, color.NRGBA{R: 250, A: 255})
	writeImage(t, filepath.Join(root, "A", "a2.png"), 320, 240, color.NRGBA{G: 250, A: 255})
	if err := os.Mkdir(filepath.Join(root, "B"), 0o755); err != nil {
		t.Fatal(err)
	}
	return NewConfig(root, nil, 120, 80, false), root
}

// rawImages returns the raw JSON of each image entry in an album manifest,
// keyed by image name.
func rawImages(t *testing.T, manifestPath string) map[string]string {
	t.Helper()
	var m struct {
		Images []json.RawMessage `json:"images"`
	}
	if err := json.Unmarshal(readFile(t, manifestPath), &m); err != nil {
		t.Fatalf("parsing %s: %v", manifestPath, err)
	}
	out := make(map[string]string, len(m.Images))
	for _, raw := range m.Images {
		var named struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &named); err != nil {
			t.Fatal(err)
		}
		out[named.Name] = string(raw)
	}
	return out
}

func TestIndexerFirstRun(t *testing.T) {
	cfg, root := galleryFixture(t)

	sum, err := NewIndexer(cfg, ImagingResizer{}).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Albums != 2 || sum.Images != 2 || sum.ThumbsBuilt != 2 || sum.ManifestsWritten != 3 {
		t.Errorf("unexpected summary: %+v", sum)
	}

	var rootManifest RootManifest
	if err := json.Unmarshal(readFile(t, filepath.Join(root, ManifestName)), &rootManifest); err != nil {
		t.Fatalf("root manifest: %v", err)
	}
	if len(rootManifest.Albums) != 2 || rootManifest.Albums[0] != "A" || rootManifest.Albums[1] != "B" {
		t.Errorf("root albums = %v, want [A B]", rootManifest.Albums)
	}
	if rootManifest.Version != SchemaVersion {
		t.Errorf("root version = %q", rootManifest.Version)
	}

	var a AlbumManifest
	if err := json.Unmarshal(readFile(t, filepath.Join(root, "A", ManifestName)), &a); err != nil {
		t.Fatalf("album A manifest: %v", err)
	}
	if a.Count != 2 || len(a.Images) != 2 || a.Count != len(a.Images) {
		t.Errorf("album A count = %d, images = %d", a.Count, len(a.Images))
	}
	if a.Images[0].Name != "a1.jpg" || a.Images[1].Name != "a2.png" {
		t.Errorf("album A image order: %s, %s", a.Images[0].Name, a.Images[1].Name)
	}
	if a.Images[0].Width != 640 || a.Images[0].Height != 480 {
		t.Errorf("a1.jpg dimensions = %dx%d", a.Images[0].Width, a.Images[0].Height)
	}
	if a.Images[0].Thumbnail != "thumbnails/a1.jpg" {
		t.Errorf("a1.jpg thumbnail path = %q", a.Images[0].Thumbnail)
	}
	if len(a.Images[0].Hash) != 64 {
		t.Errorf("a1.jpg hash = %q", a.Images[0].Hash)
	}

	var b AlbumManifest
	if err := json.Unmarshal(readFile(t, filepath.Join(root, "B", ManifestName)), &b); err != nil {
		t.Fatalf("album B manifest: %v", err)
	}
	if b.Count != 0 || b.Images == nil {
		t.Errorf("album B should have an empty, non-null images list: %+v", b)
	}

	for _, name := range []string{"a1.jpg", "a2.png"} {
		if !exists(filepath.Join(root, "A", ThumbsDirName, name)) {
			t.Errorf("missing thumbnail for %s", name)
		}
	}
}

func TestIndexerIdempotence(t *testing.T) {
	cfg, root := galleryFixture(t)
	ix := NewIndexer(cfg, ImagingResizer{})

	if _, err := ix.Run(); err != nil {
		t.Fatalf("first run: %v", err)
	}

	manifests := []string{
		filepath.Join(root, ManifestName),
		filepath.Join(root, "A", ManifestName),
		filepath.Join(root, "B", ManifestName),
	}
	before := make(map[string][]byte, len(manifests))
	for _, m := range manifests {
		before[m] = readFile(t, m)
	}

	sum, err := ix.Run()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.ThumbsBuilt != 0 {
		t.Errorf("second run rebuilt %d thumbnails, want 0", sum.ThumbsBuilt)
	}
	if sum.ManifestsWritten != 0 {
		t.Errorf("second run wrote %d manifests, want 0", sum.ManifestsWritten)
	}
	for _, m := range manifests {
		if string(readFile(t, m)) != string(before[m]) {
			t.Errorf("manifest %s changed on an unchanged tree", m)
		}
	}
}

func TestIndexerChangeDetection(t *testing.T) {
	cfg, root := galleryFixture(t)
	ix := NewIndexer(cfg, ImagingResizer{})

	if _, err := ix.Run(); err != nil {
		t.Fatalf("first run: %v", err)
	}
	manifestA := filepath.Join(root, "A", ManifestName)
	before := rawImages(t, manifestA)

	// Rewrite a2 with different bytes, bumped mtime.
	a2 := filepath.Join(root, "A", "a2.png")
	writeImage(t, a2, 300, 200, color.NRGBA{B: 250, A: 255})
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(a2, later, later); err != nil {
		t.Fatal(err)
	}

	sum, err := ix.Run()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.ThumbsBuilt != 1 {
		t.Errorf("rebuilt %d thumbnails, want exactly the changed image's", sum.ThumbsBuilt)
	}

	after := rawImages(t, manifestA)
	if before["a1.jpg"] != after["a1.jpg"] {
		t.Errorf("untouched entry changed:\nbefore %s\nafter  %s", before["a1.jpg"], after["a1.jpg"])
	}
	if before["a2.png"] == after["a2.png"] {
		t.Error("changed image's entry was not recomputed")
	}

	var a AlbumManifest
	if err := json.Unmarshal(readFile(t, manifestA), &a); err != nil {
		t.Fatal(err)
	}
	if a.Images[1].Width != 300 || a.Images[1].Height != 200 {
		t.Errorf("a2.png dimensions not recomputed: %dx%d", a.Images[1].Width, a.Images[1].Height)
	}
}

func TestIndexerStaleThumbnailDeleted(t *testing.T) {
	cfg, root := galleryFixture(t)
	ix := NewIndexer(cfg, ImagingResizer{})

	if _, err := ix.Run(); err != nil {
		t.Fatal(err)
	}
	thumb := filepath.Join(root, "A", ThumbsDirName, "a1.jpg")
	if err := os.Remove(thumb); err != nil {
		t.Fatal(err)
	}

	sum, err := ix.Run()
	if err != nil {
		t.Fatal(err)
	}
	if sum.ThumbsBuilt != 1 {
		t.Errorf("rebuilt %d thumbnails, want 1", sum.ThumbsBuilt)
	}
	if !exists(thumb) {
		t.Error("deleted thumbnail was not regenerated")
	}
}

func TestIndexerValidationGate(t *testing.T) {
	cfg, root := galleryFixture(t)
	if err := os.WriteFile(filepath.Join(root, "A", "a0bad.jpg"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	sum, err := NewIndexer(cfg, ImagingResizer{}).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.SkippedImages != 1 {
		t.Errorf("skipped = %d, want 1", sum.SkippedImages)
	}

	var a AlbumManifest
	if err := json.Unmarshal(readFile(t, filepath.Join(root, "A", ManifestName)), &a); err != nil {
		t.Fatal(err)
	}
	if a.Count != 2 {
		t.Errorf("count = %d, the corrupt file must be excluded", a.Count)
	}
	for _, img := range a.Images {
		if img.Name == "a0bad.jpg" {
			t.Error("corrupt file entered the manifest")
		}
	}
}

func TestIndexerDryRunPurity(t *testing.T) {
	cfg, root := galleryFixture(t)
	cfg.DryRun = true

	sum, err := NewIndexer(cfg, ImagingResizer{}).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.ManifestsWritten != 0 || sum.ThumbsBuilt != 0 {
		t.Errorf("dry run mutated state: %+v", sum)
	}

	for _, path := range []string{
		filepath.Join(root, ManifestName),
		filepath.Join(root, "A", ManifestName),
		filepath.Join(root, "B", ManifestName),
		filepath.Join(root, "A", ThumbsDirName),
	} {
		if exists(path) {
			t.Errorf("dry run created %s", path)
		}
	}
}

func TestIndexerRootManifestStability(t *testing.T) {
	cfg, root := galleryFixture(t)
	ix := NewIndexer(cfg, ImagingResizer{})
	if _, err := ix.Run(); err != nil {
		t.Fatal(err)
	}

	manifestA := readFile(t, filepath.Join(root, "A", ManifestName))
	manifestB := readFile(t, filepath.Join(root, "B", ManifestName))

	if err := os.Mkdir(filepath.Join(root, "C"), 0o755); err != nil {
		t.Fatal(err)
	}

	sum, err := ix.Run()
	if err != nil {
		t.Fatal(err)
	}
	// Root manifest plus the new album's own manifest.
	if sum.ManifestsWritten != 2 {
		t.Errorf("wrote %d manifests, want 2", sum.ManifestsWritten)
	}

	var rootManifest RootManifest
	if err := json.Unmarshal(readFile(t, filepath.Join(root, ManifestName)), &rootManifest); err != nil {
		t.Fatal(err)
	}
	if len(rootManifest.Albums) != 3 || rootManifest.Albums[2] != "C" {
		t.Errorf("root albums = %v", rootManifest.Albums)
	}

	if string(readFile(t, filepath.Join(root, "A", ManifestName))) != string(manifestA) {
		t.Error("album A manifest changed")
	}
	if string(readFile(t, filepath.Join(root, "B", ManifestName))) != string(manifestB) {
		t.Error("album B manifest changed")
	}
}

func TestIndexerCorruptManifestRebuild(t *testing.T) {
	cfg, root := galleryFixture(t)
	ix := NewIndexer(cfg, ImagingResizer{})
	if _, err := ix.Run(); err != nil {
		t.Fatal(err)
	}

	manifestA := filepath.Join(root, "A", ManifestName)
	if err := os.WriteFile(manifestA, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	sum, err := ix.Run()
	if err != nil {
		t.Fatalf("Run after corruption: %v", err)
	}
	if sum.ManifestsWritten != 1 {
		t.Errorf("wrote %d manifests, want the rebuilt album manifest only", sum.ManifestsWritten)
	}

	var a AlbumManifest
	if err := json.Unmarshal(readFile(t, manifestA), &a); err != nil {
		t.Fatalf("manifest not rebuilt: %v", err)
	}
	if a.Count != 2 {
		t.Errorf("rebuilt count = %d, want 2", a.Count)
	}
}

func TestIndexerVanishedImageDropped(t *testing.T) {
	cfg, root := galleryFixture(t)
	ix := NewIndexer(cfg, ImagingResizer{})
	if _, err := ix.Run(); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(root, "A", "a2.png")); err != nil {
		t.Fatal(err)
	}
	if _, err := ix.Run(); err != nil {
		t.Fatal(err)
	}

	var a AlbumManifest
	if err := json.Unmarshal(readFile(t, filepath.Join(root, "A", ManifestName)), &a); err != nil {
		t.Fatal(err)
	}
	if a.Count != 1 || a.Images[0].Name != "a1.jpg" {
		t.Errorf("vanished image still present: %+v", a.Images)
	}
	// The orphaned thumbnail is deliberately left behind.
	if !exists(filepath.Join(root, "A", ThumbsDirName, "a2.png")) {
		t.Error("orphaned thumbnail should not be pruned")
	}
}

func TestIndexerMissingRoot(t *testing.T) {
	cfg := NewConfig(filepath.Join(t.TempDir(), "missing"), nil, 120, 80, false)
	if _, err := NewIndexer(cfg, ImagingResizer{}).Run(); !errors.Is(err, ErrInvalidRoot) {
		t.Fatalf("expected ErrInvalidRoot, got %v", err)
	}
}
