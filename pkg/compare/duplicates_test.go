package compare

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sdejongh/musicsort/pkg/models"
)

func mediaFile(t *testing.T, dir, name string, content []byte) models.MediaFile {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return models.NewMediaFile(path, int64(len(content)), time.Now(), models.Metadata{})
}

func TestHasher(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("abc"), 200000) // 600KB
	f := mediaFile(t, dir, "a.mp3", content)
	h := NewHasher(0, nil)
	ctx := context.Background()

	t.Run("Full", func(t *testing.T) {
		got, err := h.Hash(ctx, f.Path)
		if err != nil {
			t.Fatalf("Hash() error = %v", err)
		}
		if want := fmt.Sprintf("%x", sha256.Sum256(content)); got != want {
			t.Errorf("Hash() = %s, want %s", got, want)
		}
	})

	t.Run("Partial", func(t *testing.T) {
		got, err := h.PartialHash(ctx, f.Path)
		if err != nil {
			t.Fatalf("PartialHash() error = %v", err)
		}
		if want := fmt.Sprintf("%x", sha256.Sum256(content[:partialHashSize])); got != want {
			t.Errorf("PartialHash() = %s, want %s", got, want)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := h.Hash(ctx, filepath.Join(dir, "missing")); err == nil {
			t.Error("Hash() should fail for missing file")
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := h.Hash(cctx, f.Path); err == nil {
			t.Error("Hash() should fail with cancelled context")
		}
	})
}

func TestDuplicateFinder(t *testing.T) {
	dir := t.TempDir()

	big := bytes.Repeat([]byte{1}, partialHashThreshold+10)
	bigSameHead := append(bytes.Repeat([]byte{1}, partialHashThreshold), bytes.Repeat([]byte{2}, 10)...)

	files := []models.MediaFile{
		mediaFile(t, dir, "a.mp3", []byte("same content")),
		mediaFile(t, dir, "b.mp3", []byte("same content")),
		mediaFile(t, dir, "c.mp3", []byte("diff content")), // same size, different bytes
		mediaFile(t, dir, "d.mp3", []byte("unique")),
		mediaFile(t, dir, "big1.flac", big),
		mediaFile(t, dir, "big2.flac", big),
		mediaFile(t, dir, "big3.flac", bigSameHead),
	}

	groups, err := NewDuplicateFinder(nil, 2).Find(context.Background(), files)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(groups), groups)
	}

	// Largest waste first
	if n := len(groups[0].Paths); n != 2 || filepath.Base(groups[0].Paths[0]) != "big1.flac" || filepath.Base(groups[0].Paths[1]) != "big2.flac" {
		t.Errorf("groups[0] = %v, want big1 and big2", groups[0].Paths)
	}
	if groups[0].Wasted() != int64(len(big)) {
		t.Errorf("Wasted() = %d, want %d", groups[0].Wasted(), len(big))
	}
	if filepath.Base(groups[1].Paths[0]) != "a.mp3" || filepath.Base(groups[1].Paths[1]) != "b.mp3" {
		t.Errorf("groups[1] = %v, want a and b", groups[1].Paths)
	}
}

func TestDuplicateFinderUnreadable(t *testing.T) {
	dir := t.TempDir()
	a := mediaFile(t, dir, "a.mp3", []byte("x"))
	b := mediaFile(t, dir, "b.mp3", []byte("x"))
	ghost := models.NewMediaFile(filepath.Join(dir, "ghost.mp3"), 1, time.Now(), models.Metadata{})

	groups, err := NewDuplicateFinder(nil, 0).Find(context.Background(), []models.MediaFile{a, ghost, b})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(groups) != 1 || len(groups[0].Paths) != 2 {
		t.Errorf("groups = %+v, want one pair without the unreadable file", groups)
	}
}

func TestDuplicateFinderNone(t *testing.T) {
	groups, err := NewDuplicateFinder(nil, 0).Find(context.Background(), nil)
	if err != nil || len(groups) != 0 {
		t.Errorf("Find(nil) = %v, %v, want no groups", groups, err)
	}
}
