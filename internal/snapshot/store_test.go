package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	idA = "123e4567-e89b-12d3-a456-426614174000"
	idB = "223e4567-e89b-12d3-a456-426614174000"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "snaps"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestSaveGetReadImage(t *testing.T) {
	s := newStore(t)
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	if err := s.Save(Meta{ID: idA, SessionID: "s1", Format: FormatSVG, Width: 400, Height: 300}, svg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	meta, err := s.Get(idA)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if meta.SizeBytes != len(svg) || meta.SessionID != "s1" {
		t.Fatalf("Get() = %+v", meta)
	}

	data, format, err := s.ReadImage(idA)
	if err != nil {
		t.Fatalf("ReadImage() error = %v", err)
	}
	if format != FormatSVG || !bytes.Equal(data, svg) {
		t.Fatalf("ReadImage() = %q, %q", data, format)
	}
	if ContentType(format) != "image/svg+xml" || ContentType(FormatPNG) != "image/png" {
		t.Fatalf("ContentType() mismatch")
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	s := newStore(t)
	if err := s.Save(Meta{ID: "../etc/passwd", Format: FormatSVG}, nil); err == nil {
		t.Fatalf("Save() with invalid id error = nil")
	}
	if err := s.Save(Meta{ID: idA, Format: "gif"}, nil); err == nil {
		t.Fatalf("Save() with gif error = nil")
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := newStore(t)
	if _, err := s.Get(idA); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v; want ErrNotFound", err)
	}
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(invalid) error = %v; want ErrNotFound", err)
	}
}

func TestListFiltersBySessionNewestFirst(t *testing.T) {
	s := newStore(t)
	now := time.Now()
	_ = s.Save(Meta{ID: idA, SessionID: "s1", Format: FormatSVG, CreatedAt: now.Add(-time.Minute)}, []byte("a"))
	_ = s.Save(Meta{ID: idB, SessionID: "s2", Format: FormatPNG, CreatedAt: now}, []byte("b"))

	all, err := s.List("")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 || all[0].ID != idB {
		t.Fatalf("List() = %+v; want idB first", all)
	}
	s1, _ := s.List("s1")
	if len(s1) != 1 || s1[0].ID != idA {
		t.Fatalf("List(s1) = %+v; want only idA", s1)
	}
}

func TestDeleteLogsImageCleanupFailureWhenImageMissing(t *testing.T) {
	dir := t.TempDir()
	store := &Store{dir: dir}

	metaBytes, err := json.Marshal(Meta{ID: idA, Format: FormatPNG})
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, idA+".json"), metaBytes, 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	var buf bytes.Buffer
	oldLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(oldLogger)
	})

	if err := store.Delete(idA); err != nil {
		t.Fatalf("Delete() = %v; want nil", err)
	}
	if !strings.Contains(buf.String(), "snapshot image cleanup failed") {
		t.Fatalf("expected image cleanup debug log, got %q", buf.String())
	}
	if _, err := store.Get(idA); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after Delete() error = %v; want ErrNotFound", err)
	}
}
