package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeAged(t *testing.T, dir, name string, size int, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
		t.Fatal(err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	old := writeAged(t, dir, "ocr_old_front.jpg", 300, 100*time.Hour)
	writeAged(t, dir, "ocr_old_back.jpg", 200, 80*time.Hour)
	fresh := writeAged(t, dir, "ocr_new_front.jpg", 100, time.Hour)
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o750); err != nil {
		t.Fatal(err)
	}

	s := New(dir, "", true, WithLogger(quietLogger()))
	rep, err := s.Cleanup(context.Background(), DefaultTTL)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	if rep.Scanned != 3 {
		t.Errorf("Scanned: got %d, want 3 (directories are skipped)", rep.Scanned)
	}
	if rep.Deleted != 2 {
		t.Errorf("Deleted: got %d, want 2", rep.Deleted)
	}
	if rep.BytesFreed != 500 {
		t.Errorf("BytesFreed: got %d, want 500", rep.BytesFreed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expired upload still present")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh upload removed: %v", err)
	}
	if s := rep.String(); !strings.Contains(s, "deleted 2") || !strings.Contains(s, "500 B") {
		t.Errorf("String: got %q", s)
	}
}

func TestCleanup_MissingDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent"), "", true, WithLogger(quietLogger()))

	rep, err := s.Cleanup(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if rep.Scanned != 0 || rep.Deleted != 0 {
		t.Errorf("got %+v, want an empty report", rep)
	}
}

func TestCleanup_UpdatesIndex(t *testing.T) {
	dir := t.TempDir()
	ix := openTestIndex(t)
	ctx := context.Background()

	expired := writeAged(t, dir, "ocr_a_front.jpg", 10, 10*time.Hour)
	kept := writeAged(t, dir, "ocr_b_front.jpg", 10, time.Minute)
	for _, u := range []Upload{
		{RequestID: "ocr_a", Role: "front", Path: expired, ContentHash: "a", CreatedAt: time.Now().Add(-10 * time.Hour)},
		{RequestID: "ocr_b", Role: "front", Path: kept, ContentHash: "b", CreatedAt: time.Now()},
		// File already gone; only its age removes the row.
		{RequestID: "ocr_c", Role: "back", Path: filepath.Join(dir, "gone.jpg"), ContentHash: "c", CreatedAt: time.Now().Add(-20 * time.Hour)},
	} {
		if err := ix.Add(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	s := New(dir, "", true, WithIndex(ix), WithLogger(quietLogger()))
	if _, err := s.Cleanup(ctx, 5*time.Hour); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	n, err := ix.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("index rows: got %d, want 1", n)
	}
	if got, _ := ix.ByRequest(ctx, "ocr_b"); len(got) != 1 {
		t.Errorf("fresh row missing: %+v", got)
	}
}

func TestCleanup_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeAged(t, dir, "a.jpg", 1, 100*time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(dir, "", true, WithLogger(quietLogger())).Cleanup(ctx, time.Hour); err == nil {
		t.Error("expected the context error")
	}
}
