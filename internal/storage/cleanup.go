package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultTTL is how long uploads are kept.
const DefaultTTL = 72 * time.Hour

// CleanupReport summarizes one sweep.
type CleanupReport struct {
	Scanned    int       `json:"scanned"`
	Deleted    int       `json:"deleted"`
	BytesFreed int64     `json:"bytes_freed"`
	Cutoff     time.Time `json:"cutoff"`
}

// String renders the report for people, e.g.
// "scanned 12, deleted 3 (1.2 MB) older than 3 days ago".
func (r CleanupReport) String() string {
	return fmt.Sprintf("scanned %d, deleted %d (%s) older than %s",
		r.Scanned, r.Deleted, humanize.Bytes(uint64(max(r.BytesFreed, 0))), humanize.Time(r.Cutoff))
}

// Cleanup deletes regular files in the upload directory last modified
// before now-ttl. Files that cannot be inspected or removed are skipped.
// A missing directory yields an empty report.
//
// Index rows of deleted files are removed, and rows older than the cutoff
// are pruned even when their file is already gone.
func (s *Store) Cleanup(ctx context.Context, ttl time.Duration) (CleanupReport, error) {
	rep := CleanupReport{Cutoff: s.now().Add(-ttl)}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rep, nil
		}
		return rep, fmt.Errorf("failed to read upload directory: %w", err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		if !entry.Type().IsRegular() {
			continue
		}
		rep.Scanned++

		info, err := entry.Info()
		if err != nil {
			s.logger.Debug("skipping upload", "name", entry.Name(), "error", err)
			continue
		}
		if !info.ModTime().Before(rep.Cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to delete upload", "path", path, "error", err)
			continue
		}
		rep.Deleted++
		rep.BytesFreed += info.Size()

		if s.index != nil {
			if err := s.index.Remove(ctx, path); err != nil {
				s.logger.Warn("failed to remove index row", "path", path, "error", err)
			}
		}
	}

	if s.index != nil {
		if n, err := s.index.Prune(ctx, rep.Cutoff); err != nil {
			s.logger.Warn("failed to prune upload index", "error", err)
		} else if n > 0 {
			s.logger.Debug("pruned upload index", "rows", n)
		}
	}

	s.logger.Info("upload cleanup complete",
		"scanned", rep.Scanned,
		"deleted", rep.Deleted,
		"freed", humanize.Bytes(uint64(rep.BytesFreed)))
	return rep, nil
}
