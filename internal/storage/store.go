package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/rudl-extract/internal/imaging"
	"github.com/ironsheep/rudl-extract/internal/report"
)

// Defaults for stored uploads.
const (
	DefaultMediaURL = "/media/"
	DefaultQuality  = 92

	// URLPrefix is the path segment between the media URL and file names.
	URLPrefix = "ocr_uploads"
)

// ErrDisabled is returned by operations that need the upload index when
// none is configured.
var ErrDisabled = errors.New("upload index disabled")

// Store persists aligned uploads as JPEG files named after the request.
type Store struct {
	dir      string
	mediaURL string
	enabled  bool
	quality  int
	index    *Index
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIndex records every saved file in ix.
func WithIndex(ix *Index) Option {
	return func(s *Store) { s.index = ix }
}

// WithQuality sets the JPEG quality (1-100).
func WithQuality(q int) Option {
	return func(s *Store) { s.quality = q }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns a store writing into dir. A disabled store writes nothing
// and only hashes uploads.
func New(dir, mediaURL string, enabled bool, opts ...Option) *Store {
	if mediaURL == "" {
		mediaURL = DefaultMediaURL
	}
	s := &Store{
		dir:      dir,
		mediaURL: mediaURL,
		enabled:  enabled,
		quality:  DefaultQuality,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the upload directory.
func (s *Store) Dir() string { return s.dir }

// Enabled reports whether uploads are written to disk.
func (s *Store) Enabled() bool { return s.enabled }

// Index returns the upload index, or nil.
func (s *Store) Index() *Index { return s.index }

// ContentHash returns the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Save writes img as <dir>/<requestID>_<role>.jpg and returns its image
// reference. The hash covers the original upload bytes in source, not the
// re-encoded JPEG.
//
// On error the returned reference still carries the role and hash, with a
// nil StorageURL, so callers can record the upload and report the error.
func (s *Store) Save(ctx context.Context, img image.Image, requestID, role string, source []byte) (report.Image, error) {
	ref := report.Image{Role: role, ContentHash: ContentHash(source)}
	if !s.enabled {
		return ref, nil
	}

	name := requestID + "_" + role + ".jpg"
	path := filepath.Join(s.dir, name)
	size, err := s.write(path, img)
	if err != nil {
		return ref, err
	}

	url := s.URL(name)
	ref.StorageURL = &url

	if s.index != nil {
		err := s.index.Add(ctx, Upload{
			RequestID:   requestID,
			Role:        role,
			Path:        path,
			ContentHash: ref.ContentHash,
			Size:        size,
			CreatedAt:   s.now(),
		})
		if err != nil {
			// The file is saved; a missing index row only hides it from lookups.
			s.logger.Warn("failed to index upload", "path", path, "error", err)
		}
	}
	s.logger.Debug("upload stored", "path", path, "bytes", size)
	return ref, nil
}

// URL returns the public URL of a stored file name.
func (s *Store) URL(name string) string {
	return strings.TrimRight(s.mediaURL, "/") + "/" + URLPrefix + "/" + name
}

func (s *Store) write(path string, img image.Image) (int64, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return 0, fmt.Errorf("failed to create upload directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := imaging.EncodeJPEG(f, img, s.quality); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return 0, fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	info, err := f.Stat()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return info.Size(), nil
}

// Uploads returns the indexed uploads of one request.
func (s *Store) Uploads(ctx context.Context, requestID string) ([]Upload, error) {
	if s.index == nil {
		return nil, ErrDisabled
	}
	return s.index.ByRequest(ctx, requestID)
}
