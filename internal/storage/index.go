package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DefaultIndexFile is the index database file name.
const DefaultIndexFile = "uploads.db"

// Upload is one indexed file.
type Upload struct {
	RequestID   string    `json:"request_id"`
	Role        string    `json:"role"`
	Path        string    `json:"path"`
	ContentHash string    `json:"content_hash"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Index is a SQLite table of stored uploads. It must live outside the
// upload directory, which cleanup sweeps.
type Index struct {
	db   *sql.DB
	path string
}

// OpenIndex opens or creates the index database at path.
func OpenIndex(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ix := &Index{db: db, path: path}
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := ix.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return ix, nil
}

// Path returns the database file path.
func (ix *Index) Path() string { return ix.path }

// Close closes the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS uploads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		role TEXT NOT NULL,
		path TEXT NOT NULL UNIQUE,
		content_hash TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_request ON uploads(request_id);
	CREATE INDEX IF NOT EXISTS idx_uploads_created ON uploads(created_at);
	`
	_, err := ix.db.ExecContext(context.Background(), schema)
	return err
}

// Add records an upload, replacing any row for the same path.
func (ix *Index) Add(ctx context.Context, u Upload) error {
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO uploads (request_id, role, path, content_hash, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			request_id = excluded.request_id,
			role = excluded.role,
			content_hash = excluded.content_hash,
			size = excluded.size,
			created_at = excluded.created_at`,
		u.RequestID, u.Role, u.Path, u.ContentHash, u.Size, u.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}
	return nil
}

// ByRequest returns the uploads of one request ordered by role.
func (ix *Index) ByRequest(ctx context.Context, requestID string) ([]Upload, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT request_id, role, path, content_hash, size, created_at
		FROM uploads WHERE request_id = ? ORDER BY role`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Upload
	for rows.Next() {
		var u Upload
		var created int64
		if err := rows.Scan(&u.RequestID, &u.Role, &u.Path, &u.ContentHash, &u.Size, &created); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		u.CreatedAt = time.Unix(created, 0)
		out = append(out, u)
	}
	return out, rows.Err()
}

// Remove deletes the row for path. Removing an unknown path is not an error.
func (ix *Index) Remove(ctx context.Context, path string) error {
	if _, err := ix.db.ExecContext(ctx, "DELETE FROM uploads WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to delete upload row: %w", err)
	}
	return nil
}

// Prune deletes rows created before cutoff and returns how many went.
func (ix *Index) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := ix.db.ExecContext(ctx, "DELETE FROM uploads WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune uploads: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of indexed uploads.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM uploads").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count uploads: %w", err)
	}
	return n, nil
}
