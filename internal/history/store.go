// Package history persists a record of completed downloads so repeated
// runs skip videos that were already fetched, even after the files have
// been moved elsewhere.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	hash          TEXT PRIMARY KEY,
	video_id      TEXT NOT NULL,
	title         TEXT NOT NULL,
	url           TEXT NOT NULL,
	path          TEXT NOT NULL,
	size_bytes    INTEGER NOT NULL DEFAULT 0,
	downloaded_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_downloads_video_id ON downloads(video_id);
`

// Record is one completed download.
type Record struct {
	Hash         string
	VideoID      string
	Title        string
	URL          string
	Path         string
	SizeBytes    int64
	DownloadedAt time.Time
}

// Store persists download records to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle, applying the schema.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a completed download. Recording the same hash twice
// updates the existing row.
func (s *Store) Record(r Record) error {
	if r.DownloadedAt.IsZero() {
		r.DownloadedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO downloads (hash, video_id, title, url, path, size_bytes, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			path = excluded.path,
			size_bytes = excluded.size_bytes,
			downloaded_at = excluded.downloaded_at`,
		r.Hash, r.VideoID, r.Title, r.URL, r.Path, r.SizeBytes, r.DownloadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert download record: %w", err)
	}
	return nil
}

// Lookup returns the record for a video hash, or ErrNotFound.
func (s *Store) Lookup(hash string) (Record, error) {
	var r Record
	err := s.db.QueryRow(`
		SELECT hash, video_id, title, url, path, size_bytes, downloaded_at
		FROM downloads
		WHERE hash = ?`,
		hash,
	).Scan(&r.Hash, &r.VideoID, &r.Title, &r.URL, &r.Path, &r.SizeBytes, &r.DownloadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("query download record: %w", err)
	}
	return r, nil
}

// List returns all records, most recent first.
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT hash, video_id, title, url, path, size_bytes, downloaded_at
		FROM downloads
		ORDER BY downloaded_at DESC, hash ASC`)
	if err != nil {
		return nil, fmt.Errorf("query download records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Hash, &r.VideoID, &r.Title, &r.URL, &r.Path, &r.SizeBytes, &r.DownloadedAt); err != nil {
			return nil, fmt.Errorf("scan download record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Delete removes a record by hash. Deleting a missing record is not an
// error.
func (s *Store) Delete(hash string) error {
	if _, err := s.db.Exec(`DELETE FROM downloads WHERE hash = ?`, hash); err != nil {
		return fmt.Errorf("delete download record: %w", err)
	}
	return nil
}
