package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(hash string) Record {
	return Record{
		Hash:      hash,
		VideoID:   "block-1",
		Title:     "Lecture 1",
		URL:       "https://cdn.example.org/lecture1.mp4",
		Path:      "/downloads/Course/Lecture 1.mp4",
		SizeBytes: 1024,
	}
}

func TestRecordAndLookup(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Record(sample("abc123")))

	rec, err := s.Lookup("abc123")
	require.NoError(t, err)
	assert.Equal(t, "block-1", rec.VideoID)
	assert.Equal(t, "Lecture 1", rec.Title)
	assert.Equal(t, int64(1024), rec.SizeBytes)
	assert.False(t, rec.DownloadedAt.IsZero(), "timestamp filled in on record")
}

func TestLookupMissing(t *testing.T) {
	s := testStore(t)

	_, err := s.Lookup("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordUpsert(t *testing.T) {
	s := testStore(t)

	r := sample("abc123")
	require.NoError(t, s.Record(r))

	r.Path = "/archive/Lecture 1.mp4"
	r.SizeBytes = 2048
	require.NoError(t, s.Record(r))

	rec, err := s.Lookup("abc123")
	require.NoError(t, err)
	assert.Equal(t, "/archive/Lecture 1.mp4", rec.Path)
	assert.Equal(t, int64(2048), rec.SizeBytes)

	records, err := s.List()
	require.NoError(t, err)
	assert.Len(t, records, 1, "upsert must not duplicate the row")
}

func TestListOrder(t *testing.T) {
	s := testStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, hash := range []string{"old", "mid", "new"} {
		r := sample(hash)
		r.DownloadedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.Record(r))
	}

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "new", records[0].Hash)
	assert.Equal(t, "mid", records[1].Hash)
	assert.Equal(t, "old", records[2].Hash)
}

func TestDelete(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Record(sample("abc123")))
	require.NoError(t, s.Delete("abc123"))

	_, err := s.Lookup("abc123")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete("abc123"), "deleting a missing record is fine")
}
