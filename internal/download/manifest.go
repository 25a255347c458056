package download

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ManifestName is the resume manifest written alongside downloads.
const ManifestName = ".coursarr_resume.json"

// ManifestEntry records one in-flight or interrupted transfer.
type ManifestEntry struct {
	Filename        string `json:"filename"`
	DownloadedBytes int64  `json:"downloadedBytes"`
	TotalBytes      int64  `json:"totalBytes"`
	Status          Status `json:"status"`
}

type manifestFile struct {
	ActiveDownloads map[string]ManifestEntry `json:"activeDownloads"`
	LastUpdated     time.Time                `json:"lastUpdated"`
}

// Manifest tracks interrupted downloads so a later run can resume them.
// Safe for concurrent use.
type Manifest struct {
	mu      sync.Mutex
	path    string
	entries map[string]ManifestEntry
}

// LoadManifest reads the resume manifest from dir. A missing file yields an
// empty manifest; a corrupt one is an error.
func LoadManifest(dir string) (*Manifest, error) {
	m := &Manifest{
		path:    filepath.Join(dir, ManifestName),
		entries: make(map[string]ManifestEntry),
	}

	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading resume manifest: %w", err)
	}

	var f manifestFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing resume manifest %s: %w", m.path, err)
	}
	if f.ActiveDownloads != nil {
		m.entries = f.ActiveDownloads
	}
	return m, nil
}

// Set records the state of one transfer keyed by video ID.
func (m *Manifest) Set(videoID string, e ManifestEntry) {
	m.mu.Lock()
	m.entries[videoID] = e
	m.mu.Unlock()
}

// Remove drops a finished transfer from the manifest.
func (m *Manifest) Remove(videoID string) {
	m.mu.Lock()
	delete(m.entries, videoID)
	m.mu.Unlock()
}

// Get returns the recorded entry for a video, if any.
func (m *Manifest) Get(videoID string) (ManifestEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[videoID]
	return e, ok
}

// Len returns the number of tracked transfers.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Save writes the manifest to disk. An empty manifest removes the file
// instead of leaving a stale marker behind.
func (m *Manifest) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == 0 {
		if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing resume manifest: %w", err)
		}
		return nil
	}

	f := manifestFile{
		ActiveDownloads: m.entries,
		LastUpdated:     time.Now().UTC(),
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding resume manifest: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("writing resume manifest: %w", err)
	}
	return nil
}
