package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/coursarr/internal/extract"
	"github.com/vmunix/coursarr/internal/history"
)

// RetryPolicy controls how failed downloads are retried. A video is tried
// MaxRetries+1 times with exponential backoff between tries.
type RetryPolicy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration
}

// DefaultRetryPolicy matches the documented defaults: up to 3 retries,
// delays of 1s, 2s, 4s capped at 60s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		BaseDelay:     time.Second,
		BackoffFactor: 2.0,
		MaxDelay:      60 * time.Second,
	}
}

// delay returns the backoff before retrying after the given 0-based failed
// attempt.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt)))
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Manager coordinates retries, duplicate detection, and bounded-concurrency
// course downloads on top of a Downloader.
type Manager struct {
	dl          *Downloader
	policy      RetryPolicy
	store       *history.Store
	sink        ProgressSink
	concurrency int
	log         *slog.Logger

	mu     sync.Mutex
	seen   map[string]bool
	failed map[string]int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) ManagerOption {
	return func(m *Manager) { m.policy = p }
}

// WithHistory enables persistent duplicate detection backed by a history
// store.
func WithHistory(s *history.Store) ManagerOption {
	return func(m *Manager) { m.store = s }
}

// WithSink registers a callback invoked after each video reaches a
// terminal state during a course download.
func WithSink(sink ProgressSink) ManagerOption {
	return func(m *Manager) { m.sink = sink }
}

// WithConcurrency bounds simultaneous downloads within a course.
func WithConcurrency(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithManagerLogger sets the logger.
func WithManagerLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a Manager with the default retry policy and 3
// concurrent downloads.
func NewManager(dl *Downloader, opts ...ManagerOption) *Manager {
	m := &Manager{
		dl:          dl,
		policy:      DefaultRetryPolicy(),
		concurrency: 3,
		log:         slog.Default(),
		seen:        make(map[string]bool),
		failed:      make(map[string]int),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Stats reports the manager's duplicate and failure counters.
func (m *Manager) Stats() (downloaded, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen), len(m.failed)
}

// isDuplicate reports whether the video was already fetched, either in
// this run or according to the history store. Either way the tracked file
// must still exist on disk; a recorded video whose file is gone is not a
// duplicate and gets fetched again.
func (m *Manager) isDuplicate(v extract.Video, path string) bool {
	hash := v.Key()

	m.mu.Lock()
	inRun := m.seen[hash]
	m.mu.Unlock()
	if inRun {
		_, err := os.Stat(path)
		return err == nil
	}

	if m.store == nil {
		return false
	}
	rec, err := m.store.Lookup(hash)
	if err != nil {
		return false
	}
	if fi, err := os.Stat(path); err == nil {
		if rec.SizeBytes == 0 || fi.Size() >= rec.SizeBytes {
			return true
		}
	}
	return false
}

func (m *Manager) markDownloaded(v extract.Video, path string, size int64) {
	hash := v.Key()

	m.mu.Lock()
	m.seen[hash] = true
	delete(m.failed, v.ID)
	m.mu.Unlock()

	if m.store == nil {
		return
	}
	err := m.store.Record(history.Record{
		Hash:      hash,
		VideoID:   v.ID,
		Title:     v.Title,
		URL:       v.SourceURL,
		Path:      path,
		SizeBytes: size,
	})
	if err != nil {
		m.log.Warn("recording download history", "video", v.ID, "error", err)
	}
}

func (m *Manager) markFailed(videoID string, tries int) {
	m.mu.Lock()
	m.failed[videoID] = tries
	m.mu.Unlock()
}

// DownloadWithRetry fetches one video into outputDir, retrying per the
// policy. Duplicates are skipped with a completed Progress and no network
// traffic. Cancellation and disk exhaustion abort immediately without
// retries.
func (m *Manager) DownloadWithRetry(ctx context.Context, v extract.Video, outputDir string) (*Progress, error) {
	return m.downloadWithRetry(ctx, v, outputDir, v.SizeBytes, nil)
}

func (m *Manager) downloadWithRetry(ctx context.Context, v extract.Video, outputDir string, size int64, manifest *Manifest) (*Progress, error) {
	filename := SafeFilename(v)
	path := filepath.Join(outputDir, filename)
	p := NewProgress(v.ID, filename)

	if m.isDuplicate(v, path) {
		m.log.Debug("skipping duplicate", "video", v.ID, "title", v.Title)
		p.setTotal(size)
		p.setDownloaded(size)
		p.setStatus(StatusCompleted)
		return p, nil
	}

	tries := m.policy.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < tries; attempt++ {
		if attempt > 0 {
			p.reset()
			select {
			case <-ctx.Done():
				lastErr = fmt.Errorf("%w: %v", ErrInterrupted, ctx.Err())
				p.setStatus(StatusPaused)
				m.updateManifest(manifest, v.ID, p)
				return p, lastErr
			case <-time.After(m.policy.delay(attempt - 1)):
			}
			m.log.Info("retrying download", "video", v.ID, "attempt", attempt+1, "of", tries)
		}

		lastErr = m.dl.DownloadFile(ctx, v.SourceURL, path, size, p)
		if lastErr == nil {
			m.markDownloaded(v, path, p.Downloaded())
			if manifest != nil {
				manifest.Remove(v.ID)
			}
			return p, nil
		}

		m.updateManifest(manifest, v.ID, p)

		if errors.Is(lastErr, ErrInterrupted) || errors.Is(lastErr, ErrDiskSpace) {
			return p, lastErr
		}
		m.log.Warn("download failed", "video", v.ID, "attempt", attempt+1, "error", lastErr)
	}

	m.markFailed(v.ID, tries)
	return p, fmt.Errorf("downloading %s after %d attempts: %w", v.ID, tries, lastErr)
}

func (m *Manager) updateManifest(manifest *Manifest, videoID string, p *Progress) {
	if manifest == nil {
		return
	}
	snap := p.Snapshot()
	manifest.Set(videoID, ManifestEntry{
		Filename:        snap.Filename,
		DownloadedBytes: snap.DownloadedBytes,
		TotalBytes:      snap.TotalBytes,
		Status:          snap.Status,
	})
}

// DownloadCourse fetches all videos of a course into a sanitized
// per-course directory under baseDir. Individual failures do not stop the
// batch; disk exhaustion stops new launches and cancellation pauses
// everything. The returned CourseProgress is complete in either case.
func (m *Manager) DownloadCourse(ctx context.Context, courseID, courseTitle string, videos []extract.Video, baseDir string) (*CourseProgress, error) {
	dir := filepath.Join(baseDir, Sanitize(courseTitle))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating course directory: %w", err)
	}

	manifest, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	cp := NewCourseProgress(courseID, courseTitle, len(videos))
	sizes := m.probeSizes(ctx, videos)
	for _, size := range sizes {
		cp.addTotalBytes(size)
	}

	type job struct {
		video extract.Video
		size  int64
	}
	pending := make([]job, 0, len(videos))
	for i, v := range videos {
		if m.dl.resume && m.isAlreadyComplete(v, dir, sizes[i]) {
			p := NewProgress(v.ID, SafeFilename(v))
			p.setTotal(sizes[i])
			p.setDownloaded(sizes[i])
			p.setStatus(StatusCompleted)
			cp.record(v.ID, p)
			manifest.Remove(v.ID)
			m.notify(cp)
			continue
		}
		pending = append(pending, job{video: v, size: sizes[i]})
	}

	var diskFull atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for _, j := range pending {
		j := j
		v := j.video
		g.Go(func() error {
			if diskFull.Load() || gctx.Err() != nil {
				p := NewProgress(v.ID, SafeFilename(v))
				if diskFull.Load() {
					p.fail(ErrDiskSpace)
				} else {
					p.setStatus(StatusPaused)
				}
				cp.record(v.ID, p)
				m.notify(cp)
				return nil
			}

			p, err := m.downloadWithRetry(gctx, v, dir, j.size, manifest)
			cp.record(v.ID, p)
			m.notify(cp)

			switch {
			case errors.Is(err, ErrDiskSpace):
				diskFull.Store(true)
			case errors.Is(err, ErrInterrupted):
				return err
			case err != nil:
				m.log.Error("video download failed", "video", v.ID, "title", v.Title, "error", err)
			}
			return nil
		})
	}

	waitErr := g.Wait()
	cp.finish()

	if err := manifest.Save(); err != nil {
		m.log.Warn("saving resume manifest", "error", err)
	}

	if diskFull.Load() {
		return cp, fmt.Errorf("%w: course %s stopped early", ErrDiskSpace, courseID)
	}
	if waitErr != nil {
		return cp, waitErr
	}
	return cp, nil
}

// probeSizes resolves unknown file sizes concurrently, bounded by the
// manager's concurrency. Streaming and embed formats are never probed.
func (m *Manager) probeSizes(ctx context.Context, videos []extract.Video) []int64 {
	sizes := make([]int64, len(videos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for i := range videos {
		i := i
		v := videos[i]
		sizes[i] = v.SizeBytes
		if v.SizeBytes > 0 || !probeable(v.Format) {
			continue
		}
		g.Go(func() error {
			size, err := m.dl.ProbeSize(gctx, v.SourceURL)
			if err != nil {
				m.log.Debug("size probe failed", "video", v.ID, "error", err)
				return nil
			}
			sizes[i] = size
			return nil
		})
	}
	g.Wait()
	return sizes
}

func probeable(f extract.Format) bool {
	switch f {
	case extract.FormatHLS, extract.FormatDASH, extract.FormatYouTube, extract.FormatVimeo:
		return false
	}
	return true
}

// isAlreadyComplete reports whether the video's file already exists on
// disk with at least the expected size.
func (m *Manager) isAlreadyComplete(v extract.Video, dir string, size int64) bool {
	if size <= 0 {
		return false
	}
	fi, err := os.Stat(filepath.Join(dir, SafeFilename(v)))
	return err == nil && fi.Size() >= size
}

func (m *Manager) notify(cp *CourseProgress) {
	if m.sink == nil {
		return
	}
	snap := cp.Snapshot()
	go m.sink(snap)
}
