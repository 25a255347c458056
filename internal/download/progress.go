// Package download moves video files to disk: one resumable transfer per
// file, a retry wrapper per video, and a bounded-concurrency orchestrator
// per course.
package download

import (
	"sync"
	"time"
)

// Status tracks transfer state.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	// StatusPaused marks a deliberately interrupted transfer whose partial
	// file is kept for resume.
	StatusPaused Status = "paused"
)

// Progress tracks a single file transfer. The downloading goroutine is the
// only writer; anyone else reads through Snapshot.
type Progress struct {
	mu       sync.Mutex
	videoID  string
	filename string
	total    int64
	done     int64
	speed    float64
	eta      int64
	status   Status
	err      error
	started  time.Time
	finished time.Time
}

// ProgressSnapshot is a point-in-time copy of a Progress.
type ProgressSnapshot struct {
	VideoID          string
	Filename         string
	TotalBytes       int64
	DownloadedBytes  int64
	SpeedBytesPerSec float64
	ETASeconds       int64
	Status           Status
	Error            string
}

// NewProgress creates a pending progress tracker.
func NewProgress(videoID, filename string) *Progress {
	return &Progress{
		videoID:  videoID,
		filename: filename,
		status:   StatusPending,
		started:  time.Now(),
	}
}

// Snapshot returns a consistent copy of the current state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := ProgressSnapshot{
		VideoID:          p.videoID,
		Filename:         p.filename,
		TotalBytes:       p.total,
		DownloadedBytes:  p.done,
		SpeedBytesPerSec: p.speed,
		ETASeconds:       p.eta,
		Status:           p.status,
	}
	if p.err != nil {
		s.Error = p.err.Error()
	}
	return s
}

// Percent returns completion as a percentage, 0 when the total is unknown.
func (s ProgressSnapshot) Percent() float64 {
	if s.TotalBytes == 0 {
		return 0
	}
	return float64(s.DownloadedBytes) / float64(s.TotalBytes) * 100
}

// VideoID returns the tracked video's ID.
func (p *Progress) VideoID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.videoID
}

// Status returns the current transfer status.
func (p *Progress) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Err returns the failure cause, if any.
func (p *Progress) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// IsComplete reports whether the transfer finished with the full byte range
// written.
func (p *Progress) IsComplete() bool { return p.Status() == StatusCompleted }

// IsFailed reports whether the transfer failed terminally.
func (p *Progress) IsFailed() bool { return p.Status() == StatusFailed }

// Total returns the known total size, 0 when not yet known.
func (p *Progress) Total() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Downloaded returns the bytes written so far.
func (p *Progress) Downloaded() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *Progress) setStatus(s Status) {
	p.mu.Lock()
	p.status = s
	if s == StatusCompleted || s == StatusFailed || s == StatusPaused {
		p.finished = time.Now()
	}
	p.mu.Unlock()
}

func (p *Progress) setTotal(n int64) {
	p.mu.Lock()
	p.total = n
	p.mu.Unlock()
}

func (p *Progress) setDownloaded(n int64) {
	p.mu.Lock()
	p.done = n
	p.mu.Unlock()
}

func (p *Progress) addBytes(n int64) {
	p.mu.Lock()
	p.done += n
	p.mu.Unlock()
}

func (p *Progress) setRate(speed float64, eta int64) {
	p.mu.Lock()
	p.speed = speed
	p.eta = eta
	p.mu.Unlock()
}

func (p *Progress) fail(err error) {
	p.mu.Lock()
	p.status = StatusFailed
	p.err = err
	p.finished = time.Now()
	p.mu.Unlock()
}

func (p *Progress) reset() {
	p.mu.Lock()
	p.status = StatusPending
	p.err = nil
	p.done = 0
	p.speed = 0
	p.eta = 0
	p.mu.Unlock()
}

// CourseProgress aggregates transfer state for one course. Multiple
// download goroutines record into it; all access is mutex-guarded.
type CourseProgress struct {
	mu          sync.Mutex
	courseID    string
	courseTitle string
	total       int
	completed   int
	failed      int
	totalBytes  int64
	doneBytes   int64
	videos      map[string]*Progress
	started     time.Time
	finished    time.Time
}

// CourseSnapshot is a point-in-time copy of a CourseProgress.
type CourseSnapshot struct {
	CourseID        string
	CourseTitle     string
	TotalVideos     int
	CompletedVideos int
	FailedVideos    int
	TotalBytes      int64
	DownloadedBytes int64
	Videos          map[string]ProgressSnapshot
}

// NewCourseProgress creates an aggregate for total videos.
func NewCourseProgress(courseID, courseTitle string, total int) *CourseProgress {
	return &CourseProgress{
		courseID:    courseID,
		courseTitle: courseTitle,
		total:       total,
		videos:      make(map[string]*Progress),
		started:     time.Now(),
	}
}

// record folds one video's terminal progress into the aggregate.
func (cp *CourseProgress) record(videoID string, p *Progress) {
	snap := p.Snapshot()

	cp.mu.Lock()
	defer cp.mu.Unlock()

	cp.videos[videoID] = p
	switch snap.Status {
	case StatusCompleted:
		cp.completed++
		cp.doneBytes += snap.DownloadedBytes
	case StatusFailed:
		cp.failed++
	}
}

func (cp *CourseProgress) addTotalBytes(n int64) {
	cp.mu.Lock()
	cp.totalBytes += n
	cp.mu.Unlock()
}

func (cp *CourseProgress) finish() {
	cp.mu.Lock()
	cp.finished = time.Now()
	cp.mu.Unlock()
}

// Snapshot returns a consistent copy of the aggregate and every tracked
// video.
func (cp *CourseProgress) Snapshot() CourseSnapshot {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	s := CourseSnapshot{
		CourseID:        cp.courseID,
		CourseTitle:     cp.courseTitle,
		TotalVideos:     cp.total,
		CompletedVideos: cp.completed,
		FailedVideos:    cp.failed,
		TotalBytes:      cp.totalBytes,
		DownloadedBytes: cp.doneBytes,
		Videos:          make(map[string]ProgressSnapshot, len(cp.videos)),
	}
	for id, p := range cp.videos {
		s.Videos[id] = p.Snapshot()
	}
	return s
}

// SuccessRate returns the fraction of videos not failed, as a percentage.
func (s CourseSnapshot) SuccessRate() float64 {
	if s.TotalVideos == 0 {
		return 0
	}
	return float64(s.TotalVideos-s.FailedVideos) / float64(s.TotalVideos) * 100
}

// IsComplete reports whether every video finished successfully.
func (s CourseSnapshot) IsComplete() bool {
	return s.CompletedVideos == s.TotalVideos
}

// ProgressSink receives a course snapshot after each video reaches a
// terminal state. Sinks must not block the orchestrator; the manager calls
// them fire-and-forget.
type ProgressSink func(CourseSnapshot)
