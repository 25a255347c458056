package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultChunkSize = 8192

// Downloader performs single-file transfers with resume support.
type Downloader struct {
	http      *http.Client
	chunkSize int
	maxBPS    int64
	resume    bool
	log       *slog.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient replaces the HTTP client used for transfers.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Downloader) { d.http = c }
}

// WithChunkSize sets the read chunk size in bytes.
func WithChunkSize(n int) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.chunkSize = n
		}
	}
}

// WithMaxBandwidth caps transfer speed in bytes per second. Zero means
// unlimited.
func WithMaxBandwidth(bps int64) Option {
	return func(d *Downloader) { d.maxBPS = bps }
}

// WithResume controls whether partial files are resumed via Range requests.
// When disabled, partial files of failed transfers are removed.
func WithResume(enabled bool) Option {
	return func(d *Downloader) { d.resume = enabled }
}

// WithDownloadLogger sets the logger.
func WithDownloadLogger(log *slog.Logger) Option {
	return func(d *Downloader) { d.log = log }
}

// NewDownloader creates a Downloader with resume enabled and 8 KiB chunks.
func NewDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		http:      &http.Client{Timeout: 0},
		chunkSize: defaultChunkSize,
		resume:    true,
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// DownloadFile transfers url to path, resuming a partial file when resume
// is enabled. Progress is updated throughout; the caller owns cleanup of
// the Progress value. expectedSize may be 0 when unknown.
func (d *Downloader) DownloadFile(ctx context.Context, url, path string, expectedSize int64, p *Progress) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		p.fail(err)
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	var offset int64
	if d.resume {
		if fi, err := os.Stat(path); err == nil {
			offset = fi.Size()
		}
	}

	if expectedSize > 0 && offset >= expectedSize {
		p.setTotal(expectedSize)
		p.setDownloaded(offset)
		p.setStatus(StatusCompleted)
		return nil
	}

	if err := checkDiskSpace(dir, expectedSize-offset); err != nil {
		p.fail(err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		p.fail(err)
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return d.finish(ctx, p, path, fmt.Errorf("%w: %s: %v", ErrDownload, url, err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
		// server honored the range, continue from offset
	case http.StatusOK:
		// full body; a resume attempt restarts from zero
		if offset > 0 {
			offset = 0
		}
	default:
		return d.finish(ctx, p, path, fmt.Errorf("%w: %s returned status %d", ErrDownload, url, resp.StatusCode))
	}

	total := offset
	if resp.ContentLength > 0 {
		total = offset + resp.ContentLength
	} else if expectedSize > 0 {
		total = expectedSize
	}
	p.setTotal(total)
	p.setDownloaded(offset)
	p.setStatus(StatusDownloading)

	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	out, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		p.fail(err)
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer out.Close()

	if err := d.copyChunks(ctx, out, resp.Body, p); err != nil {
		return d.finish(ctx, p, path, err)
	}

	if err := out.Sync(); err != nil {
		return d.finish(ctx, p, path, fmt.Errorf("syncing %s: %w", path, err))
	}
	p.setStatus(StatusCompleted)
	return nil
}

// copyChunks streams body to out in fixed chunks, updating progress and
// throttling to the bandwidth cap.
func (d *Downloader) copyChunks(ctx context.Context, out io.Writer, body io.Reader, p *Progress) error {
	buf := make([]byte, d.chunkSize)
	var windowBytes int64
	windowStart := time.Now()

	var delay time.Duration
	if d.maxBPS > 0 {
		delay = time.Duration(float64(d.chunkSize) / float64(d.maxBPS) * float64(time.Second))
	}

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrInterrupted, err)
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return fmt.Errorf("%w: writing chunk: %v", ErrDownload, err)
			}
			p.addBytes(int64(n))
			windowBytes += int64(n)
		}

		if elapsed := time.Since(windowStart); elapsed >= time.Second {
			speed := float64(windowBytes) / elapsed.Seconds()
			var eta int64
			snap := p.Snapshot()
			if speed > 0 && snap.TotalBytes > snap.DownloadedBytes {
				eta = int64(float64(snap.TotalBytes-snap.DownloadedBytes) / speed)
			}
			p.setRate(speed, eta)
			windowBytes = 0
			windowStart = time.Now()
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %v", ErrInterrupted, ctx.Err())
			}
			return fmt.Errorf("%w: reading body: %v", ErrDownload, readErr)
		}

		if delay > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrInterrupted, ctx.Err())
			case <-time.After(delay):
			}
		}
	}
}

// finish records a transfer failure. Cancellation marks the file paused and
// keeps the partial data; other failures mark it failed and remove the
// partial file when resume is disabled.
func (d *Downloader) finish(ctx context.Context, p *Progress, path string, err error) error {
	if errors.Is(err, ErrInterrupted) || ctx.Err() != nil {
		if !errors.Is(err, ErrInterrupted) {
			err = fmt.Errorf("%w: %v", ErrInterrupted, err)
		}
		p.mu.Lock()
		p.status = StatusPaused
		p.err = err
		p.mu.Unlock()
		return err
	}

	p.fail(err)
	if !d.resume {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			d.log.Warn("removing partial file", "path", path, "error", rmErr)
		}
	}
	return err
}

// ProbeSize determines a remote file's size, first via HEAD, then via a
// one-byte range GET for servers that omit Content-Length on HEAD. Returns
// 0 when the size cannot be determined.
func (d *Downloader) ProbeSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := d.http.Do(req)
	if err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK && resp.ContentLength > 0 {
			return resp.ContentLength, nil
		}
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err = d.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: probing %s: %v", ErrDownload, url, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusPartialContent {
		if total := parseContentRangeTotal(resp.Header.Get("Content-Range")); total > 0 {
			return total, nil
		}
	}
	if resp.StatusCode == http.StatusOK && resp.ContentLength > 0 {
		return resp.ContentLength, nil
	}
	return 0, nil
}

// parseContentRangeTotal extracts the total from "bytes 0-0/12345".
func parseContentRangeTotal(h string) int64 {
	_, totalPart, ok := strings.Cut(h, "/")
	if !ok || totalPart == "*" {
		return 0
	}
	total, err := strconv.ParseInt(strings.TrimSpace(totalPart), 10, 64)
	if err != nil {
		return 0
	}
	return total
}
