package download

import "errors"

var (
	// ErrDownload is a generic transfer failure (bad status, read error).
	ErrDownload = errors.New("download failed")

	// ErrDiskSpace indicates the destination filesystem cannot hold the
	// file. This is systemic: the orchestrator stops launching new
	// downloads once it appears.
	ErrDiskSpace = errors.New("insufficient disk space")

	// ErrInterrupted indicates a transfer was deliberately cancelled. The
	// partial file is preserved for resume, distinguishing this from a
	// failure.
	ErrInterrupted = errors.New("download interrupted")
)
