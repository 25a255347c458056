package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/coursarr/internal/download"
	"github.com/vmunix/coursarr/internal/history"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <course-url>",
	Short: "Download all videos from a course",
	Long: `Download all videos from a course into a per-course directory.

Partial downloads resume where they left off. Videos already recorded
in the download history are skipped.

Examples:
  coursarr fetch https://courses.example.org/courses/course-v1:Org+CS101+2024/
  coursarr fetch --output ~/videos --concurrent 5 <course-url>`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringP("output", "o", "", "Output directory (overrides config)")
	fetchCmd.Flags().IntP("concurrent", "c", 0, "Concurrent downloads (overrides config)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.Downloads.OutputDir = out
	}
	if n, _ := cmd.Flags().GetInt("concurrent"); n > 0 {
		cfg.Downloads.Concurrent = n
	}

	ctx, cancel := signalContext()
	defer cancel()

	info, videos, err := discoverVideos(ctx, cfg, args[0], log)
	if err != nil {
		return err
	}
	videos = applyQualityPreference(videos, cfg.Downloads.QualityPreference)
	if len(videos) == 0 {
		fmt.Println("No videos found")
		return nil
	}
	if !quietOutput {
		fmt.Printf("%s: %d video(s)\n", info.Title, len(videos))
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	dl := download.NewDownloader(
		download.WithChunkSize(cfg.Downloads.ChunkSize),
		download.WithMaxBandwidth(cfg.Downloads.MaxBandwidth),
		download.WithResume(cfg.Downloads.Resume),
		download.WithDownloadLogger(log),
	)
	mgr := download.NewManager(dl,
		download.WithRetryPolicy(download.RetryPolicy{
			MaxRetries:    cfg.Retry.Attempts,
			BaseDelay:     cfg.Retry.BaseDelay,
			BackoffFactor: cfg.Retry.BackoffFactor,
			MaxDelay:      cfg.Retry.MaxDelay,
		}),
		download.WithHistory(store),
		download.WithConcurrency(cfg.Downloads.Concurrent),
		download.WithManagerLogger(log),
		download.WithSink(progressSink()),
	)

	start := time.Now()
	cp, err := mgr.DownloadCourse(ctx, info.CourseKey(), info.Title, videos, cfg.Downloads.OutputDir)
	if err != nil && !errors.Is(err, download.ErrDiskSpace) && !errors.Is(err, download.ErrInterrupted) {
		return err
	}

	snap := cp.Snapshot()
	if jsonOutput {
		printJSON(snap)
	} else {
		fmt.Printf("\n%d/%d completed, %d failed, %s in %s (%.0f%% success)\n",
			snap.CompletedVideos, snap.TotalVideos, snap.FailedVideos,
			humanize.Bytes(uint64(snap.DownloadedBytes)),
			time.Since(start).Round(time.Second),
			snap.SuccessRate())
	}

	switch {
	case errors.Is(err, download.ErrDiskSpace):
		return errors.New("stopped early: disk full")
	case errors.Is(err, download.ErrInterrupted):
		return errors.New("interrupted, partial downloads kept for resume")
	case !snap.IsComplete():
		return fmt.Errorf("%d video(s) failed", snap.FailedVideos)
	}
	return nil
}

// progressSink prints a one-line completion update per finished video.
func progressSink() download.ProgressSink {
	if quietOutput {
		return nil
	}
	return func(s download.CourseSnapshot) {
		fmt.Printf("\r%d/%d done, %d failed, %s downloaded",
			s.CompletedVideos, s.TotalVideos, s.FailedVideos,
			humanize.Bytes(uint64(s.DownloadedBytes)))
	}
}
