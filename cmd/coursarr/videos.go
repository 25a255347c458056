package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/coursarr/internal/extract"
)

var videosCmd = &cobra.Command{
	Use:   "videos <course-url>",
	Short: "List videos discovered in a course",
	Long: `List videos discovered in a course without downloading anything.

Examples:
  coursarr videos https://courses.example.org/courses/course-v1:Org+CS101+2024/
  coursarr videos --all <course-url>     # Keep every quality variant
  coursarr videos --json <course-url>    # Machine-readable output`,
	Args: cobra.ExactArgs(1),
	RunE: runVideos,
}

func init() {
	rootCmd.AddCommand(videosCmd)
	videosCmd.Flags().BoolP("all", "a", false, "Keep every quality variant instead of the preferred one")
}

func runVideos(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	ctx, cancel := signalContext()
	defer cancel()

	info, videos, err := discoverVideos(ctx, cfg, args[0], log)
	if err != nil {
		return err
	}

	keepAll, _ := cmd.Flags().GetBool("all")
	if !keepAll {
		videos = applyQualityPreference(videos, cfg.Downloads.QualityPreference)
	}

	if jsonOutput {
		printJSON(struct {
			Course string          `json:"course"`
			Videos []extract.Video `json:"videos"`
		}{Course: info.Title, Videos: videos})
		return nil
	}

	fmt.Printf("%s\n%d video(s)\n\n", info.Title, len(videos))
	section := ""
	var totalBytes int64
	for _, v := range videos {
		if v.SectionTitle != section {
			section = v.SectionTitle
			fmt.Printf("%s\n", section)
		}
		size := "?"
		if v.SizeBytes > 0 {
			size = humanize.Bytes(uint64(v.SizeBytes))
			totalBytes += v.SizeBytes
		}
		fmt.Printf("  %-50.50s %-7s %-8s %s\n", v.Title, v.Quality, size, v.SourceURL)
	}
	if totalBytes > 0 {
		fmt.Printf("\nTotal known size: %s\n", humanize.Bytes(uint64(totalBytes)))
	}
	return nil
}
