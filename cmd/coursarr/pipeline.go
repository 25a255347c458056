package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmunix/coursarr/internal/api"
	"github.com/vmunix/coursarr/internal/config"
	"github.com/vmunix/coursarr/internal/course"
	"github.com/vmunix/coursarr/internal/extract"
)

// discoverVideos runs the discovery half of the pipeline: resolve the
// course, fetch its outline, and extract every video from its blocks.
func discoverVideos(ctx context.Context, cfg *config.Config, courseURL string, log *slog.Logger) (*course.Info, []extract.Video, error) {
	session := &api.Session{
		CSRFToken: cfg.Platform.Session.CSRFToken,
		Cookies:   cfg.Platform.Session.Cookies,
	}

	client, err := api.NewClient(cfg.Platform.BaseURL, session,
		api.WithRateLimit(cfg.Platform.RateLimitDelay),
		api.WithLogger(log),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("platform client: %w", err)
	}

	courses := course.NewClient(client, log)
	info, err := courses.Info(ctx, courseURL)
	if err != nil {
		return nil, nil, err
	}

	outline, err := courses.Outline(ctx, *info)
	if err != nil {
		return nil, nil, err
	}

	extractor, err := extract.New(cfg.Platform.BaseURL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("extractor: %w", err)
	}

	walker := course.NewWalker(client, extractor, log)
	videos, err := walker.ExtractAllVideos(ctx, *info, outline)
	if err != nil {
		return nil, nil, err
	}

	return info, videos, nil
}

// applyQualityPreference reduces near-duplicate videos to the preferred
// quality per the configured preference order.
func applyQualityPreference(videos []extract.Video, preference []string) []extract.Video {
	if len(preference) == 0 {
		return videos
	}
	preferred := make([]extract.Quality, 0, len(preference))
	for _, q := range preference {
		preferred = append(preferred, extract.Quality(q))
	}
	return extract.FilterByQuality(videos, preferred)
}
