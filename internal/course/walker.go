package course

import (
	"context"
	"log/slog"
	"sort"

	"github.com/vmunix/coursarr/internal/extract"
)

// VideoExtractor runs the extraction cascade over one block's content.
// *extract.Extractor satisfies it.
type VideoExtractor interface {
	Extract(c *extract.Content) ([]extract.Video, error)
}

// Walker walks a course outline and collects every video it can find.
type Walker struct {
	fetch     Fetcher
	extractor VideoExtractor
	log       *slog.Logger
}

// NewWalker creates a walker.
func NewWalker(fetch Fetcher, extractor VideoExtractor, log *slog.Logger) *Walker {
	if log == nil {
		log = slog.Default()
	}
	return &Walker{fetch: fetch, extractor: extractor, log: log}
}

// ExtractAllVideos walks the outline's block map and extracts videos from
// every content-bearing block, tagging each record with its section name.
// A failure in one block is logged and skipped; it never aborts the walk.
// The combined result is deduplicated by source URL, first occurrence wins.
func (w *Walker) ExtractAllVideos(ctx context.Context, info Info, outline *Outline) ([]extract.Video, error) {
	// Block maps iterate in random order; sort IDs so repeated walks of the
	// same outline produce the same list.
	ids := make([]string, 0, len(outline.Blocks))
	for id := range outline.Blocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var all []extract.Video
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		blk := outline.Blocks[id]
		switch blk.Type {
		case BlockVideo, BlockSequential, BlockVertical:
			// Content-bearing kinds, handled below.
		case BlockCourse, BlockChapter, BlockOther:
			continue
		}
		if blk.StudentViewURL == "" {
			continue
		}

		videos, err := w.extractBlock(ctx, blk)
		if err != nil {
			w.log.Warn("block extraction failed", "block", blk.ID, "error", err)
			continue
		}

		section := blk.DisplayName
		if section == "" {
			section = "Unknown Section"
		}
		for i := range videos {
			// Keep a more specific section a strategy already attached;
			// the course title itself is not specific.
			if videos[i].SectionTitle == "" || videos[i].SectionTitle == info.Title {
				videos[i].SectionTitle = section
			}
		}
		all = append(all, videos...)
	}

	return dedupeByURL(all), nil
}

func (w *Walker) extractBlock(ctx context.Context, blk Block) ([]extract.Video, error) {
	content, err := w.fetch.Get(ctx, blk.StudentViewURL, nil, true)
	if err != nil {
		return nil, err
	}
	return w.extractor.Extract(content)
}

// dedupeByURL drops repeat source URLs, preserving first-seen order.
func dedupeByURL(videos []extract.Video) []extract.Video {
	seen := make(map[string]bool, len(videos))
	unique := make([]extract.Video, 0, len(videos))
	for _, v := range videos {
		if seen[v.SourceURL] {
			continue
		}
		seen[v.SourceURL] = true
		unique = append(unique, v)
	}
	return unique
}
