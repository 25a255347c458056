package extract

import (
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
)

// Strategy is one self-contained heuristic for locating video references
// within a block's content. A strategy returning an empty slice (or an error)
// hands control to the next one in the cascade.
type Strategy interface {
	Name() string
	Extract(c *Content) ([]Video, error)
}

// Extractor runs the strategy cascade against block content.
type Extractor struct {
	base       *url.URL
	strategies []Strategy
	log        *slog.Logger
}

// New creates an extractor resolving relative URLs against baseURL.
func New(baseURL string, log *slog.Logger) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	e := &Extractor{base: base, log: log}
	// Fixed cascade order. First strategy with results wins; the rest are
	// never consulted for that block.
	e.strategies = []Strategy{
		&structuredStrategy{e: e},
		&markupStrategy{e: e},
		&scriptStrategy{e: e},
		&anchorStrategy{e: e},
	}
	return e, nil
}

// Strategies returns the cascade in execution order.
func (e *Extractor) Strategies() []Strategy {
	return e.strategies
}

// SetStrategies replaces the cascade. Intended for tests that need to
// instrument or reorder strategies.
func (e *Extractor) SetStrategies(s []Strategy) {
	e.strategies = s
}

// Extract runs the cascade over one block's content and returns the first
// non-empty result. It fails with ErrVideoNotFound only after every strategy
// has been tried.
func (e *Extractor) Extract(c *Content) ([]Video, error) {
	for _, s := range e.strategies {
		videos, err := s.Extract(c)
		if err != nil {
			e.log.Warn("extraction strategy failed",
				"strategy", s.Name(), "block_url", c.URL, "error", err)
			continue
		}
		if len(videos) > 0 {
			e.log.Debug("extraction strategy matched",
				"strategy", s.Name(), "block_url", c.URL, "videos", len(videos))
			return videos, nil
		}
	}
	return nil, fmt.Errorf("%w: block %s", ErrVideoNotFound, c.URL)
}

// resolve makes raw absolute against the platform base. Already-absolute
// URLs pass through unchanged.
func (e *Extractor) resolve(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return e.base.ResolveReference(ref).String()
}

// videoFromURL builds a minimal record from a bare URL. The caller supplies
// the title fallback; an empty title falls back to the URL's filename stem.
// Returns ok=false when raw does not pass the video-URL predicate.
func (e *Extractor) videoFromURL(raw, title string) (Video, bool) {
	if !IsVideoURL(raw) {
		return Video{}, false
	}
	abs := e.resolve(raw)
	if title == "" {
		title = filenameStem(abs)
	}
	v := Video{
		Title:     title,
		SourceURL: abs,
		Quality:   ClassifyQuality(abs, 0),
		Format:    ClassifyFormat(abs),
	}
	v.ID = "url-" + v.Key()[:8]
	return v, true
}

// filenameStem returns the last path segment without its extension, or
// "Video" when the URL has no usable filename.
func filenameStem(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "Video"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "Video"
	}
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" {
		return "Video"
	}
	return name
}
