// Package extract locates video references inside course block content.
//
// A block's payload arrives in one of several shapes -- a JSON object from the
// platform API, an HTML document, markup with inline player scripts -- and the
// extractor runs an ordered cascade of strategies until one of them finds
// something. The cascade stops at the first strategy that yields records;
// later strategies are only fallbacks, never merged in.
package extract

import (
	"fmt"
	"hash/fnv"
)

// Video is one discovered, downloadable video reference.
//
// SourceURL is always absolute and scheme-qualified by the time a Video
// leaves the extractor; relative URLs are resolved against the platform base.
type Video struct {
	// ID is stable within the block the video was found in. It is not
	// globally unique; identity across blocks is Key(), not ID.
	ID              string
	Title           string
	SourceURL       string
	Quality         Quality
	Format          Format
	SizeBytes       int64
	DurationSeconds int

	// SectionTitle is attached by the course walker, not by the extractor.
	SectionTitle string
}

// Key returns the video's identity hash, derived from (SourceURL, Title).
// Two records with the same key refer to the same content even when their
// block-scoped IDs differ.
func (v Video) Key() string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(v.SourceURL))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(v.Title))
	return fmt.Sprintf("%016x", h.Sum64())
}

// Content is the raw representation of one course block.
// Exactly one of JSON or HTML is normally populated; a JSON payload may also
// carry an embedded HTML fragment under its "content" key.
type Content struct {
	// URL is the block's own URL, used to resolve relative references.
	URL  string
	JSON map[string]any
	HTML string
}

// IsJSON reports whether the payload decoded as a JSON object.
func (c *Content) IsJSON() bool { return c.JSON != nil }

// Markup returns the HTML document to parse, if any: the raw HTML body, or
// the embedded "content" string of a JSON payload.
func (c *Content) Markup() string {
	if c.HTML != "" {
		return c.HTML
	}
	if c.JSON != nil {
		if s, ok := c.JSON["content"].(string); ok {
			return s
		}
	}
	return ""
}
