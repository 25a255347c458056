package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// playerSelectors are the known player-container shapes carrying a video URL
// in an attribute rather than a <video> element.
const playerSelectors = ".video-player, .video-content, .xblock-video, [data-video-url], [data-video-id], .video-wrapper"

// markupStrategy extracts from HTML documents: native <video> elements,
// player containers, and third-party iframe embeds.
type markupStrategy struct {
	e *Extractor
}

func (m *markupStrategy) Name() string { return "markup-structure" }

func (m *markupStrategy) Extract(c *Content) ([]Video, error) {
	markup := c.Markup()
	if markup == "" {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	// A player wrapper and its nested <video> report the same URL; dedupe
	// across all three passes.
	var videos []Video
	seen := make(map[string]bool)
	for _, pass := range [][]Video{m.videoElements(doc), m.playerContainers(doc), m.embeds(doc)} {
		for _, v := range pass {
			if seen[v.SourceURL] {
				continue
			}
			seen[v.SourceURL] = true
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// videoElements collects native HTML5 video elements, preferring a <source>
// child over a direct src attribute.
func (m *markupStrategy) videoElements(doc *goquery.Document) []Video {
	var videos []Video
	doc.Find("video").Each(func(i int, sel *goquery.Selection) {
		if v, ok := m.parseVideoElement(sel, i); ok {
			videos = append(videos, v)
		}
	})
	return videos
}

func (m *markupStrategy) parseVideoElement(sel *goquery.Selection, index int) (Video, bool) {
	rawURL := sel.Find("source").First().AttrOr("src", "")
	if rawURL == "" {
		rawURL = sel.AttrOr("src", "")
	}
	if rawURL == "" {
		return Video{}, false
	}

	abs := m.e.resolve(rawURL)
	title := firstNonEmpty(
		sel.AttrOr("title", ""),
		sel.AttrOr("data-title", ""),
		fmt.Sprintf("Video %d", index+1),
	)

	return Video{
		ID:              fmt.Sprintf("video-%d", index),
		Title:           title,
		SourceURL:       abs,
		Quality:         ClassifyQuality(abs, heightHint(sel)),
		Format:          ClassifyFormat(abs),
		DurationSeconds: ParseDuration(sel.AttrOr("duration", sel.AttrOr("data-duration", ""))),
	}, true
}

// playerContainers collects known player wrappers carrying the video URL in
// data-video-url/data-src/src attributes.
func (m *markupStrategy) playerContainers(doc *goquery.Document) []Video {
	var videos []Video
	doc.Find(playerSelectors).Each(func(i int, sel *goquery.Selection) {
		if v, ok := m.parsePlayerElement(sel, i); ok {
			videos = append(videos, v)
		}
	})
	return videos
}

func (m *markupStrategy) parsePlayerElement(sel *goquery.Selection, index int) (Video, bool) {
	rawURL := firstNonEmpty(
		sel.AttrOr("data-video-url", ""),
		sel.AttrOr("data-src", ""),
		sel.AttrOr("src", ""),
	)
	if rawURL == "" {
		// Some wrappers hold a nested <video> instead of an attribute.
		if nested := sel.Find("video").First(); nested.Length() > 0 {
			return m.parseVideoElement(nested, index)
		}
		return Video{}, false
	}

	abs := m.e.resolve(rawURL)
	title := firstNonEmpty(
		sel.AttrOr("data-title", ""),
		sel.AttrOr("title", ""),
		strings.TrimSpace(sel.Text()),
		fmt.Sprintf("Video %d", index+1),
	)

	return Video{
		ID:              fmt.Sprintf("player-%d", index),
		Title:           title,
		SourceURL:       abs,
		Quality:         ClassifyQuality(abs, heightHint(sel)),
		Format:          ClassifyFormat(abs),
		DurationSeconds: ParseDuration(sel.AttrOr("data-duration", "")),
	}, true
}

// embeds collects YouTube and Vimeo iframes, normalizing to each platform's
// canonical watch URL.
func (m *markupStrategy) embeds(doc *goquery.Document) []Video {
	var videos []Video
	doc.Find("iframe[src]").Each(func(i int, sel *goquery.Selection) {
		src := sel.AttrOr("src", "")
		switch {
		case strings.Contains(src, "youtube.com") || strings.Contains(src, "youtu.be"):
			if v, ok := parseYouTubeEmbed(sel, src); ok {
				videos = append(videos, v)
			}
		case strings.Contains(src, "vimeo.com"):
			if v, ok := parseVimeoEmbed(sel, src); ok {
				videos = append(videos, v)
			}
		}
	})
	return videos
}

func parseYouTubeEmbed(sel *goquery.Selection, src string) (Video, bool) {
	var id string
	if _, rest, ok := strings.Cut(src, "/embed/"); ok {
		id, _, _ = strings.Cut(rest, "?")
	} else if _, rest, ok := strings.Cut(src, "youtu.be/"); ok {
		id, _, _ = strings.Cut(rest, "?")
	}
	id = strings.Trim(id, "/")
	if id == "" {
		return Video{}, false
	}

	title := sel.AttrOr("title", "")
	if title == "" {
		title = fmt.Sprintf("YouTube Video %s", id)
	}
	return Video{
		ID:        "youtube-" + id,
		Title:     title,
		SourceURL: "https://www.youtube.com/watch?v=" + id,
		Quality:   QualityYouTube,
		Format:    FormatYouTube,
	}, true
}

func parseVimeoEmbed(sel *goquery.Selection, src string) (Video, bool) {
	_, rest, ok := strings.Cut(src, "/video/")
	if !ok {
		return Video{}, false
	}
	id, _, _ := strings.Cut(rest, "?")
	id = strings.Trim(id, "/")
	if id == "" {
		return Video{}, false
	}

	title := sel.AttrOr("title", "")
	if title == "" {
		title = fmt.Sprintf("Vimeo Video %s", id)
	}
	return Video{
		ID:        "vimeo-" + id,
		Title:     title,
		SourceURL: "https://vimeo.com/" + id,
		Quality:   QualityVimeo,
		Format:    FormatVimeo,
	}, true
}

func heightHint(sel *goquery.Selection) int {
	h, err := strconv.Atoi(sel.AttrOr("height", ""))
	if err != nil {
		return 0
	}
	return h
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
