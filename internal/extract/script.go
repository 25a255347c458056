package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// scriptURLPatterns match video-URL-shaped string literals inside inline
// JavaScript: bare extension-suffixed literals and video_url/src/url
// key-value assignments.
var scriptURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)["']([^"']*\.(?:mp4|webm|m4v|mov|avi|mkv|flv|m3u8|mpd)(?:\?[^"']*)?)["']`),
	regexp.MustCompile(`(?i)video_url["']?\s*[:=]\s*["']([^"']+)["']`),
	regexp.MustCompile(`(?i)src["']?\s*[:=]\s*["']([^"']*\.(?:mp4|webm|m4v|mov|avi|mkv|flv|m3u8|mpd)(?:\?[^"']*)?)["']`),
	regexp.MustCompile(`(?i)url["']?\s*[:=]\s*["']([^"']*\.(?:mp4|webm|m4v|mov|avi|mkv|flv|m3u8|mpd)(?:\?[^"']*)?)["']`),
}

// scriptStrategy scans inline <script> text for video-URL string literals.
type scriptStrategy struct {
	e *Extractor
}

func (s *scriptStrategy) Name() string { return "embedded-script" }

func (s *scriptStrategy) Extract(c *Content) ([]Video, error) {
	markup := c.Markup()
	if markup == "" {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	seen := make(map[string]bool)
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if text == "" {
			return
		}
		for _, raw := range scanScript(text) {
			seen[raw] = true
		}
	})

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	var videos []Video
	for _, raw := range urls {
		if v, ok := s.e.videoFromURL(raw, fmt.Sprintf("Video %d", len(videos)+1)); ok {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// scanScript returns every matched literal that passes the video-URL
// predicate.
func scanScript(text string) []string {
	var urls []string
	for _, pattern := range scriptURLPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if IsVideoURL(match[1]) {
				urls = append(urls, match[1])
			}
		}
	}
	return urls
}
