package extract

import (
	"fmt"
	"sort"
	"strings"
)

// encodedQualityOrder is the selection preference when a payload offers the
// same video in several encoded renditions.
var encodedQualityOrder = []Quality{
	Quality1080p, Quality720p, Quality480p, Quality360p, Quality240p,
}

// urlBearingKeys are the JSON keys whose string values are candidate video
// URLs during the recursive scan.
var urlBearingKeys = map[string]bool{
	"video_url": true,
	"src":       true,
	"url":       true,
	"href":      true,
}

// structuredStrategy extracts from JSON-shaped block payloads: a "video"
// sub-object, an "encoded_videos" quality map, URL-bearing string values
// anywhere in the tree, and an embedded HTML "content" fragment.
type structuredStrategy struct {
	e *Extractor
}

func (s *structuredStrategy) Name() string { return "structured-data" }

func (s *structuredStrategy) Extract(c *Content) ([]Video, error) {
	if !c.IsJSON() {
		return nil, nil
	}

	var videos []Video

	if obj, ok := c.JSON["video"].(map[string]any); ok {
		if v, ok := s.parseVideoObject(obj); ok {
			videos = append(videos, v)
		}
	}

	if _, ok := c.JSON["encoded_videos"]; ok {
		if v, ok := s.parseEncodedVideos(c.JSON); ok {
			videos = append(videos, v)
		}
	}

	for _, raw := range collectJSONURLs(c.JSON) {
		if v, ok := s.e.videoFromURL(raw, ""); ok {
			videos = append(videos, v)
		}
	}

	if html, ok := c.JSON["content"].(string); ok && html != "" {
		markup := &markupStrategy{e: s.e}
		nested, err := markup.Extract(&Content{URL: c.URL, HTML: html})
		if err != nil {
			s.e.log.Warn("embedded content parse failed", "block_url", c.URL, "error", err)
		} else {
			videos = append(videos, nested...)
		}
	}

	return videos, nil
}

// parseVideoObject handles the platform's "video" sub-object: encoded
// renditions first, then a bare video_url field.
func (s *structuredStrategy) parseVideoObject(obj map[string]any) (Video, bool) {
	id := jsonString(obj, "id")
	if id == "" {
		id = jsonString(obj, "video_id")
	}
	if id == "" {
		id = "unknown"
	}

	title := jsonString(obj, "display_name")
	if title == "" {
		title = jsonString(obj, "name")
	}
	if title == "" {
		title = fmt.Sprintf("Video %s", id)
	}

	var rawURL string
	quality := QualityUnknown
	if encoded, ok := obj["encoded_videos"].(map[string]any); ok {
		rawURL, quality = selectEncoded(encoded)
	}
	if rawURL == "" {
		if u := jsonString(obj, "video_url"); u != "" {
			rawURL = u
			quality = ClassifyQuality(u, 0)
		}
	}
	if rawURL == "" {
		return Video{}, false
	}

	abs := s.e.resolve(rawURL)
	return Video{
		ID:              id,
		Title:           title,
		SourceURL:       abs,
		Quality:         quality,
		Format:          ClassifyFormat(abs),
		SizeBytes:       jsonInt64(obj, "file_size"),
		DurationSeconds: ParseDuration(obj["duration"]),
	}, true
}

// parseEncodedVideos handles a top-level encoded_videos quality map.
func (s *structuredStrategy) parseEncodedVideos(data map[string]any) (Video, bool) {
	encoded, ok := data["encoded_videos"].(map[string]any)
	if !ok || len(encoded) == 0 {
		return Video{}, false
	}

	rawURL, quality := selectEncoded(encoded)
	if rawURL == "" {
		return Video{}, false
	}

	title := jsonString(data, "display_name")
	if title == "" {
		title = jsonString(data, "name")
	}
	if title == "" {
		title = "Video"
	}

	id := jsonString(data, "id")
	if id == "" {
		id = "encoded-video"
	}

	abs := s.e.resolve(rawURL)
	return Video{
		ID:              id,
		Title:           title,
		SourceURL:       abs,
		Quality:         quality,
		Format:          ClassifyFormat(abs),
		DurationSeconds: ParseDuration(data["duration"]),
	}, true
}

// selectEncoded picks a rendition URL by the preference order, falling back
// to the lexicographically first key so the choice is deterministic.
func selectEncoded(encoded map[string]any) (string, Quality) {
	for _, q := range encodedQualityOrder {
		if raw, ok := encoded[string(q)].(string); ok && raw != "" {
			return raw, q
		}
	}

	keys := make([]string, 0, len(encoded))
	for k := range encoded {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if raw, ok := encoded[k].(string); ok && raw != "" {
			return raw, Quality(k)
		}
	}
	return "", QualityUnknown
}

// collectJSONURLs recursively gathers candidate video URLs from URL-bearing
// keys and bare string list items, returned sorted for determinism.
func collectJSONURLs(data map[string]any) []string {
	seen := make(map[string]bool)
	scanJSONValue(data, seen)

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

func scanJSONValue(v any, seen map[string]bool) {
	switch val := v.(type) {
	case map[string]any:
		for key, child := range val {
			if s, ok := child.(string); ok {
				if urlBearingKeys[strings.ToLower(key)] && IsVideoURL(s) {
					seen[s] = true
				}
				continue
			}
			scanJSONValue(child, seen)
		}
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				if IsVideoURL(s) {
					seen[s] = true
				}
				continue
			}
			scanJSONValue(item, seen)
		}
	}
}

func jsonString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func jsonInt64(m map[string]any, key string) int64 {
	switch n := m[key].(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
