package extract

import (
	"net/url"
	"path"
	"strings"
)

// Quality is a categorical resolution tier.
type Quality string

const (
	Quality2160p   Quality = "2160p"
	Quality1440p   Quality = "1440p"
	Quality1080p   Quality = "1080p"
	Quality720p    Quality = "720p"
	Quality480p    Quality = "480p"
	Quality360p    Quality = "360p"
	Quality240p    Quality = "240p"
	Quality144p    Quality = "144p"
	QualityYouTube Quality = "youtube"
	QualityVimeo   Quality = "vimeo"
	QualityUnknown Quality = "unknown"
)

// Format is a container format or delivery protocol tag.
type Format string

const (
	FormatMP4     Format = "mp4"
	FormatWebM    Format = "webm"
	FormatM4V     Format = "m4v"
	FormatMOV     Format = "mov"
	FormatAVI     Format = "avi"
	FormatMKV     Format = "mkv"
	FormatFLV     Format = "flv"
	FormatHLS     Format = "hls"
	FormatDASH    Format = "dash"
	FormatYouTube Format = "youtube"
	FormatVimeo   Format = "vimeo"
	FormatUnknown Format = "unknown"
)

// qualityTokens maps URL substrings to quality tiers, checked in order from
// highest to lowest. "hd" must come after "fhd"/"uhd" so the more specific
// token wins.
var qualityTokens = []struct {
	quality Quality
	tokens  []string
}{
	{Quality2160p, []string{"2160", "4k", "uhd"}},
	{Quality1440p, []string{"1440", "2k"}},
	{Quality1080p, []string{"1080", "fullhd", "fhd"}},
	{Quality720p, []string{"720", "hd"}},
	{Quality480p, []string{"480", "sd"}},
	{Quality360p, []string{"360"}},
	{Quality240p, []string{"240"}},
	{Quality144p, []string{"144"}},
}

// ClassifyQuality infers a quality tier from the URL, falling back to a
// pixel-height hint (0 means no hint). Always returns a value.
func ClassifyQuality(rawURL string, heightHint int) Quality {
	lower := strings.ToLower(rawURL)
	for _, entry := range qualityTokens {
		for _, tok := range entry.tokens {
			if strings.Contains(lower, tok) {
				return entry.quality
			}
		}
	}

	if heightHint > 0 {
		switch {
		case heightHint >= 2160:
			return Quality2160p
		case heightHint >= 1440:
			return Quality1440p
		case heightHint >= 1080:
			return Quality1080p
		case heightHint >= 720:
			return Quality720p
		case heightHint >= 480:
			return Quality480p
		case heightHint >= 360:
			return Quality360p
		case heightHint >= 240:
			return Quality240p
		default:
			return Quality144p
		}
	}

	return QualityUnknown
}

// Rank returns a numeric rank for quality comparison. Higher is better.
// Hosted-platform and unknown tiers rank zero.
func (q Quality) Rank() int {
	switch q {
	case Quality2160p:
		return 8
	case Quality1440p:
		return 7
	case Quality1080p:
		return 6
	case Quality720p:
		return 5
	case Quality480p:
		return 4
	case Quality360p:
		return 3
	case Quality240p:
		return 2
	case Quality144p:
		return 1
	default:
		return 0
	}
}

var extensionFormats = map[string]Format{
	".mp4":  FormatMP4,
	".webm": FormatWebM,
	".m4v":  FormatM4V,
	".mov":  FormatMOV,
	".avi":  FormatAVI,
	".mkv":  FormatMKV,
	".flv":  FormatFLV,
	".m3u8": FormatHLS,
	".mpd":  FormatDASH,
}

// streamingExtensions are manifest formats that pass the video-URL predicate
// but are not plain container files.
var streamingExtensions = map[string]bool{
	".m3u8": true,
	".mpd":  true,
	".f4m":  true,
}

// videoHostDomains are hosting platforms whose URLs count as video references
// regardless of path extension.
var videoHostDomains = []string{
	"youtube.com",
	"youtu.be",
	"vimeo.com",
	"wistia.com",
	"brightcove.com",
	"kaltura.com",
}

// ClassifyFormat infers the container format or delivery protocol from a URL.
// Always returns a value, defaulting to unknown.
func ClassifyFormat(rawURL string) Format {
	lower := strings.ToLower(rawURL)
	u, err := url.Parse(lower)
	if err == nil {
		if f, ok := extensionFormats[path.Ext(u.Path)]; ok {
			return f
		}
		host := u.Hostname()
		if hostMatches(host, "youtube.com") || hostMatches(host, "youtu.be") {
			return FormatYouTube
		}
		if hostMatches(host, "vimeo.com") {
			return FormatVimeo
		}
	}
	// Bare fragments without a parseable host still classify by substring.
	if strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be") {
		return FormatYouTube
	}
	if strings.Contains(lower, "vimeo.com") {
		return FormatVimeo
	}
	return FormatUnknown
}

// IsVideoURL reports whether a string looks like a video reference: its path
// ends in a known video or streaming extension, or its host is a known video
// platform.
func IsVideoURL(raw string) bool {
	if raw == "" {
		return false
	}
	lower := strings.ToLower(raw)
	u, err := url.Parse(lower)
	if err != nil {
		return false
	}

	ext := path.Ext(u.Path)
	if _, ok := extensionFormats[ext]; ok {
		return true
	}
	if streamingExtensions[ext] {
		return true
	}

	host := u.Hostname()
	for _, domain := range videoHostDomains {
		if hostMatches(host, domain) {
			return true
		}
	}
	return false
}

func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
