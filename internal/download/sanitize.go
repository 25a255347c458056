package download

import (
	"strings"
	"unicode/utf8"

	"github.com/vmunix/coursarr/internal/extract"
)

const maxFilenameLen = 200

var unsafeReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	`"`, "_",
	"/", "_",
	`\`, "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// Sanitize turns an arbitrary title into a filesystem-safe filename stem.
// Unsafe characters become underscores, the result is truncated to 200
// bytes on a rune boundary, and leading and trailing dots and spaces are
// stripped. An empty result falls back to "video".
func Sanitize(title string) string {
	s := unsafeReplacer.Replace(title)
	if len(s) > maxFilenameLen {
		cut := maxFilenameLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	s = strings.Trim(s, " .")
	if s == "" {
		return "video"
	}
	return s
}

// SafeFilename builds the on-disk filename for a video from its sanitized
// title and its container format. Unknown and host formats default to mp4.
func SafeFilename(v extract.Video) string {
	ext := string(v.Format)
	switch v.Format {
	case extract.FormatUnknown, extract.FormatYouTube, extract.FormatVimeo,
		extract.FormatHLS, extract.FormatDASH, "":
		ext = "mp4"
	}
	return Sanitize(v.Title) + "." + ext
}
