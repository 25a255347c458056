package download

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/vmunix/coursarr/internal/extract"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain title", "Introduction to Go", "Introduction to Go"},
		{"unsafe characters", `Video: <Test> "2024"`, "Video_ _Test_ _2024_"},
		{"path separators", `a/b\c`, "a_b_c"},
		{"pipe and wildcards", "what?*|", "what___"},
		{"trailing dots and spaces", "Lesson 1. ", "Lesson 1"},
		{"leading dots and spaces", " .Lesson 1", "Lesson 1"},
		{"only unsafe trailing", "...   ", "video"},
		{"empty", "", "video"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeTruncatesBeforeTrimming(t *testing.T) {
	// 199 chars then a dot at the truncation boundary: the dot must be
	// trimmed after truncation, not survive it.
	in := strings.Repeat("a", 199) + "." + strings.Repeat("b", 50)
	got := Sanitize(in)
	if len(got) != 199 {
		t.Errorf("len = %d, want 199", len(got))
	}
	if strings.HasSuffix(got, ".") {
		t.Error("trailing dot survived truncation")
	}
}

func TestSanitizeTruncatesOnRuneBoundary(t *testing.T) {
	// "é" is two bytes; 199 ASCII bytes put its second byte past the 200
	// byte limit. Truncation must back up to the rune start, never emit
	// a broken sequence.
	in := strings.Repeat("a", 199) + "é" + strings.Repeat("b", 50)
	got := Sanitize(in)
	if !utf8.ValidString(got) {
		t.Fatalf("Sanitize produced invalid UTF-8: %q", got)
	}
	if len(got) != 199 {
		t.Errorf("len = %d, want 199", len(got))
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name  string
		video extract.Video
		want  string
	}{
		{"container format", extract.Video{Title: "Intro", Format: extract.FormatWebM}, "Intro.webm"},
		{"unknown defaults to mp4", extract.Video{Title: "Intro", Format: extract.FormatUnknown}, "Intro.mp4"},
		{"hosted defaults to mp4", extract.Video{Title: "Talk", Format: extract.FormatYouTube}, "Talk.mp4"},
		{"streaming defaults to mp4", extract.Video{Title: "Live", Format: extract.FormatHLS}, "Live.mp4"},
		{"unsafe title", extract.Video{Title: "a/b", Format: extract.FormatMP4}, "a_b.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeFilename(tt.video); got != tt.want {
				t.Errorf("SafeFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}
