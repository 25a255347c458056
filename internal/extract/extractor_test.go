package extract

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStrategy counts its invocations and returns a fixed result.
type stubStrategy struct {
	name   string
	videos []Video
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(c *Content) ([]Video, error) {
	s.calls++
	return s.videos, s.err
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New("https://courses.example.org", slog.Default())
	require.NoError(t, err)
	return e
}

func TestExtract_FirstMatchShortCircuits(t *testing.T) {
	e := newTestExtractor(t)

	first := &stubStrategy{name: "first", videos: []Video{{ID: "v1", SourceURL: "https://cdn.example.com/a.mp4"}}}
	second := &stubStrategy{name: "second", videos: []Video{{ID: "v2"}}}
	e.SetStrategies([]Strategy{first, second})

	videos, err := e.Extract(&Content{URL: "https://courses.example.org/block/1"})
	require.NoError(t, err)

	assert.Equal(t, "v1", videos[0].ID)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "later strategies must not run after a match")
}

func TestExtract_EmptyResultFallsThrough(t *testing.T) {
	e := newTestExtractor(t)

	first := &stubStrategy{name: "first"}
	second := &stubStrategy{name: "second", videos: []Video{{ID: "v2"}}}
	e.SetStrategies([]Strategy{first, second})

	videos, err := e.Extract(&Content{URL: "https://courses.example.org/block/1"})
	require.NoError(t, err)

	assert.Equal(t, "v2", videos[0].ID)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestExtract_StrategyErrorFallsThrough(t *testing.T) {
	e := newTestExtractor(t)

	first := &stubStrategy{name: "broken", err: errors.New("parse blew up")}
	second := &stubStrategy{name: "second", videos: []Video{{ID: "v2"}}}
	e.SetStrategies([]Strategy{first, second})

	videos, err := e.Extract(&Content{URL: "https://courses.example.org/block/1"})
	require.NoError(t, err)
	assert.Equal(t, "v2", videos[0].ID)
}

func TestExtract_AllEmptyReturnsNotFound(t *testing.T) {
	e := newTestExtractor(t)
	e.SetStrategies([]Strategy{&stubStrategy{name: "a"}, &stubStrategy{name: "b"}})

	_, err := e.Extract(&Content{URL: "https://courses.example.org/block/1"})
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestExtract_DefaultCascadeOrder(t *testing.T) {
	e := newTestExtractor(t)

	var names []string
	for _, s := range e.Strategies() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"structured-data", "markup-structure", "embedded-script", "anchor-link"}, names)
}

func TestVideoFromURL(t *testing.T) {
	e := newTestExtractor(t)

	v, ok := e.videoFromURL("/media/week1/intro_720p.mp4", "")
	require.True(t, ok)
	assert.Equal(t, "https://courses.example.org/media/week1/intro_720p.mp4", v.SourceURL)
	assert.Equal(t, "intro_720p", v.Title, "empty title falls back to the filename stem")
	assert.Equal(t, Quality720p, v.Quality)
	assert.Equal(t, FormatMP4, v.Format)
	assert.Contains(t, v.ID, "url-")

	_, ok = e.videoFromURL("/docs/syllabus.pdf", "Syllabus")
	assert.False(t, ok, "non-video URLs are rejected")

	v, ok = e.videoFromURL("https://other.example.com/talk.webm", "Guest Talk")
	require.True(t, ok)
	assert.Equal(t, "https://other.example.com/talk.webm", v.SourceURL, "absolute URLs pass through")
	assert.Equal(t, "Guest Talk", v.Title)
}

func TestFilenameStem(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://cdn.example.com/media/lecture-01.mp4", "lecture-01"},
		{"https://cdn.example.com/media/lecture-01", "lecture-01"},
		{"https://cdn.example.com/", "Video"},
		{"https://cdn.example.com", "Video"},
	}
	for _, tt := range tests {
		if got := filenameStem(tt.rawURL); got != tt.want {
			t.Errorf("filenameStem(%q) = %q, want %q", tt.rawURL, got, tt.want)
		}
	}
}
