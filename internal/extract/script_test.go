package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript_ExtractsURLLiterals(t *testing.T) {
	e := newTestExtractor(t)
	s := &scriptStrategy{e: e}

	videos, err := s.Extract(&Content{
		URL: "https://courses.example.org/block/1",
		HTML: `<html><body>
			<script>
				var player = { video_url: "https://cdn.example.com/lesson.mp4" };
				loadStream("https://cdn.example.com/stream/master.m3u8");
			</script>
			<script src="/static/app.js"></script>
			<p>"https://cdn.example.com/not-in-script.mp4"</p>
		</body></html>`,
	})
	require.NoError(t, err)
	require.Len(t, videos, 2, "only script text is scanned, duplicates collapse")

	// Results are sorted by URL for determinism.
	assert.Equal(t, "https://cdn.example.com/lesson.mp4", videos[0].SourceURL)
	assert.Equal(t, "Video 1", videos[0].Title)
	assert.Equal(t, "https://cdn.example.com/stream/master.m3u8", videos[1].SourceURL)
	assert.Equal(t, FormatHLS, videos[1].Format)
}

func TestScript_KeyValueForms(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"colon assignment", `video_url: "https://cdn.example.com/a.mp4"`, "https://cdn.example.com/a.mp4"},
		{"equals assignment", `src = 'https://cdn.example.com/b.webm'`, "https://cdn.example.com/b.webm"},
		{"quoted key", `"url": "https://cdn.example.com/c.mp4?token=xyz"`, "https://cdn.example.com/c.mp4?token=xyz"},
		{"bare literal", `play("https://cdn.example.com/d.mkv")`, "https://cdn.example.com/d.mkv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls := scanScript(tt.script)
			require.NotEmpty(t, urls)
			assert.Equal(t, tt.want, urls[0])
		})
	}
}

func TestScript_IgnoresNonVideoLiterals(t *testing.T) {
	urls := scanScript(`var cfg = { url: "https://example.com/api/data.json", video_url: "about:blank" };`)
	assert.Empty(t, urls)
}
