package extract

import "testing"

func TestClassifyQuality(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		hint   int
		want   Quality
	}{
		{"1080 token", "https://cdn.example.com/lec_1080p.mp4", 0, Quality1080p},
		{"720 token", "https://cdn.example.com/video-720.mp4", 0, Quality720p},
		{"4k token", "https://cdn.example.com/talk-4k.webm", 0, Quality2160p},
		{"fhd beats hd", "https://cdn.example.com/fhd-video.mp4", 0, Quality1080p},
		{"bare hd", "https://cdn.example.com/hd-video.mp4", 0, Quality720p},
		{"sd token", "https://cdn.example.com/sd/video.mp4", 0, Quality480p},
		{"height hint 1080", "https://cdn.example.com/video.mp4", 1080, Quality1080p},
		{"height hint 600 buckets to 480", "https://cdn.example.com/video.mp4", 600, Quality480p},
		{"height hint tiny", "https://cdn.example.com/video.mp4", 100, Quality144p},
		{"token wins over hint", "https://cdn.example.com/video_360p.mp4", 1080, Quality360p},
		{"no signal", "https://cdn.example.com/video.mp4", 0, QualityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyQuality(tt.rawURL, tt.hint); got != tt.want {
				t.Errorf("ClassifyQuality(%q, %d) = %v, want %v", tt.rawURL, tt.hint, got, tt.want)
			}
		})
	}
}

func TestQualityRankOrdering(t *testing.T) {
	ordered := []Quality{
		Quality144p, Quality240p, Quality360p, Quality480p,
		Quality720p, Quality1080p, Quality1440p, Quality2160p,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("Rank(%v) = %d not greater than Rank(%v) = %d",
				ordered[i], ordered[i].Rank(), ordered[i-1], ordered[i-1].Rank())
		}
	}

	if QualityUnknown.Rank() != 0 {
		t.Errorf("unknown rank = %d, want 0", QualityUnknown.Rank())
	}
	if QualityYouTube.Rank() != 0 {
		t.Errorf("youtube rank = %d, want 0", QualityYouTube.Rank())
	}
}

func TestClassifyFormat(t *testing.T) {
	tests := []struct {
		rawURL string
		want   Format
	}{
		{"https://cdn.example.com/a.mp4", FormatMP4},
		{"https://cdn.example.com/a.webm?sig=abc", FormatWebM},
		{"https://cdn.example.com/a.MKV", FormatMKV},
		{"https://cdn.example.com/stream/master.m3u8", FormatHLS},
		{"https://cdn.example.com/stream/manifest.mpd", FormatDASH},
		{"https://www.youtube.com/watch?v=abc", FormatYouTube},
		{"https://youtu.be/abc", FormatYouTube},
		{"https://vimeo.com/12345", FormatVimeo},
		{"https://cdn.example.com/a.txt", FormatUnknown},
		{"https://example.com/page", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.rawURL, func(t *testing.T) {
			if got := ClassifyFormat(tt.rawURL); got != tt.want {
				t.Errorf("ClassifyFormat(%q) = %v, want %v", tt.rawURL, got, tt.want)
			}
		})
	}
}

func TestIsVideoURL(t *testing.T) {
	tests := []struct {
		rawURL string
		want   bool
	}{
		{"https://cdn.example.com/lecture.mp4", true},
		{"https://cdn.example.com/lecture.webm", true},
		{"https://cdn.example.com/lecture.flv", true},
		{"https://cdn.example.com/stream.m3u8", true},
		{"https://cdn.example.com/stream.f4m", true},
		{"https://www.youtube.com/watch?v=abc", true},
		{"https://youtu.be/abc", true},
		{"https://player.vimeo.com/video/42", true},
		{"https://fast.wistia.com/embed/medias/abc", true},
		{"https://cdn.brightcove.com/player/42", true},
		{"https://example.com/lecture.pdf", false},
		{"https://example.com/page.html", false},
		// extension must be on the path, not the query
		{"https://example.com/redirect?file=x.mp4", false},
		// domain must match on a label boundary
		{"https://notyoutube.com/watch", false},
		{"https://evil.com/youtube.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.rawURL, func(t *testing.T) {
			if got := IsVideoURL(tt.rawURL); got != tt.want {
				t.Errorf("IsVideoURL(%q) = %v, want %v", tt.rawURL, got, tt.want)
			}
		})
	}
}
