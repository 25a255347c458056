package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// anchorStrategy is the last resort: plain <a href> links to video files or
// hosting platforms. Titles come from the link text, falling back to the
// href's filename stem.
type anchorStrategy struct {
	e *Extractor
}

func (a *anchorStrategy) Name() string { return "anchor-link" }

func (a *anchorStrategy) Extract(c *Content) ([]Video, error) {
	markup := c.Markup()
	if markup == "" {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var videos []Video
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := sel.AttrOr("href", "")
		if !IsVideoURL(href) {
			return
		}
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			title = sel.AttrOr("title", "")
		}
		if v, ok := a.e.videoFromURL(href, title); ok {
			videos = append(videos, v)
		}
	})
	return videos, nil
}
