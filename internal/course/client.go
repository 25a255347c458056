package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vmunix/coursarr/internal/api"
	"github.com/vmunix/coursarr/internal/extract"
)

//go:generate mockgen -destination=mocks/fetcher.go -package=mocks github.com/vmunix/coursarr/internal/course Fetcher

// Fetcher fetches platform resources. *api.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, target string, params url.Values, useCache bool) (*extract.Content, error)
}

// titleSelectors are tried in order when course info arrives as markup.
var titleSelectors = []string{
	"h1.course-title",
	".course-title",
	"h1.page-title",
	".page-title",
	"h1",
	"title",
}

// Client fetches course metadata and outlines.
type Client struct {
	fetch Fetcher
	log   *slog.Logger
}

// NewClient creates a course client.
func NewClient(fetch Fetcher, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{fetch: fetch, log: log}
}

// Outline fetches the course's block structure. A 403 from the platform
// means the user is not enrolled.
func (c *Client) Outline(ctx context.Context, info Info) (*Outline, error) {
	params := url.Values{}
	params.Set("course_id", info.CourseKey())
	params.Set("depth", "all")
	params.Set("requested_fields", "children,display_name,type,student_view_url")

	content, err := c.fetch.Get(ctx, "/api/courses/v1/blocks/", params, false)
	if err != nil {
		if api.IsStatus(err, http.StatusForbidden) {
			return nil, fmt.Errorf("%w: course %s", ErrEnrollmentRequired, info.ID)
		}
		return nil, fmt.Errorf("%w: outline fetch for %s: %v", ErrCourseAccess, info.ID, err)
	}
	if !content.IsJSON() {
		return nil, fmt.Errorf("%w: outline response for %s was not JSON", ErrCourseAccess, info.ID)
	}

	return parseOutline(content.JSON), nil
}

// Info fetches course metadata for a course URL.
func (c *Client) Info(ctx context.Context, courseURL string) (*Info, error) {
	id, err := ParseCourseURL(courseURL)
	if err != nil {
		return nil, err
	}

	content, err := c.fetch.Get(ctx, fmt.Sprintf("/api/courses/v1/courses/%s/", id), nil, true)
	if err != nil {
		switch {
		case api.IsStatus(err, http.StatusNotFound):
			return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, id)
		case api.IsStatus(err, http.StatusForbidden), errors.Is(err, api.ErrAuthentication):
			return nil, fmt.Errorf("%w: %s", ErrCourseAccess, id)
		default:
			return nil, fmt.Errorf("%w: course info for %s: %v", ErrCourseAccess, id, err)
		}
	}

	info := &Info{ID: id, URL: courseURL}
	if content.IsJSON() {
		info.Title = jsonTitle(content.JSON)
	} else {
		info.Title = markupTitle(content.HTML)
	}
	if info.Title == "" {
		info.Title = "Unknown Course"
	}
	return info, nil
}

func jsonTitle(data map[string]any) string {
	if name, ok := data["name"].(string); ok && name != "" {
		return name
	}
	if name, ok := data["display_name"].(string); ok && name != "" {
		return name
	}
	return ""
}

func markupTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	for _, selector := range titleSelectors {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		title = strings.Join(strings.Fields(title), " ")
		// Very short matches are usually navigation artifacts.
		if len(title) > 5 {
			return title
		}
	}
	return ""
}

// parseOutline decodes the platform's blocks response. Malformed block
// entries are dropped, not fatal.
func parseOutline(data map[string]any) *Outline {
	outline := &Outline{Blocks: make(map[string]Block)}
	if root, ok := data["root"].(string); ok {
		outline.Root = root
	}

	rawBlocks, ok := data["blocks"].(map[string]any)
	if !ok {
		return outline
	}

	for id, raw := range rawBlocks {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		blk := Block{ID: id}
		if tag, ok := obj["type"].(string); ok {
			blk.Type = ParseBlockType(tag)
		}
		if name, ok := obj["display_name"].(string); ok {
			blk.DisplayName = name
		}
		if viewURL, ok := obj["student_view_url"].(string); ok {
			blk.StudentViewURL = viewURL
		}
		if children, ok := obj["children"].([]any); ok {
			for _, child := range children {
				if s, ok := child.(string); ok {
					blk.Children = append(blk.Children, s)
				}
			}
		}
		outline.Blocks[id] = blk
	}
	return outline
}
