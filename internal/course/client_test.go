package course

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/coursarr/internal/api"
	"github.com/vmunix/coursarr/internal/course/mocks"
	"github.com/vmunix/coursarr/internal/extract"
)

func TestClient_Outline(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetch := mocks.NewMockFetcher(ctrl)

	fetch.EXPECT().
		Get(gomock.Any(), "/api/courses/v1/blocks/", gomock.Any(), false).
		Return(&extract.Content{
			URL: "https://courses.example.org/api/courses/v1/blocks/",
			JSON: map[string]any{
				"root": "block-root",
				"blocks": map[string]any{
					"block-root": map[string]any{
						"type":         "course",
						"display_name": "CS101",
						"children":     []any{"block-ch1"},
					},
					"block-ch1": map[string]any{
						"type":             "video",
						"display_name":     "Welcome",
						"student_view_url": "https://courses.example.org/xblock/block-ch1",
					},
					"malformed": "not an object",
				},
			},
		}, nil)

	c := NewClient(fetch, nil)
	outline, err := c.Outline(context.Background(), Info{ID: "cs101", URL: "https://x.org/courses/cs101/"})
	require.NoError(t, err)

	assert.Equal(t, "block-root", outline.Root)
	assert.Len(t, outline.Blocks, 2, "malformed entries are dropped")

	root := outline.Blocks["block-root"]
	assert.Equal(t, BlockCourse, root.Type)
	assert.Equal(t, []string{"block-ch1"}, root.Children)

	video := outline.Blocks["block-ch1"]
	assert.Equal(t, BlockVideo, video.Type)
	assert.Equal(t, "https://courses.example.org/xblock/block-ch1", video.StudentViewURL)
}

func TestClient_OutlineForbiddenMeansNotEnrolled(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetch := mocks.NewMockFetcher(ctrl)

	fetch.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &api.StatusError{Code: http.StatusForbidden, URL: "x"})

	c := NewClient(fetch, nil)
	_, err := c.Outline(context.Background(), Info{ID: "cs101"})
	assert.ErrorIs(t, err, ErrEnrollmentRequired)
}

func TestClient_InfoJSONTitle(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetch := mocks.NewMockFetcher(ctrl)

	fetch.EXPECT().
		Get(gomock.Any(), "/api/courses/v1/courses/course-v1:Org+CS101+2024/", nil, true).
		Return(&extract.Content{JSON: map[string]any{"name": "Intro to CS"}}, nil)

	c := NewClient(fetch, nil)
	info, err := c.Info(context.Background(), "https://courses.example.org/courses/course-v1:Org+CS101+2024/about")
	require.NoError(t, err)

	assert.Equal(t, "course-v1:Org+CS101+2024", info.ID)
	assert.Equal(t, "Intro to CS", info.Title)
}

func TestClient_InfoMarkupTitle(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetch := mocks.NewMockFetcher(ctrl)

	fetch.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&extract.Content{HTML: `<html><head><title>x</title></head><body><h1 class="course-title">  Machine   Learning  </h1></body></html>`}, nil)

	c := NewClient(fetch, nil)
	info, err := c.Info(context.Background(), "https://x.org/courses/ml/")
	require.NoError(t, err)

	assert.Equal(t, "Machine Learning", info.Title, "whitespace collapses, short matches are skipped")
}

func TestClient_InfoTitleFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetch := mocks.NewMockFetcher(ctrl)

	fetch.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&extract.Content{JSON: map[string]any{"unrelated": true}}, nil)

	c := NewClient(fetch, nil)
	info, err := c.Info(context.Background(), "https://x.org/courses/untitled/")
	require.NoError(t, err)
	assert.Equal(t, "Unknown Course", info.Title)
}

func TestClient_InfoErrorTranslation(t *testing.T) {
	tests := []struct {
		name    string
		fetch   error
		wantErr error
	}{
		{"404 means unknown course", &api.StatusError{Code: http.StatusNotFound, URL: "x"}, ErrCourseNotFound},
		{"403 means no access", &api.StatusError{Code: http.StatusForbidden, URL: "x"}, ErrCourseAccess},
		{"auth failure means no access", api.ErrAuthentication, ErrCourseAccess},
		{"anything else wraps access", &api.StatusError{Code: http.StatusBadGateway, URL: "x"}, ErrCourseAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fetch := mocks.NewMockFetcher(ctrl)
			fetch.EXPECT().
				Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, tt.fetch)

			c := NewClient(fetch, nil)
			_, err := c.Info(context.Background(), "https://x.org/courses/cs101/")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
