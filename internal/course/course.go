package course

import (
	"fmt"
	"net/url"
	"strings"
)

// Info identifies one course.
type Info struct {
	ID    string
	Title string
	URL   string
}

// CourseKey returns the platform's opaque course key, preferring the URL
// path segment over the bare ID.
func (i Info) CourseKey() string {
	for _, marker := range []string{"/courses/", "/course/"} {
		if _, rest, ok := strings.Cut(i.URL, marker); ok {
			if key, _, _ := strings.Cut(rest, "/"); key != "" {
				return key
			}
		}
	}
	return i.ID
}

// ParseCourseURL extracts the course ID from the URL shapes the platform
// uses: /courses/<id>/..., /course/<id>/..., or a course_id query parameter.
func ParseCourseURL(courseURL string) (string, error) {
	u, err := url.Parse(courseURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url %q", ErrCourseNotFound, courseURL)
	}

	for _, marker := range []string{"/courses/", "/course/"} {
		if _, rest, ok := strings.Cut(u.Path, marker); ok {
			if id, _, _ := strings.Cut(rest, "/"); id != "" {
				return id, nil
			}
		}
	}

	if id := u.Query().Get("course_id"); id != "" {
		return id, nil
	}

	return "", fmt.Errorf("%w: no course id in %q", ErrCourseNotFound, courseURL)
}
