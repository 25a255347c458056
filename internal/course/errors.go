// Package course discovers a course's outline and walks it for videos.
package course

import "errors"

var (
	// ErrCourseNotFound indicates the course ID does not exist on the
	// platform, or could not be derived from the given URL.
	ErrCourseNotFound = errors.New("course not found")

	// ErrCourseAccess indicates the course exists but its content could
	// not be accessed.
	ErrCourseAccess = errors.New("course access denied")

	// ErrEnrollmentRequired indicates the platform requires enrollment
	// before the outline can be read.
	ErrEnrollmentRequired = errors.New("enrollment required")
)
