package extract

import "errors"

var (
	// ErrVideoNotFound indicates every extraction strategy ran and none
	// produced a record.
	ErrVideoNotFound = errors.New("no videos found")

	// ErrParse indicates block content could not be parsed at all.
	ErrParse = errors.New("unparseable block content")
)
