package errors

import "errors"

var (
	ErrInvalidParameters = errors.New("activity query parameters are invalid")
	ErrFeedNotFound      = errors.New("no activity recorded for campaign")
)
