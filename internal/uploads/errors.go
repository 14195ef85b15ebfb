package uploads

import "errors"

var (
	// ErrTooLarge is returned when the upload exceeds the configured limit.
	ErrTooLarge = errors.New("upload too large")
	// ErrInvalidInput is returned for uploads that cannot be turned into text.
	ErrInvalidInput = errors.New("invalid upload")
)
