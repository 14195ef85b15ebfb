package documents

import "errors"

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid document input")
	ErrNotArchived  = errors.New("document has no archived original")
)
