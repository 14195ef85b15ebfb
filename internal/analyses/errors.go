package analyses

import "errors"

var (
	ErrNotFound = errors.New("analysis not found")
	// ErrReferentialIntegrity is returned when an analysis references a document that does not exist.
	ErrReferentialIntegrity = errors.New("analysis references unknown document")
	ErrInvalidInput         = errors.New("invalid analysis input")
)

// foreignKeyViolation is the Postgres SQLSTATE for foreign_key_violation.
const foreignKeyViolation = "23503"
