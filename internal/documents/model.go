package documents

import "time"

// Document is an uploaded text. Documents are append-only.
type Document struct {
	ID         string
	Title      string
	Content    string
	MimeType   string
	SizeBytes  int64
	Checksum   string
	StorageKey string
	CreatedAt  time.Time
}

// Character is a person appearing in a document. The schema carries a
// characters table but nothing populates it yet.
type Character struct {
	ID          string
	DocumentID  string
	Name        string
	Description string
	CreatedAt   time.Time
}
