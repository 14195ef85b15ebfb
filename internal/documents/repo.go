package documents

import "context"

// Repo defines persistence operations for documents. There is no update or delete.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	Exists(ctx context.Context, documentID string) (bool, error)
}
