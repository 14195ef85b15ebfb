package analyses

import "context"

// Repo defines persistence operations for analyses. There is no update or delete.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	ListByDocument(ctx context.Context, documentID string) ([]Analysis, error)
}

// DocumentChecker reports whether a document exists.
type DocumentChecker interface {
	Exists(ctx context.Context, documentID string) (bool, error)
}
