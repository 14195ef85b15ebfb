package analyses

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
// Inserts are checked against Docs the way a foreign key would be.
type MemoryRepo struct {
	mu         sync.RWMutex
	docs       DocumentChecker
	byID       map[string]Analysis
	byDocument map[string][]Analysis
}

// NewMemoryRepo constructs a MemoryRepo that validates document references against docs.
func NewMemoryRepo(docs DocumentChecker) *MemoryRepo {
	return &MemoryRepo{
		docs:       docs,
		byID:       make(map[string]Analysis),
		byDocument: make(map[string][]Analysis),
	}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.docs != nil {
		ok, err := r.docs.Exists(ctx, analysis.DocumentID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrReferentialIntegrity
		}
	}
	analysis.Keywords = append([]string{}, analysis.Keywords...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[analysis.ID] = analysis
	r.byDocument[analysis.DocumentID] = append(r.byDocument[analysis.DocumentID], analysis)
	return nil
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// ListByDocument returns the analyses of a document, newest first.
func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	stored := r.byDocument[documentID]
	out := make([]Analysis, len(stored))
	copy(out, stored)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
