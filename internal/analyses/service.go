package analyses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for analyses.
type Service struct {
	Repo Repo
}

// Create records the summary and keywords computed for a document. It fails
// with ErrReferentialIntegrity when the document does not exist.
func (s *Service) Create(ctx context.Context, documentID, summary string, keywords []string) (Analysis, error) {
	if strings.TrimSpace(documentID) == "" {
		return Analysis{}, fmt.Errorf("%w: document id is required", ErrReferentialIntegrity)
	}
	if keywords == nil {
		keywords = []string{}
	}

	analysis := Analysis{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Summary:    summary,
		Keywords:   keywords,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, err
	}
	return analysis, nil
}

// Get returns an analysis by ID.
func (s *Service) Get(ctx context.Context, analysisID string) (Analysis, error) {
	if strings.TrimSpace(analysisID) == "" {
		return Analysis{}, fmt.Errorf("%w: analysis id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, analysisID)
}

// ListByDocument returns every analysis of a document, newest first.
func (s *Service) ListByDocument(ctx context.Context, documentID string) ([]Analysis, error) {
	return s.Repo.ListByDocument(ctx, documentID)
}
