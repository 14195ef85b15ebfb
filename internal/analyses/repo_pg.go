package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres. Document references are enforced by
// the analyses.document_id foreign key.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (id, document_id, summary, keywords, created_at)
VALUES ($1, $2, $3, $4, $5)`
	keywords, err := marshalKeywords(analysis.Keywords)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.DocumentID,
		analysis.Summary,
		keywords,
		analysis.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("%w: document %s", ErrReferentialIntegrity, analysis.DocumentID)
		}
		return err
	}
	return nil
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	const query = `
SELECT id, document_id, summary, keywords, created_at
FROM analyses
WHERE id = $1
LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// ListByDocument returns the analyses of a document, newest first.
func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]Analysis, error) {
	const query = `
SELECT id, document_id, summary, keywords, created_at
FROM analyses
WHERE document_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var keywords sql.NullString
	if err := row.Scan(&a.ID, &a.DocumentID, &a.Summary, &keywords, &a.CreatedAt); err != nil {
		return Analysis{}, err
	}
	a.Keywords = []string{}
	if keywords.Valid && keywords.String != "" {
		if err := json.Unmarshal([]byte(keywords.String), &a.Keywords); err != nil {
			return Analysis{}, fmt.Errorf("decode keywords for analysis %s: %w", a.ID, err)
		}
	}
	return a, nil
}

func marshalKeywords(keywords []string) (string, error) {
	if keywords == nil {
		keywords = []string{}
	}
	payload, err := json.Marshal(keywords)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

var _ Repo = (*PGRepo)(nil)
