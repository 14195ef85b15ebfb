package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    title,
    content,
    mime_type,
    size_bytes,
    checksum,
    storage_key,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var checksum sql.NullString
	if doc.Checksum != "" {
		checksum = sql.NullString{String: doc.Checksum, Valid: true}
	}
	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Title,
		doc.Content,
		doc.MimeType,
		doc.SizeBytes,
		checksum,
		storageKey,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT id, title, content, mime_type, size_bytes, checksum, storage_key, created_at
FROM documents
WHERE id = $1
LIMIT 1`
	var doc Document
	var checksum sql.NullString
	var storageKey sql.NullString
	err := r.DB.QueryRowContext(ctx, query, documentID).Scan(
		&doc.ID,
		&doc.Title,
		&doc.Content,
		&doc.MimeType,
		&doc.SizeBytes,
		&checksum,
		&storageKey,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if checksum.Valid {
		doc.Checksum = checksum.String
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	return doc, nil
}

// Exists reports whether a document row with the ID is present.
func (r *PGRepo) Exists(ctx context.Context, documentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`
	var ok bool
	if err := r.DB.QueryRowContext(ctx, query, documentID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

var _ Repo = (*PGRepo)(nil)
