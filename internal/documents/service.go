package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"novel-assistant/internal/shared/storage/object"
	"novel-assistant/internal/shared/util"
)

const plainTextMime = "text/plain; charset=utf-8"

// Service contains business logic for documents.
type Service struct {
	// Store archives the raw upload. Nil disables archiving.
	Store object.ObjectStore
	Repo  Repo
}

// Create records a plain-text document and returns it with its assigned ID.
func (s *Service) Create(ctx context.Context, title, content string) (Document, error) {
	return s.CreateFromUpload(ctx, title, content, []byte(content), plainTextMime)
}

// CreateFromUpload archives the raw upload bytes and records the document
// holding the extracted text content. A blank title is stored as untitled.
func (s *Service) CreateFromUpload(ctx context.Context, title, content string, raw []byte, mimeType string) (Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = util.UntitledDocument
	}
	if mimeType == "" {
		mimeType = plainTextMime
	}

	doc := Document{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		MimeType:  mimeType,
		SizeBytes: int64(len(raw)),
		Checksum:  util.ContentHash(raw),
		CreatedAt: time.Now().UTC(),
	}

	if s.Store != nil {
		storageKey, _, _, err := s.Store.Save(ctx, title, bytes.NewReader(raw))
		if err != nil {
			return Document{}, fmt.Errorf("archive upload: %w", err)
		}
		doc.StorageKey = storageKey
		if !strings.HasPrefix(mimeType, "text/") {
			extracted := object.ExtractedKey(storageKey)
			if _, err := s.Store.SaveWithKey(ctx, extracted, plainTextMime, strings.NewReader(content)); err != nil {
				return Document{}, fmt.Errorf("archive extracted text: %w", err)
			}
		}
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return Document{}, fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, documentID)
}

// OpenOriginal streams the archived upload of a document. Documents created
// without an object store, or whose object has gone, yield ErrNotArchived.
func (s *Service) OpenOriginal(ctx context.Context, documentID string) (Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return Document{}, nil, err
	}
	if s.Store == nil || doc.StorageKey == "" {
		return doc, nil, ErrNotArchived
	}
	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return doc, nil, fmt.Errorf("%w: %v", ErrNotArchived, err)
		}
		return doc, nil, fmt.Errorf("open original: %w", err)
	}
	return doc, rc, nil
}
