package analyses

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateStoresKeywordsAsJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	analysis := Analysis{
		ID:         "analysis-1",
		DocumentID: "doc-1",
		Summary:    "A summary.",
		Keywords:   []string{"dragon", "sword"},
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs(
			analysis.ID,
			analysis.DocumentID,
			analysis.Summary,
			`["dragon","sword"]`,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateEmptyKeywords(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs("analysis-1", "doc-1", "", `[]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Create(context.Background(), Analysis{ID: "analysis-1", DocumentID: "doc-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMapsForeignKeyViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO analyses").
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})

	repo := &PGRepo{DB: db}
	err = repo.Create(context.Background(), Analysis{ID: "a", DocumentID: "missing"})
	if !errors.Is(err, ErrReferentialIntegrity) {
		t.Fatalf("expected ErrReferentialIntegrity, got %v", err)
	}
}

func TestPGRepoCreatePropagatesOtherErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ioErr := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO analyses").WillReturnError(ioErr)

	repo := &PGRepo{DB: db}
	err = repo.Create(context.Background(), Analysis{ID: "a", DocumentID: "doc-1"})
	if !errors.Is(err, ioErr) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if errors.Is(err, ErrReferentialIntegrity) {
		t.Fatalf("unexpected referential integrity error")
	}
}

func TestPGRepoListByDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "document_id", "summary", "keywords", "created_at"}).
		AddRow("a2", "doc-1", "second", `["b"]`, now).
		AddRow("a1", "doc-1", "first", nil, now.Add(-time.Minute))
	mock.ExpectQuery("SELECT id, document_id, summary, keywords, created_at").
		WithArgs("doc-1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	list, err := repo.ListByDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(list))
	}
	if list[0].ID != "a2" || len(list[0].Keywords) != 1 || list[0].Keywords[0] != "b" {
		t.Fatalf("unexpected first analysis: %+v", list[0])
	}
	if list[1].Keywords == nil || len(list[1].Keywords) != 0 {
		t.Fatalf("expected empty keywords, got %#v", list[1].Keywords)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT id, document_id").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
