package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"signflow/internal/domain/entity"
)

func TestGetDocumentReturnsNotFound(t *testing.T) {
	db, mock, done := newDBWithMock(t)
	defer done()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("FROM documents").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetDocument(context.Background(), "missing")
	if !entity.IsKind(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetDocumentScansRow(t *testing.T) {
	db, mock, done := newDBWithMock(t)
	defer done()
	repo := NewDocumentRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM documents").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "name", "storage_key", "content_type", "requires_signature", "signature_hash", "signed", "created_at", "updated_at",
		}).AddRow("doc-1", "tenant-a", "contract.pdf", "tenant-a/contract.pdf", "application/pdf", false, nil, false, now, now))

	doc, err := repo.GetDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if doc.TenantID != "tenant-a" || doc.SignatureHash != "" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestMarkDocumentSignedReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	db, mock, done := newDBWithMock(t)
	defer done()
	repo := NewDocumentRepository(db)

	mock.ExpectExec("UPDATE documents").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkDocumentSigned(context.Background(), "missing")
	if !entity.IsKind(err, entity.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMarkDocumentRequiresSignatureStoresHash(t *testing.T) {
	db, mock, done := newDBWithMock(t)
	defer done()
	repo := NewDocumentRepository(db)

	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", "abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkDocumentRequiresSignature(context.Background(), "doc-1", "abc123"); err != nil {
		t.Fatalf("MarkDocumentRequiresSignature() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
