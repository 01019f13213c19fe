package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"signflow/internal/domain/entity"
	"signflow/internal/domain/repository"
	"signflow/internal/infrastructure/database"
)

type documentRepository struct {
	db *database.Database
}

func NewDocumentRepository(db *database.Database) repository.DocumentRepository {
	return &documentRepository{
		db: db,
	}
}

func (r *documentRepository) GetDocument(ctx context.Context, documentID string) (*entity.Document, error) {
	query := `
		SELECT id, company_id, name, storage_key, content_type, requires_signature, signature_hash, signed, created_at, updated_at
		FROM documents
		WHERE id = $1
	`

	var doc entity.Document
	var signatureHash sql.NullString

	err := r.db.Conn(ctx).QueryRowContext(ctx, query, documentID).Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.Name,
		&doc.StorageKey,
		&doc.ContentType,
		&doc.RequiresSignature,
		&signatureHash,
		&doc.Signed,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.SignatureHash = signatureHash.String
	return &doc, nil
}

func (r *documentRepository) MarkDocumentRequiresSignature(ctx context.Context, documentID, hash string) error {
	query := `
		UPDATE documents
		SET requires_signature = TRUE, signature_hash = $2, signed = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Conn(ctx).ExecContext(ctx, query, documentID, hash)
	if err != nil {
		return fmt.Errorf("failed to mark document for signature: %w", err)
	}
	return requireRow(result)
}

func (r *documentRepository) MarkDocumentSigned(ctx context.Context, documentID string) error {
	query := `UPDATE documents SET signed = TRUE, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Conn(ctx).ExecContext(ctx, query, documentID)
	if err != nil {
		return fmt.Errorf("failed to mark document signed: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	ok, err := affectedOne(result)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrDocumentNotFound
	}
	return nil
}
