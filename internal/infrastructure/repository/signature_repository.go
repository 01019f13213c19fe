package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"signflow/internal/domain/entity"
	"signflow/internal/domain/repository"
	"signflow/internal/infrastructure/database"
)

const requestColumns = `id, company_id, document_id, title, message, ordered_signing, state,
		document_name, document_hash, created_by, created_at, updated_at, completed_at, signed_artifact_key`

const signerColumns = `id, request_id, signer_id, signer_name, signer_email, signing_order, position,
		kind, signed, signed_at, captured_data, certificate_hash`

type signatureRepository struct {
	db     *database.Database
	logger *zap.Logger
}

func NewSignatureRepository(db *database.Database, logger *zap.Logger) repository.SignatureRepository {
	return &signatureRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.SignatureRequest, error) {
	var req entity.SignatureRequest
	var message, artifactKey sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.TenantID,
		&req.DocumentID,
		&req.Title,
		&message,
		&req.OrderedSigning,
		&req.State,
		&req.DocumentName,
		&req.DocumentHash,
		&req.CreatedBy,
		&req.CreatedAt,
		&req.UpdatedAt,
		&completedAt,
		&artifactKey,
	)
	if err != nil {
		return nil, err
	}

	req.Message = message.String
	req.SignedArtifactKey = artifactKey.String
	if completedAt.Valid {
		t := completedAt.Time
		req.CompletedAt = &t
	}
	return &req, nil
}

func scanSigner(row rowScanner) (*entity.SignerRecord, error) {
	var rec entity.SignerRecord
	var order int
	var signedAt sql.NullTime
	var captured []byte
	var certHash sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.RequestID,
		&rec.SignerID,
		&rec.SignerName,
		&rec.SignerEmail,
		&order,
		&rec.Position,
		&rec.Kind,
		&rec.Signed,
		&signedAt,
		&captured,
		&certHash,
	)
	if err != nil {
		return nil, err
	}

	rec.Order = entity.Ordered(order)
	rec.CertificateHash = certHash.String
	if signedAt.Valid {
		t := signedAt.Time
		rec.SignedAt = &t
	}
	if len(captured) > 0 {
		var data entity.CapturedData
		if err := json.Unmarshal(captured, &data); err != nil {
			return nil, fmt.Errorf("failed to decode captured data: %w", err)
		}
		rec.CapturedData = &data
	}
	return &rec, nil
}

func (r *signatureRepository) CreateRequest(ctx context.Context, req *entity.SignatureRequest) error {
	query := `
		INSERT INTO signature_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Conn(ctx).ExecContext(ctx, query,
		req.ID,
		req.TenantID,
		req.DocumentID,
		req.Title,
		nullString(req.Message),
		req.OrderedSigning,
		req.State,
		req.DocumentName,
		req.DocumentHash,
		req.CreatedBy,
		req.CreatedAt,
		req.UpdatedAt,
		req.CompletedAt,
		nullString(req.SignedArtifactKey),
	)
	if err != nil {
		return fmt.Errorf("failed to create signature request: %w", err)
	}
	return nil
}

func (r *signatureRepository) CreateSigners(ctx context.Context, signers []entity.SignerRecord) error {
	if len(signers) == 0 {
		return nil
	}

	const perRow = 12
	placeholders := make([]string, 0, len(signers))
	args := make([]interface{}, 0, len(signers)*perRow)
	for i, s := range signers {
		base := i * perRow
		marks := make([]string, perRow)
		for j := range marks {
			marks[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")

		captured, err := marshalCaptured(s.CapturedData)
		if err != nil {
			return err
		}
		args = append(args,
			s.ID,
			s.RequestID,
			s.SignerID,
			s.SignerName,
			s.SignerEmail,
			s.Order.Int(),
			s.Position,
			s.Kind,
			s.Signed,
			s.SignedAt,
			captured,
			nullString(s.CertificateHash),
		)
	}

	query := `INSERT INTO signature_signers (` + signerColumns + `) VALUES ` + strings.Join(placeholders, ", ")
	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create signer records: %w", err)
	}
	return nil
}

func (r *signatureRepository) GetRequest(ctx context.Context, tenantID, requestID string) (*entity.SignatureRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM signature_requests WHERE id = $1 AND company_id = $2`

	req, err := scanRequest(r.db.Conn(ctx).QueryRowContext(ctx, query, requestID, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signature request: %w", err)
	}
	return req, nil
}

func (r *signatureRepository) GetRequestByID(ctx context.Context, requestID string) (*entity.SignatureRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM signature_requests WHERE id = $1`

	req, err := scanRequest(r.db.Conn(ctx).QueryRowContext(ctx, query, requestID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signature request: %w", err)
	}
	return req, nil
}

func (r *signatureRepository) GetRequestForUpdate(ctx context.Context, requestID string) (*entity.SignatureRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM signature_requests WHERE id = $1 FOR UPDATE`

	req, err := scanRequest(r.db.Conn(ctx).QueryRowContext(ctx, query, requestID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock signature request: %w", err)
	}
	return req, nil
}

func (r *signatureRepository) ListRequests(ctx context.Context, tenantID string, filter entity.RequestFilter) ([]entity.SignatureRequest, error) {
	where := []string{"company_id = $1"}
	args := []interface{}{tenantID}

	if filter.State != "" {
		args = append(args, filter.State)
		where = append(where, fmt.Sprintf("state = $%d", len(args)))
	}
	if filter.DocumentID != "" {
		args = append(args, filter.DocumentID)
		where = append(where, fmt.Sprintf("document_id = $%d", len(args)))
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM signature_requests WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		requestColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list signature requests: %w", err)
	}
	defer rows.Close()

	var requests []entity.SignatureRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signature request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate signature requests: %w", err)
	}
	return requests, nil
}

func (r *signatureRepository) GetSignerRecord(ctx context.Context, signerRecordID string) (*entity.SignerRecord, error) {
	query := `SELECT ` + signerColumns + ` FROM signature_signers WHERE id = $1`

	rec, err := scanSigner(r.db.Conn(ctx).QueryRowContext(ctx, query, signerRecordID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSignerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signer record: %w", err)
	}
	return rec, nil
}

func (r *signatureRepository) ListSignerRecords(ctx context.Context, requestID string) ([]entity.SignerRecord, error) {
	query := `SELECT ` + signerColumns + ` FROM signature_signers WHERE request_id = $1 ORDER BY signing_order, position`

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list signer records: %w", err)
	}
	defer rows.Close()

	var records []entity.SignerRecord
	for rows.Next() {
		rec, err := scanSigner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signer record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate signer records: %w", err)
	}
	return records, nil
}

func (r *signatureRepository) ListSignerRecordsByRequests(ctx context.Context, requestIDs []string) (map[string][]entity.SignerRecord, error) {
	grouped := make(map[string][]entity.SignerRecord, len(requestIDs))
	if len(requestIDs) == 0 {
		return grouped, nil
	}

	query := `SELECT ` + signerColumns + ` FROM signature_signers WHERE request_id = ANY($1) ORDER BY request_id, signing_order, position`

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, pq.Array(requestIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list signer records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanSigner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signer record: %w", err)
		}
		grouped[rec.RequestID] = append(grouped[rec.RequestID], *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate signer records: %w", err)
	}
	return grouped, nil
}

func (r *signatureRepository) UpdateSignerSigned(ctx context.Context, signerRecordID string, signedAt time.Time, captured entity.CapturedData, certificateHash string) (bool, error) {
	payload, err := marshalCaptured(&captured)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE signature_signers
		SET signed = TRUE, signed_at = $2, captured_data = $3, certificate_hash = $4
		WHERE id = $1 AND signed = FALSE
	`

	result, err := r.db.Conn(ctx).ExecContext(ctx, query, signerRecordID, signedAt, payload, certificateHash)
	if err != nil {
		return false, fmt.Errorf("failed to mark signer signed: %w", err)
	}
	return affectedOne(result)
}

func (r *signatureRepository) UpdateRequestState(ctx context.Context, requestID string, from []entity.RequestState, to entity.RequestState, completedAt *time.Time) (bool, error) {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}

	query := `
		UPDATE signature_requests
		SET state = $2, updated_at = NOW(), completed_at = COALESCE($3, completed_at)
		WHERE id = $1 AND state = ANY($4)
	`

	result, err := r.db.Conn(ctx).ExecContext(ctx, query, requestID, to, completedAt, pq.Array(states))
	if err != nil {
		return false, fmt.Errorf("failed to update request state: %w", err)
	}
	return affectedOne(result)
}

func (r *signatureRepository) SetSignedArtifactKey(ctx context.Context, requestID, key string) (bool, error) {
	query := `
		UPDATE signature_requests
		SET signed_artifact_key = $2, artifact_claimed_at = NULL, updated_at = NOW()
		WHERE id = $1 AND signed_artifact_key IS NULL
	`

	result, err := r.db.Conn(ctx).ExecContext(ctx, query, requestID, key)
	if err != nil {
		return false, fmt.Errorf("failed to set signed artifact key: %w", err)
	}
	return affectedOne(result)
}

func (r *signatureRepository) ClaimArtifact(ctx context.Context, requestID string, claimedAt, staleBefore time.Time) (bool, error) {
	query := `
		UPDATE signature_requests
		SET artifact_claimed_at = $2
		WHERE id = $1 AND signed_artifact_key IS NULL
			AND (artifact_claimed_at IS NULL OR artifact_claimed_at < $3)
	`

	result, err := r.db.Conn(ctx).ExecContext(ctx, query, requestID, claimedAt, staleBefore)
	if err != nil {
		return false, fmt.Errorf("failed to claim artifact generation: %w", err)
	}
	return affectedOne(result)
}

func (r *signatureRepository) ReleaseArtifactClaim(ctx context.Context, requestID string, claimedAt time.Time) error {
	query := `
		UPDATE signature_requests
		SET artifact_claimed_at = NULL
		WHERE id = $1 AND artifact_claimed_at = $2
	`

	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, requestID, claimedAt); err != nil {
		return fmt.Errorf("failed to release artifact claim: %w", err)
	}
	return nil
}

func marshalCaptured(data *entity.CapturedData) (interface{}, error) {
	if data == nil {
		return nil, nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode captured data: %w", err)
	}
	return payload, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func affectedOne(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
