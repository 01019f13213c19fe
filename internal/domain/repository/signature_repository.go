package repository

import (
	"context"
	"time"

	"signflow/internal/domain/entity"
)

// Transactor runs fn in a transaction carried by ctx.
// Repository calls made with that ctx join the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type SignatureRepository interface {
	// CreateRequest inserts the request row without signers
	CreateRequest(ctx context.Context, req *entity.SignatureRequest) error

	// CreateSigners inserts all signer records of one request
	CreateSigners(ctx context.Context, signers []entity.SignerRecord) error

	// GetRequest loads a request scoped to a tenant
	GetRequest(ctx context.Context, tenantID, requestID string) (*entity.SignatureRequest, error)

	// GetRequestByID loads a request without tenant scoping, for signer-driven flows
	GetRequestByID(ctx context.Context, requestID string) (*entity.SignatureRequest, error)

	// GetRequestForUpdate loads and row-locks a request; must run inside WithinTx
	GetRequestForUpdate(ctx context.Context, requestID string) (*entity.SignatureRequest, error)

	// ListRequests returns a tenant's requests newest first
	ListRequests(ctx context.Context, tenantID string, filter entity.RequestFilter) ([]entity.SignatureRequest, error)

	GetSignerRecord(ctx context.Context, signerRecordID string) (*entity.SignerRecord, error)

	// ListSignerRecords returns the signers of one request in signing order
	ListSignerRecords(ctx context.Context, requestID string) ([]entity.SignerRecord, error)

	// ListSignerRecordsByRequests returns signers grouped by request id
	ListSignerRecordsByRequests(ctx context.Context, requestIDs []string) (map[string][]entity.SignerRecord, error)

	// UpdateSignerSigned marks a signer as signed only if it was still unsigned.
	// Returns false when another caller signed first.
	UpdateSignerSigned(ctx context.Context, signerRecordID string, signedAt time.Time, captured entity.CapturedData, certificateHash string) (bool, error)

	// UpdateRequestState moves a request to `to` only if its current state is one of `from`.
	// completedAt is kept when nil.
	UpdateRequestState(ctx context.Context, requestID string, from []entity.RequestState, to entity.RequestState, completedAt *time.Time) (bool, error)

	// SetSignedArtifactKey stores the artifact key once and clears the generation claim.
	// Returns false if a key was already set.
	SetSignedArtifactKey(ctx context.Context, requestID, key string) (bool, error)

	// ClaimArtifact reserves artifact generation for one caller. A claim taken
	// before staleBefore counts as abandoned. Returns false while another claim
	// is live or once an artifact exists.
	ClaimArtifact(ctx context.Context, requestID string, claimedAt, staleBefore time.Time) (bool, error)

	// ReleaseArtifactClaim drops the claim taken at claimedAt, if it is still held
	ReleaseArtifactClaim(ctx context.Context, requestID string, claimedAt time.Time) error
}

type DocumentRepository interface {
	GetDocument(ctx context.Context, documentID string) (*entity.Document, error)

	// MarkDocumentRequiresSignature flags the document and records the hash baseline
	MarkDocumentRequiresSignature(ctx context.Context, documentID, hash string) error

	MarkDocumentSigned(ctx context.Context, documentID string) error
}

// APILogRepository stores outbound stamping calls
type APILogRepository interface {
	Save(ctx context.Context, log *entity.APILog) error
	FindAll(ctx context.Context, limit int) ([]entity.APILog, error)
	FindByRequest(ctx context.Context, requestID string, limit int) ([]entity.APILog, error)
}
