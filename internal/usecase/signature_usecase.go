package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"signflow/internal/config"
	"signflow/internal/domain/entity"
	"signflow/internal/domain/repository"
	"signflow/internal/infrastructure/notifier"
	"signflow/internal/infrastructure/stamper"
	"signflow/internal/infrastructure/storage"
	"signflow/internal/observability/metrics"
	"signflow/internal/signing"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	defaultCaptureMethod = "click"
	signedContentType    = "application/pdf"
)

// StatusCache keeps short-lived status projections. Implementations are best effort.
//
// GetStatus also returns the cache generation observed before the caller reads
// the database; SetStatus must drop the write when Invalidate ran in between.
// A negative generation disables the write.
type StatusCache interface {
	GetStatus(ctx context.Context, requestID string) (*entity.RequestStatus, int64, bool)
	SetStatus(ctx context.Context, status *entity.RequestStatus, generation int64)
	Invalidate(ctx context.Context, requestID string)
}

type SignatureUsecase interface {
	CreateRequest(ctx context.Context, input *entity.CreateRequestInput) (*entity.SignatureRequest, error)
	Sign(ctx context.Context, input *entity.SignInput) (*entity.SignResult, error)
	GetRequestStatus(ctx context.Context, requestID, tenantID string) (*entity.RequestStatus, error)
	ListRequests(ctx context.Context, tenantID string, filter entity.RequestFilter) ([]entity.RequestSummary, error)
	CancelRequest(ctx context.Context, requestID, tenantID, cancelledBy string) (*entity.SignatureRequest, error)
	VerifySignature(ctx context.Context, requestID, signerRecordID, tenantID string) (*entity.CertificateVerification, error)
	RetryArtifact(ctx context.Context, requestID, tenantID string) (*entity.RequestStatus, error)
}

type SignatureParams struct {
	fx.In

	Config     *config.Config
	Transactor repository.Transactor
	Requests   repository.SignatureRepository
	Documents  repository.DocumentRepository
	Storage    storage.ObjectStorage
	Stamper    stamper.DocumentStamper
	Publisher  notifier.Publisher
	Cache      StatusCache
	Metrics    *metrics.SigningMetrics
	Logger     *zap.Logger
}

type signatureUsecase struct {
	config    *config.Config
	tx        repository.Transactor
	requests  repository.SignatureRepository
	documents repository.DocumentRepository
	storage   storage.ObjectStorage
	stamper   stamper.DocumentStamper
	publisher notifier.Publisher
	cache     StatusCache
	metrics   *metrics.SigningMetrics
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewSignatureUsecase(p SignatureParams) SignatureUsecase {
	return newSignatureUsecase(p)
}

func newSignatureUsecase(p SignatureParams) *signatureUsecase {
	return &signatureUsecase{
		config:    p.Config,
		tx:        p.Transactor,
		requests:  p.Requests,
		documents: p.Documents,
		storage:   p.Storage,
		stamper:   p.Stamper,
		publisher: p.Publisher,
		cache:     p.Cache,
		metrics:   p.Metrics,
		logger:    p.Logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// withTimeout applies d only when it is positive
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (u *signatureUsecase) CreateRequest(ctx context.Context, input *entity.CreateRequestInput) (*entity.SignatureRequest, error) {
	signers, err := normalizeSigners(input)
	if err != nil {
		return nil, err
	}

	doc, err := u.documents.GetDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}
	// documents of other companies are reported as missing
	if doc.TenantID != input.TenantID {
		return nil, entity.ErrDocumentNotFound
	}

	content, err := u.download(ctx, doc)
	if err != nil {
		return nil, err
	}

	now := u.now()
	req := &entity.SignatureRequest{
		ID:             u.newID(),
		TenantID:       input.TenantID,
		DocumentID:     doc.ID,
		Title:          strings.TrimSpace(input.Title),
		Message:        strings.TrimSpace(input.Message),
		OrderedSigning: input.OrderedSigning,
		State:          entity.RequestStatePending,
		DocumentName:   doc.Name,
		DocumentHash:   signing.ComputeDocumentHash(content),
		CreatedBy:      input.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i := range signers {
		signers[i].ID = u.newID()
		signers[i].RequestID = req.ID
	}

	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := u.requests.CreateRequest(ctx, req); err != nil {
			return err
		}
		if err := u.requests.CreateSigners(ctx, signers); err != nil {
			return err
		}
		return u.documents.MarkDocumentRequiresSignature(ctx, doc.ID, req.DocumentHash)
	})
	if err != nil {
		u.logger.Error("Failed to create signature request",
			zap.String("document_id", doc.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create signature request: %w", err)
	}

	sortSigners(signers)
	req.Signers = signers

	u.metrics.RequestCreated()
	u.logger.Info("Signature request created",
		zap.String("request_id", req.ID),
		zap.String("company_id", req.TenantID),
		zap.String("document_id", req.DocumentID),
		zap.String("document_hash", req.DocumentHash),
		zap.Bool("ordered_signing", req.OrderedSigning),
		zap.Int("signers", len(signers)),
	)

	signerIDs := make([]string, len(signers))
	for i, s := range signers {
		signerIDs[i] = s.SignerID
	}
	u.publish(ctx, entity.SignatureEvent{
		Type:       entity.EventSignatureRequested,
		RequestID:  req.ID,
		TenantID:   req.TenantID,
		DocumentID: req.DocumentID,
		State:      req.State,
		SignerIDs:  signerIDs,
	})

	return req, nil
}

// normalizeSigners validates input before any I/O and resolves signing orders
func normalizeSigners(input *entity.CreateRequestInput) ([]entity.SignerRecord, error) {
	if input == nil {
		return nil, entity.NewValidationError("request body is required")
	}
	if strings.TrimSpace(input.TenantID) == "" {
		return nil, entity.NewValidationError("company id is required")
	}
	if strings.TrimSpace(input.DocumentID) == "" {
		return nil, entity.NewValidationError("document_id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, entity.NewValidationError("title is required")
	}
	if len(input.Signers) == 0 {
		return nil, entity.NewValidationError("at least one signer is required")
	}

	seen := make(map[string]struct{}, len(input.Signers))
	ranks := make(map[int]string, len(input.Signers))
	records := make([]entity.SignerRecord, 0, len(input.Signers))

	for i, in := range input.Signers {
		signerID := strings.TrimSpace(in.SignerID)
		if signerID == "" {
			return nil, entity.NewValidationError("signers[%d].signer_id is required", i)
		}
		if _, dup := seen[signerID]; dup {
			return nil, entity.NewValidationError("signer %s is listed more than once", signerID)
		}
		seen[signerID] = struct{}{}

		order := entity.Unordered()
		if input.OrderedSigning {
			rank := i + 1
			if in.Order != nil {
				if *in.Order < 0 {
					return nil, entity.NewValidationError("signers[%d].order must not be negative", i)
				}
				rank = *in.Order
			}
			if rank > 0 {
				if other, taken := ranks[rank]; taken {
					return nil, entity.NewValidationError("signers %s and %s share order %d", other, signerID, rank)
				}
				ranks[rank] = signerID
			}
			order = entity.Ordered(rank)
		}

		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = signerID
		}

		records = append(records, entity.SignerRecord{
			SignerID:    signerID,
			SignerName:  name,
			SignerEmail: strings.TrimSpace(in.Email),
			Order:       order,
			Position:    i,
			Kind:        entity.SignerKindSimple,
		})
	}

	return records, nil
}

func sortSigners(signers []entity.SignerRecord) {
	sort.SliceStable(signers, func(i, j int) bool {
		if signers[i].Order.Int() != signers[j].Order.Int() {
			return signers[i].Order.Int() < signers[j].Order.Int()
		}
		return signers[i].Position < signers[j].Position
	})
}

func (u *signatureUsecase) Sign(ctx context.Context, input *entity.SignInput) (*entity.SignResult, error) {
	start := time.Now()
	result, err := u.sign(ctx, input)
	u.metrics.ObserveSign(signOutcome(err), time.Since(start))
	return result, err
}

func signOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSigned
	case entity.IsKind(err, entity.ErrIntegrityViolation):
		return metrics.OutcomeIntegrity
	case entity.IsKind(err, entity.ErrConflict):
		return metrics.OutcomeConflict
	case entity.IsKind(err, entity.ErrNotFound), entity.IsKind(err, entity.ErrValidation):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

func (u *signatureUsecase) sign(ctx context.Context, input *entity.SignInput) (*entity.SignResult, error) {
	if input == nil || strings.TrimSpace(input.SignerRecordID) == "" {
		return nil, entity.NewValidationError("signer record id is required")
	}
	if strings.TrimSpace(input.SignerID) == "" {
		return nil, entity.NewValidationError("signer id is required")
	}
	captured := input.CapturedData
	if captured.Method == "" {
		captured.Method = defaultCaptureMethod
	}

	// Preconditions, first failure wins
	record, err := u.requests.GetSignerRecord(ctx, input.SignerRecordID)
	if err != nil {
		return nil, err
	}
	if record.SignerID != input.SignerID {
		return nil, entity.ErrSignerNotFound
	}
	if record.Signed {
		return nil, entity.ErrAlreadySigned
	}

	req, err := u.requests.GetRequestByID(ctx, record.RequestID)
	if err != nil {
		return nil, err
	}
	if req.State == entity.RequestStateCancelled {
		return nil, entity.ErrRequestCancelled
	}

	siblings, err := u.requests.ListSignerRecords(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load signers: %w", err)
	}
	if err := signing.CheckSigningOrder(req.OrderedSigning, *record, siblings); err != nil {
		return nil, err
	}

	doc, err := u.documents.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	content, err := u.download(ctx, doc)
	if err != nil {
		return nil, err
	}
	if integrity := signing.VerifyIntegrity(content, req.DocumentHash); !integrity.Valid {
		u.logger.Warn("Refusing signature on modified document",
			zap.String("request_id", req.ID),
			zap.String("signer_record_id", record.ID),
			zap.String("expected_hash", integrity.Expected),
			zap.String("actual_hash", integrity.Actual),
		)
		return nil, entity.ErrDocumentModified
	}

	signedAt := u.now()
	claimedAt := signedAt.Truncate(time.Microsecond)
	cert, err := signing.GenerateCertificate(certificateSubject(req, record, captured))
	if err != nil {
		return nil, fmt.Errorf("failed to generate certificate: %w", err)
	}

	var (
		completion  entity.Completion
		state       entity.RequestState
		wonComplete bool
		finalSet    []entity.SignerRecord
		signedRec   entity.SignerRecord
	)

	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := u.requests.GetRequestForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if locked.State == entity.RequestStateCancelled {
			return entity.ErrRequestCancelled
		}

		current, err := u.requests.ListSignerRecords(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to load signers: %w", err)
		}
		idx := indexOfSigner(current, record.ID)
		if idx < 0 {
			return entity.ErrSignerNotFound
		}
		if current[idx].Signed {
			return entity.ErrAlreadySigned
		}
		if err := signing.CheckSigningOrder(locked.OrderedSigning, current[idx], current); err != nil {
			return err
		}

		ok, err := u.requests.UpdateSignerSigned(ctx, record.ID, signedAt, captured, cert.Hash)
		if err != nil {
			return err
		}
		if !ok {
			return entity.ErrAlreadySigned
		}

		capturedCopy := captured
		signedAtCopy := signedAt
		current[idx].Signed = true
		current[idx].SignedAt = &signedAtCopy
		current[idx].CapturedData = &capturedCopy
		current[idx].CertificateHash = cert.Hash
		signedRec = current[idx]

		completion = signing.EvaluateCompletion(current)
		finalSet = current

		if completion.Complete {
			won, err := u.requests.UpdateRequestState(ctx, req.ID,
				[]entity.RequestState{entity.RequestStatePending, entity.RequestStateInProgress},
				entity.RequestStateCompleted, &signedAtCopy)
			if err != nil {
				return err
			}
			if won {
				if err := u.documents.MarkDocumentSigned(ctx, req.DocumentID); err != nil {
					return err
				}
				// the completing signer owns the first stamping attempt
				if _, err := u.requests.ClaimArtifact(ctx, req.ID, claimedAt, claimedAt.Add(-u.artifactLease())); err != nil {
					return err
				}
			}
			wonComplete = won
			state = entity.RequestStateCompleted
			return nil
		}

		if _, err := u.requests.UpdateRequestState(ctx, req.ID,
			[]entity.RequestState{entity.RequestStatePending},
			entity.RequestStateInProgress, nil); err != nil {
			return err
		}
		state = entity.RequestStateInProgress
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		u.logger.Error("Failed to record signature",
			zap.String("request_id", req.ID),
			zap.String("signer_record_id", record.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to record signature: %w", err)
	}

	u.invalidate(ctx, req.ID)
	u.logger.Info("Signature recorded",
		zap.String("request_id", req.ID),
		zap.String("signer_record_id", record.ID),
		zap.String("certificate_hash", cert.Hash),
		zap.Int("percentage", completion.Percentage),
		zap.String("state", string(state)),
	)

	u.publish(ctx, entity.SignatureEvent{
		Type:           entity.EventSignatureSigned,
		RequestID:      req.ID,
		TenantID:       req.TenantID,
		DocumentID:     req.DocumentID,
		State:          state,
		SignerRecordID: record.ID,
		Percentage:     completion.Percentage,
	})

	if wonComplete {
		u.metrics.RequestCompleted()
		req.State = entity.RequestStateCompleted
		req.CompletedAt = &signedAt

		// stamping failures are logged inside and never undo the signature
		artifactKey, _ := u.generateArtifact(ctx, req, doc, finalSet, claimedAt)
		u.invalidate(ctx, req.ID)

		u.publish(ctx, entity.SignatureEvent{
			Type:              entity.EventSignatureCompleted,
			RequestID:         req.ID,
			TenantID:          req.TenantID,
			DocumentID:        req.DocumentID,
			State:             entity.RequestStateCompleted,
			Percentage:        completion.Percentage,
			SignedArtifactKey: artifactKey,
		})
	}

	return &entity.SignResult{
		Record:           signedRec,
		Certificate:      cert,
		Completion:       completion,
		RequestState:     state,
		RequestCompleted: completion.Complete,
	}, nil
}

func indexOfSigner(records []entity.SignerRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func certificateSubject(req *entity.SignatureRequest, record *entity.SignerRecord, captured entity.CapturedData) entity.CertificateSubject {
	return entity.CertificateSubject{
		RequestID:      req.ID,
		SignerRecordID: record.ID,
		SignerID:       record.SignerID,
		SignerName:     record.SignerName,
		SignerEmail:    record.SignerEmail,
		DocumentID:     req.DocumentID,
		DocumentName:   req.DocumentName,
		DocumentHash:   req.DocumentHash,
		CapturedData:   captured,
	}
}

func (u *signatureUsecase) GetRequestStatus(ctx context.Context, requestID, tenantID string) (*entity.RequestStatus, error) {
	if strings.TrimSpace(requestID) == "" || strings.TrimSpace(tenantID) == "" {
		return nil, entity.NewValidationError("request id and company id are required")
	}

	cached, generation, ok := u.cache.GetStatus(ctx, requestID)
	if ok && cached.TenantID == tenantID {
		return cached, nil
	}

	req, err := u.requests.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	signers, err := u.requests.ListSignerRecords(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load signers: %w", err)
	}

	status := buildStatus(req, signers)
	u.cache.SetStatus(ctx, status, generation)
	return status, nil
}

func buildStatus(req *entity.SignatureRequest, signers []entity.SignerRecord) *entity.RequestStatus {
	items := make([]entity.SignerStatus, len(signers))
	for i, s := range signers {
		items[i] = entity.SignerStatus{
			ID:              s.ID,
			SignerID:        s.SignerID,
			Name:            s.SignerName,
			Email:           s.SignerEmail,
			Order:           s.Order.Int(),
			Signed:          s.Signed,
			SignedAt:        s.SignedAt,
			CertificateHash: s.CertificateHash,
		}
	}

	return &entity.RequestStatus{
		RequestID:         req.ID,
		TenantID:          req.TenantID,
		DocumentID:        req.DocumentID,
		DocumentName:      req.DocumentName,
		Title:             req.Title,
		State:             req.State,
		OrderedSigning:    req.OrderedSigning,
		Completion:        signing.EvaluateCompletion(signers),
		Signers:           items,
		SignedArtifactKey: req.SignedArtifactKey,
		CreatedAt:         req.CreatedAt,
		CompletedAt:       req.CompletedAt,
	}
}

func (u *signatureUsecase) ListRequests(ctx context.Context, tenantID string, filter entity.RequestFilter) ([]entity.RequestSummary, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, entity.NewValidationError("company id is required")
	}
	if filter.State != "" && !filter.State.Valid() {
		return nil, entity.NewValidationError("unknown state %q", filter.State)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	requests, err := u.requests.ListRequests(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list signature requests: %w", err)
	}

	ids := make([]string, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}
	grouped, err := u.requests.ListSignerRecordsByRequests(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load signers: %w", err)
	}

	summaries := make([]entity.RequestSummary, len(requests))
	for i, r := range requests {
		signers := grouped[r.ID]
		r.Signers = signers
		summaries[i] = entity.RequestSummary{
			SignatureRequest: r,
			Completion:       signing.EvaluateCompletion(signers),
		}
	}
	return summaries, nil
}

func (u *signatureUsecase) CancelRequest(ctx context.Context, requestID, tenantID, cancelledBy string) (*entity.SignatureRequest, error) {
	req, err := u.requests.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if req.State.IsTerminal() {
		return nil, entity.ErrRequestClosed
	}

	ok, err := u.requests.UpdateRequestState(ctx, req.ID,
		[]entity.RequestState{entity.RequestStatePending, entity.RequestStateInProgress},
		entity.RequestStateCancelled, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel signature request: %w", err)
	}
	if !ok {
		return nil, entity.ErrRequestClosed
	}

	req.State = entity.RequestStateCancelled
	req.UpdatedAt = u.now()
	u.invalidate(ctx, req.ID)
	u.metrics.RequestCancelled()

	u.logger.Info("Signature request cancelled",
		zap.String("request_id", req.ID),
		zap.String("cancelled_by", cancelledBy),
	)

	u.publish(ctx, entity.SignatureEvent{
		Type:       entity.EventSignatureCancelled,
		RequestID:  req.ID,
		TenantID:   req.TenantID,
		DocumentID: req.DocumentID,
		State:      req.State,
	})

	return req, nil
}

func (u *signatureUsecase) VerifySignature(ctx context.Context, requestID, signerRecordID, tenantID string) (*entity.CertificateVerification, error) {
	req, err := u.requests.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	record, err := u.requests.GetSignerRecord(ctx, signerRecordID)
	if err != nil {
		return nil, err
	}
	if record.RequestID != req.ID {
		return nil, entity.ErrSignerNotFound
	}
	if !record.Signed || record.CapturedData == nil {
		return nil, entity.ErrNotSigned
	}

	valid, recomputed, err := signing.VerifyCertificate(certificateSubject(req, record, *record.CapturedData), record.CertificateHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify certificate: %w", err)
	}

	doc, err := u.documents.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	content, err := u.download(ctx, doc)
	if err != nil {
		return nil, err
	}

	return &entity.CertificateVerification{
		RequestID:       req.ID,
		SignerRecordID:  record.ID,
		Valid:           valid,
		StoredHash:      record.CertificateHash,
		RecomputedHash:  recomputed,
		DocumentHash:    req.DocumentHash,
		IntegrityIntact: signing.VerifyIntegrity(content, req.DocumentHash).Valid,
	}, nil
}

func (u *signatureUsecase) RetryArtifact(ctx context.Context, requestID, tenantID string) (*entity.RequestStatus, error) {
	req, err := u.requests.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if req.State != entity.RequestStateCompleted {
		return nil, entity.ErrRequestNotDone
	}

	if !req.HasArtifact() {
		if err := u.retryArtifact(ctx, req); err != nil {
			return nil, err
		}
		u.invalidate(ctx, req.ID)
	}

	return u.GetRequestStatus(ctx, req.ID, tenantID)
}

// retryArtifact regenerates the artifact unless another caller holds a live claim
func (u *signatureUsecase) retryArtifact(ctx context.Context, req *entity.SignatureRequest) error {
	claimedAt := u.now().Truncate(time.Microsecond)
	claimed, err := u.requests.ClaimArtifact(ctx, req.ID, claimedAt, claimedAt.Add(-u.artifactLease()))
	if err != nil {
		return fmt.Errorf("failed to claim artifact generation: %w", err)
	}
	if !claimed {
		current, err := u.requests.GetRequestByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if current.HasArtifact() {
			return nil
		}
		u.logger.Info("Artifact generation already in progress",
			zap.String("request_id", req.ID),
		)
		return entity.ErrArtifactPending
	}

	doc, err := u.documents.GetDocument(ctx, req.DocumentID)
	if err != nil {
		u.releaseArtifactClaim(ctx, req.ID, claimedAt)
		return err
	}
	signers, err := u.requests.ListSignerRecords(ctx, req.ID)
	if err != nil {
		u.releaseArtifactClaim(ctx, req.ID, claimedAt)
		return fmt.Errorf("failed to load signers: %w", err)
	}
	if _, err := u.generateArtifact(ctx, req, doc, signers, claimedAt); err != nil {
		if isDomainError(err) {
			return err
		}
		return entity.WrapError(entity.ErrDependencyFailure, "generate signed artifact", err)
	}
	return nil
}

// invalidate runs after commit, so it must not depend on the caller staying connected
func (u *signatureUsecase) invalidate(ctx context.Context, requestID string) {
	u.cache.Invalidate(context.WithoutCancel(ctx), requestID)
}

// download reads the current document bytes; never cached between calls
func (u *signatureUsecase) download(ctx context.Context, doc *entity.Document) ([]byte, error) {
	dlCtx, cancel := withTimeout(ctx, u.config.Storage.Timeout)
	defer cancel()

	content, err := u.storage.Download(dlCtx, doc.StorageKey)
	if err != nil {
		u.logger.Warn("Failed to download document",
			zap.String("document_id", doc.ID),
			zap.String("storage_key", doc.StorageKey),
			zap.Error(err),
		)
		return nil, entity.WrapError(entity.ErrDependencyFailure, "download document", err)
	}
	return content, nil
}

// publish is best effort; delivery failures are only logged
func (u *signatureUsecase) publish(ctx context.Context, event entity.SignatureEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = u.now()
	}
	if err := u.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		u.logger.Warn("Failed to publish signature event",
			zap.String("type", event.Type),
			zap.String("request_id", event.RequestID),
			zap.Error(err),
		)
	}
}

func isDomainError(err error) bool {
	for _, kind := range []error{
		entity.ErrNotFound,
		entity.ErrConflict,
		entity.ErrIntegrityViolation,
		entity.ErrValidation,
		entity.ErrDependencyFailure,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
