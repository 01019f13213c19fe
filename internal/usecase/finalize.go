package usecase

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"signflow/internal/domain/entity"
	"signflow/internal/signing"
)

const stampTimeLayout = "2006-01-02 15:04:05 MST"

// BuildStampDescriptors returns one mark per signed record, earliest signature first
func BuildStampDescriptors(signers []entity.SignerRecord, loc *time.Location) []entity.StampDescriptor {
	if loc == nil {
		loc = time.UTC
	}

	signed := make([]entity.SignerRecord, 0, len(signers))
	for _, s := range signers {
		if s.Signed && s.SignedAt != nil {
			signed = append(signed, s)
		}
	}
	sort.SliceStable(signed, func(i, j int) bool {
		return signed[i].SignedAt.Before(*signed[j].SignedAt)
	})

	stamps := make([]entity.StampDescriptor, len(signed))
	for i, s := range signed {
		method := defaultCaptureMethod
		if s.CapturedData != nil && s.CapturedData.Method != "" {
			method = s.CapturedData.Method
		}
		stamps[i] = entity.StampDescriptor{
			SignerName:      s.SignerName,
			SignedAt:        s.SignedAt.In(loc).Format(stampTimeLayout),
			Method:          method,
			CertificateHash: s.CertificateHash,
		}
	}
	return stamps
}

// ArtifactKey is the storage key of the stamped document, one per request
func ArtifactKey(prefix, tenantID, requestID, documentName string) string {
	base := path.Base(strings.ReplaceAll(documentName, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == "/" {
		base = "document"
	}
	base = strings.ReplaceAll(base, " ", "_")

	key := fmt.Sprintf("%s/%s/%s_signed.pdf", tenantID, requestID, base)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

// defaultArtifactLease bounds a generation claim when no artifact timeout is set
const defaultArtifactLease = 5 * time.Minute

// artifactLease is how long a generation claim blocks other callers. The
// claimant's own work is cut off by the same timeout, so an older claim is dead.
func (u *signatureUsecase) artifactLease() time.Duration {
	if u.config.Signing.ArtifactTimeout > 0 {
		return u.config.Signing.ArtifactTimeout
	}
	return defaultArtifactLease
}

// generateArtifact stamps and stores the final document under the claim taken
// at claimedAt. It is detached from the caller's cancellation and bounded by
// the artifact timeout. On failure the claim is released for a retry.
func (u *signatureUsecase) generateArtifact(ctx context.Context, req *entity.SignatureRequest, doc *entity.Document, signers []entity.SignerRecord, claimedAt time.Time) (string, error) {
	artifactCtx, cancel := withTimeout(context.WithoutCancel(ctx), u.config.Signing.ArtifactTimeout)
	defer cancel()

	key, err := u.buildArtifact(artifactCtx, req, doc, signers)
	u.metrics.ArtifactGenerated(err)
	if err != nil {
		u.logger.Warn("Signed artifact generation failed, original document stays available",
			zap.String("request_id", req.ID),
			zap.String("document_id", doc.ID),
			zap.Error(err),
		)
		u.releaseArtifactClaim(ctx, req.ID, claimedAt)
		return "", err
	}

	u.logger.Info("Signed artifact stored",
		zap.String("request_id", req.ID),
		zap.String("signed_artifact_key", key),
	)
	return key, nil
}

func (u *signatureUsecase) buildArtifact(ctx context.Context, req *entity.SignatureRequest, doc *entity.Document, signers []entity.SignerRecord) (string, error) {
	stamps := BuildStampDescriptors(signers, u.config.StampLocation())
	if len(stamps) == 0 {
		return "", fmt.Errorf("no signed records to stamp")
	}

	content, err := u.download(ctx, doc)
	if err != nil {
		return "", err
	}
	if !signing.VerifyIntegrity(content, req.DocumentHash).Valid {
		return "", entity.ErrDocumentModified
	}

	stamped, err := u.stamper.Stamp(ctx, &entity.StampJob{
		RequestID:   req.ID,
		Filename:    req.DocumentName,
		ContentType: doc.ContentType,
		Content:     content,
		Stamps:      stamps,
	})
	if err != nil {
		return "", err
	}

	key := ArtifactKey(u.config.Signing.ArtifactPrefix, req.TenantID, req.ID, req.DocumentName)
	if err := u.storage.Upload(ctx, stamped, key, signedContentType); err != nil {
		return "", entity.WrapError(entity.ErrDependencyFailure, "upload signed artifact", err)
	}

	ok, err := u.requests.SetSignedArtifactKey(ctx, req.ID, key)
	if err != nil {
		return "", err
	}
	if !ok {
		current, err := u.requests.GetRequestByID(ctx, req.ID)
		if err != nil {
			return "", err
		}
		u.logger.Info("Signed artifact already recorded",
			zap.String("request_id", req.ID),
			zap.String("signed_artifact_key", current.SignedArtifactKey),
		)
		return current.SignedArtifactKey, nil
	}

	req.SignedArtifactKey = key
	return key, nil
}

func (u *signatureUsecase) releaseArtifactClaim(ctx context.Context, requestID string, claimedAt time.Time) {
	if err := u.requests.ReleaseArtifactClaim(context.WithoutCancel(ctx), requestID, claimedAt); err != nil {
		u.logger.Warn("Failed to release artifact claim, retries wait for the lease to lapse",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}
}
