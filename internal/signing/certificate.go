package signing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"signflow/internal/domain/entity"
)

const (
	CertificateAlgorithm = "sha256"
	CertificateVersion   = "v1"
)

// certificatePayload fixes the field order of the hashed document.
// Changing it invalidates every stored certificate hash.
type certificatePayload struct {
	Version        string          `json:"version"`
	RequestID      string          `json:"request_id"`
	SignerRecordID string          `json:"signer_record_id"`
	SignerID       string          `json:"signer_id"`
	SignerName     string          `json:"signer_name"`
	SignerEmail    string          `json:"signer_email"`
	DocumentID     string          `json:"document_id"`
	DocumentName   string          `json:"document_name"`
	DocumentHash   string          `json:"document_hash"`
	Captured       capturedPayload `json:"captured"`
}

type capturedPayload struct {
	IP              string `json:"ip"`
	UserAgent       string `json:"user_agent"`
	ClientTimestamp string `json:"client_timestamp"`
	Method          string `json:"method"`
}

func canonicalTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func canonicalPayload(subject entity.CertificateSubject) ([]byte, error) {
	payload := certificatePayload{
		Version:        CertificateVersion,
		RequestID:      subject.RequestID,
		SignerRecordID: subject.SignerRecordID,
		SignerID:       subject.SignerID,
		SignerName:     subject.SignerName,
		SignerEmail:    subject.SignerEmail,
		DocumentID:     subject.DocumentID,
		DocumentName:   subject.DocumentName,
		DocumentHash:   subject.DocumentHash,
		Captured: capturedPayload{
			IP:              subject.CapturedData.IP,
			UserAgent:       subject.CapturedData.UserAgent,
			ClientTimestamp: canonicalTimestamp(subject.CapturedData.ClientTimestamp),
			Method:          subject.CapturedData.Method,
		},
	}
	return json.Marshal(payload)
}

// GenerateCertificate derives the certificate hash binding a signer, the
// document snapshot and the capture context of one signature event.
func GenerateCertificate(subject entity.CertificateSubject) (entity.SigningCertificate, error) {
	raw, err := canonicalPayload(subject)
	if err != nil {
		return entity.SigningCertificate{}, fmt.Errorf("failed to encode certificate payload: %w", err)
	}
	sum := sha256.Sum256(raw)

	return entity.SigningCertificate{
		Hash:      hex.EncodeToString(sum[:]),
		Algorithm: CertificateAlgorithm,
		Version:   CertificateVersion,
		Subject:   subject,
	}, nil
}

// VerifyCertificate re-derives the hash for subject and compares it with expectedHash.
func VerifyCertificate(subject entity.CertificateSubject, expectedHash string) (bool, string, error) {
	cert, err := GenerateCertificate(subject)
	if err != nil {
		return false, "", err
	}
	return equalHex(cert.Hash, expectedHash), cert.Hash, nil
}
