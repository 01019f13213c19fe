package signing

import (
	"testing"
	"time"

	"signflow/internal/domain/entity"
)

func sampleSubject() entity.CertificateSubject {
	return entity.CertificateSubject{
		RequestID:      "req-1",
		SignerRecordID: "rec-1",
		SignerID:       "emp-7",
		SignerName:     "Ana Ruiz",
		SignerEmail:    "ana@example.com",
		DocumentID:     "doc-1",
		DocumentName:   "contract.pdf",
		DocumentHash:   ComputeDocumentHash([]byte("contract")),
		CapturedData: entity.CapturedData{
			IP:              "10.0.0.1",
			UserAgent:       "Mozilla/5.0",
			ClientTimestamp: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
			Method:          "click",
		},
	}
}

func TestGenerateCertificateDeterministic(t *testing.T) {
	a, err := GenerateCertificate(sampleSubject())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := GenerateCertificate(sampleSubject())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.Hash != b.Hash {
		t.Fatalf("expected same hash, got %s vs %s", a.Hash, b.Hash)
	}
	if a.Algorithm != CertificateAlgorithm || a.Version != CertificateVersion {
		t.Fatalf("unexpected algorithm/version: %s/%s", a.Algorithm, a.Version)
	}
	if a.Subject.SignerID != "emp-7" {
		t.Fatalf("expected subject to be echoed, got %+v", a.Subject)
	}
}

func TestGenerateCertificateNormalisesTimezone(t *testing.T) {
	subject := sampleSubject()
	other := sampleSubject()
	madrid := time.FixedZone("CET", 3600)
	other.CapturedData.ClientTimestamp = subject.CapturedData.ClientTimestamp.In(madrid)

	a, _ := GenerateCertificate(subject)
	b, _ := GenerateCertificate(other)
	if a.Hash != b.Hash {
		t.Fatalf("expected the same instant in another zone to hash the same")
	}
}

func TestGenerateCertificateChangesOnAnyField(t *testing.T) {
	base, _ := GenerateCertificate(sampleSubject())

	mutations := map[string]func(*entity.CertificateSubject){
		"request_id":       func(s *entity.CertificateSubject) { s.RequestID = "req-2" },
		"signer_record_id": func(s *entity.CertificateSubject) { s.SignerRecordID = "rec-2" },
		"signer_id":        func(s *entity.CertificateSubject) { s.SignerID = "emp-8" },
		"signer_name":      func(s *entity.CertificateSubject) { s.SignerName = "Ana Ruíz" },
		"signer_email":     func(s *entity.CertificateSubject) { s.SignerEmail = "ana@example.org" },
		"document_id":      func(s *entity.CertificateSubject) { s.DocumentID = "doc-2" },
		"document_name":    func(s *entity.CertificateSubject) { s.DocumentName = "contract-v2.pdf" },
		"document_hash":    func(s *entity.CertificateSubject) { s.DocumentHash = ComputeDocumentHash([]byte("other")) },
		"ip":               func(s *entity.CertificateSubject) { s.CapturedData.IP = "10.0.0.2" },
		"user_agent":       func(s *entity.CertificateSubject) { s.CapturedData.UserAgent = "curl/8" },
		"client_timestamp": func(s *entity.CertificateSubject) {
			s.CapturedData.ClientTimestamp = s.CapturedData.ClientTimestamp.Add(time.Millisecond)
		},
		"method": func(s *entity.CertificateSubject) { s.CapturedData.Method = "typed" },
	}

	for name, mutate := range mutations {
		subject := sampleSubject()
		mutate(&subject)
		cert, err := GenerateCertificate(subject)
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", name, err)
		}
		if cert.Hash == base.Hash {
			t.Fatalf("%s: expected hash to change", name)
		}
	}
}

func TestVerifyCertificate(t *testing.T) {
	cert, _ := GenerateCertificate(sampleSubject())

	ok, recomputed, err := VerifyCertificate(sampleSubject(), cert.Hash)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !ok || recomputed != cert.Hash {
		t.Fatalf("expected certificate to verify, got ok=%v recomputed=%s", ok, recomputed)
	}

	tampered := sampleSubject()
	tampered.CapturedData.IP = "192.168.1.1"
	ok, _, _ = VerifyCertificate(tampered, cert.Hash)
	if ok {
		t.Fatalf("expected tampered subject to fail verification")
	}
}
