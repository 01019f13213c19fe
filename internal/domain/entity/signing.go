package entity

import "time"

// SignerInput describes one invited signer when creating a request
type SignerInput struct {
	SignerID string `json:"signer_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Order    *int   `json:"order,omitempty"` // explicit rank, only used with ordered signing
}

// CreateRequestInput is the payload for creating a signature request
type CreateRequestInput struct {
	TenantID       string        `json:"-"`
	CreatedBy      string        `json:"-"`
	DocumentID     string        `json:"document_id"`
	Title          string        `json:"title"`
	Message        string        `json:"message,omitempty"`
	OrderedSigning bool          `json:"ordered_signing"`
	Signers        []SignerInput `json:"signers"`
}

// SignInput is one signing attempt
type SignInput struct {
	SignerRecordID string       `json:"-"`
	SignerID       string       `json:"-"`
	CapturedData   CapturedData `json:"captured_data"`
}

// SignResult is returned after a successful signature
type SignResult struct {
	Record           SignerRecord       `json:"record"`
	Certificate      SigningCertificate `json:"certificate"`
	Completion       Completion         `json:"completion"`
	RequestState     RequestState       `json:"request_state"`
	RequestCompleted bool               `json:"request_completed"`
}

// SignerStatus is the per-signer projection of a request status
type SignerStatus struct {
	ID              string     `json:"id"`
	SignerID        string     `json:"signer_id"`
	Name            string     `json:"name"`
	Email           string     `json:"email,omitempty"`
	Order           int        `json:"order"`
	Signed          bool       `json:"signed"`
	SignedAt        *time.Time `json:"signed_at,omitempty"`
	CertificateHash string     `json:"certificate_hash,omitempty"`
}

// RequestStatus is the read-only projection returned by GetRequestStatus
type RequestStatus struct {
	RequestID         string         `json:"request_id"`
	TenantID          string         `json:"company_id"`
	DocumentID        string         `json:"document_id"`
	DocumentName      string         `json:"document_name"`
	Title             string         `json:"title"`
	State             RequestState   `json:"state"`
	OrderedSigning    bool           `json:"ordered_signing"`
	Completion        Completion     `json:"completion"`
	Signers           []SignerStatus `json:"signers"`
	SignedArtifactKey string         `json:"signed_artifact_key,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
}

// RequestFilter narrows ListRequests
type RequestFilter struct {
	State      RequestState
	DocumentID string
	Limit      int
	Offset     int
}

// RequestSummary is a request with its live completion
type RequestSummary struct {
	SignatureRequest
	Completion Completion `json:"completion"`
}

// CertificateVerification is the result of re-deriving a signer's certificate
type CertificateVerification struct {
	RequestID       string `json:"request_id"`
	SignerRecordID  string `json:"signer_record_id"`
	Valid           bool   `json:"valid"`
	StoredHash      string `json:"stored_hash"`
	RecomputedHash  string `json:"recomputed_hash"`
	DocumentHash    string `json:"document_hash"`
	IntegrityIntact bool   `json:"integrity_intact"`
}
