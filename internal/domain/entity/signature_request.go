package entity

import (
	"encoding/json"
	"time"
)

// RequestState is the lifecycle state of a signature request
type RequestState string

const (
	RequestStatePending    RequestState = "pending"
	RequestStateInProgress RequestState = "in_progress"
	RequestStateCompleted  RequestState = "completed"
	RequestStateCancelled  RequestState = "cancelled"
)

// IsTerminal returns true for completed and cancelled requests
func (s RequestState) IsTerminal() bool {
	return s == RequestStateCompleted || s == RequestStateCancelled
}

// Valid reports whether s is one of the known states
func (s RequestState) Valid() bool {
	switch s {
	case RequestStatePending, RequestStateInProgress, RequestStateCompleted, RequestStateCancelled:
		return true
	}
	return false
}

// SignerKind is the signature model used by a signer
type SignerKind string

const (
	SignerKindSimple SignerKind = "simple"
)

// SigningOrder is either unordered or an ordered rank (> 0).
// The zero value is unordered.
type SigningOrder struct {
	rank int
}

// Unordered returns an order that is not constrained by other signers
func Unordered() SigningOrder {
	return SigningOrder{}
}

// Ordered returns an order with the given rank; ranks <= 0 are unordered
func Ordered(rank int) SigningOrder {
	if rank <= 0 {
		return SigningOrder{}
	}
	return SigningOrder{rank: rank}
}

// Rank returns the rank and whether the order is constrained
func (o SigningOrder) Rank() (int, bool) {
	return o.rank, o.rank > 0
}

// IsOrdered returns true when the signer has a rank
func (o SigningOrder) IsOrdered() bool {
	return o.rank > 0
}

// Int is the persisted form, 0 meaning unordered
func (o SigningOrder) Int() int {
	return o.rank
}

// Before reports whether o must sign before other
func (o SigningOrder) Before(other SigningOrder) bool {
	return o.IsOrdered() && other.IsOrdered() && o.rank < other.rank
}

func (o SigningOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.rank)
}

func (o *SigningOrder) UnmarshalJSON(data []byte) error {
	var rank int
	if err := json.Unmarshal(data, &rank); err != nil {
		return err
	}
	*o = Ordered(rank)
	return nil
}

// SignatureRequest is one signing campaign over one document snapshot
type SignatureRequest struct {
	ID                string         `json:"id"`
	TenantID          string         `json:"company_id"`
	DocumentID        string         `json:"document_id"`
	Title             string         `json:"title"`
	Message           string         `json:"message,omitempty"`
	OrderedSigning    bool           `json:"ordered_signing"`
	State             RequestState   `json:"state"`
	DocumentName      string         `json:"document_name"`
	DocumentHash      string         `json:"document_hash"`
	CreatedBy         string         `json:"created_by"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
	SignedArtifactKey string         `json:"signed_artifact_key,omitempty"`
	Signers           []SignerRecord `json:"signers,omitempty"`
}

// HasArtifact returns true once the stamped document has been stored
func (r *SignatureRequest) HasArtifact() bool {
	return r.SignedArtifactKey != ""
}

// CapturedData is the context recorded when a signer signs
type CapturedData struct {
	IP              string    `json:"ip"`
	UserAgent       string    `json:"user_agent"`
	ClientTimestamp time.Time `json:"client_timestamp"`
	Method          string    `json:"method"` // e.g. "click"
}

// SignerRecord is one signer's participation in a request
type SignerRecord struct {
	ID              string        `json:"id"`
	RequestID       string        `json:"request_id"`
	SignerID        string        `json:"signer_id"`
	SignerName      string        `json:"signer_name"`
	SignerEmail     string        `json:"signer_email,omitempty"`
	Order           SigningOrder  `json:"order"`
	Position        int           `json:"-"`
	Kind            SignerKind    `json:"kind"`
	Signed          bool          `json:"signed"`
	SignedAt        *time.Time    `json:"signed_at,omitempty"`
	CapturedData    *CapturedData `json:"captured_data,omitempty"`
	CertificateHash string        `json:"certificate_hash,omitempty"`
}

// Completion is the progress of a request computed from its signer records
type Completion struct {
	Total       int  `json:"total"`
	SignedCount int  `json:"signed_count"`
	Percentage  int  `json:"percentage"`
	Complete    bool `json:"complete"`
}

// CertificateSubject holds every field bound by a signing certificate
type CertificateSubject struct {
	RequestID      string       `json:"request_id"`
	SignerRecordID string       `json:"signer_record_id"`
	SignerID       string       `json:"signer_id"`
	SignerName     string       `json:"signer_name"`
	SignerEmail    string       `json:"signer_email"`
	DocumentID     string       `json:"document_id"`
	DocumentName   string       `json:"document_name"`
	DocumentHash   string       `json:"document_hash"`
	CapturedData   CapturedData `json:"captured_data"`
}

// SigningCertificate is the non-repudiation digest of one signature event
type SigningCertificate struct {
	Hash      string             `json:"certificate_hash"`
	Algorithm string             `json:"algorithm"`
	Version   string             `json:"version"`
	Subject   CertificateSubject `json:"subject"`
}
