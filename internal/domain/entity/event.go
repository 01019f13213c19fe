package entity

import "time"

// Event types published for the notification collaborator
const (
	EventSignatureRequested = "signature.requested"
	EventSignatureSigned    = "signature.signed"
	EventSignatureCompleted = "signature.completed"
	EventSignatureCancelled = "signature.cancelled"
)

// SignatureEvent is published whenever a request changes in a way
// someone may want to be notified about
type SignatureEvent struct {
	Type              string       `json:"type"`
	RequestID         string       `json:"request_id"`
	TenantID          string       `json:"company_id"`
	DocumentID        string       `json:"document_id"`
	State             RequestState `json:"state"`
	SignerRecordID    string       `json:"signer_record_id,omitempty"`
	SignerIDs         []string     `json:"signer_ids,omitempty"`
	Percentage        int          `json:"percentage"`
	SignedArtifactKey string       `json:"signed_artifact_key,omitempty"`
	OccurredAt        time.Time    `json:"occurred_at"`
}
