package entity

import "time"

// Document is a stored file owned by a company
type Document struct {
	ID                string    `json:"id"`
	TenantID          string    `json:"company_id"`
	Name              string    `json:"name"`
	StorageKey        string    `json:"storage_key"`
	ContentType       string    `json:"content_type"`
	RequiresSignature bool      `json:"requires_signature"`
	SignatureHash     string    `json:"signature_hash,omitempty"`
	Signed            bool      `json:"signed"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
