package entity

// StampDescriptor is one visible signature mark on the final document
type StampDescriptor struct {
	SignerName      string `json:"signer_name"`
	SignedAt        string `json:"signed_at"`        // Formatted signing time
	Method          string `json:"method"`           // Capture method, e.g. "click"
	CertificateHash string `json:"certificate_hash"` // Binding proof for this signature
}

// StampJob is what the engine hands to the document stamper
type StampJob struct {
	RequestID   string
	Filename    string
	ContentType string
	Content     []byte
	Stamps      []StampDescriptor
}

// StampRequest is the payload sent to the stamping service
type StampRequest struct {
	Doc      string            `json:"doc"`      // Base64 encoded document
	Filename string            `json:"filename"` // Document filename
	Page     int               `json:"page"`     // Page receiving the marks (1-based)
	Stamps   []StampDescriptor `json:"stamps"`
	Canvas   *StampCanvas      `json:"canvas,omitempty"`
}

// StampCanvas describes the page geometry used to lay out marks
type StampCanvas struct {
	Width         float64 `json:"width"`          // default: 595 for A4
	Height        float64 `json:"height"`         // default: 841 for A4
	ElementWidth  float64 `json:"element_width"`  // width of one mark
	ElementHeight float64 `json:"element_height"` // height of one mark
}

// StampResponse is the stamping service response
type StampResponse struct {
	Data    *StampData `json:"data"`
	Message string     `json:"message,omitempty"`
}

// StampData carries the stamped document
type StampData struct {
	Doc      string `json:"doc"` // Base64 encoded stamped document
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

const (
	DefaultCanvasWidth  = 595.0
	DefaultCanvasHeight = 841.0
)
