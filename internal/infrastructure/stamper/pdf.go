package stamper

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// countPDFPages parses content as PDF and returns its page count
func countPDFPages(content []byte) (pages int, err error) {
	// the parser panics on some truncated inputs
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse pdf: %w", err)
	}

	pages = reader.NumPage()
	if pages <= 0 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return pages, nil
}
