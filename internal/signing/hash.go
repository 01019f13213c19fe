// Package signing holds the pure parts of the signature engine: document
// hashing, certificate derivation, ordering and completion arithmetic.
package signing

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// IntegrityResult is the outcome of comparing a document with its baseline hash
type IntegrityResult struct {
	Valid    bool   `json:"valid"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// ComputeDocumentHash returns the hex SHA-256 digest of the full content.
func ComputeDocumentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// VerifyIntegrity recomputes the digest of content and compares it with expectedHash.
func VerifyIntegrity(content []byte, expectedHash string) IntegrityResult {
	actual := ComputeDocumentHash(content)
	expected := strings.ToLower(strings.TrimSpace(expectedHash))

	return IntegrityResult{
		Valid:    equalHex(actual, expected),
		Expected: expected,
		Actual:   actual,
	}
}

func equalHex(a, b string) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
