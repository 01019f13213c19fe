package entity

import (
	"errors"
	"fmt"
)

// Error kinds returned to the API layer
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrIntegrityViolation = errors.New("integrity violation")
	ErrValidation         = errors.New("validation error")
	ErrDependencyFailure  = errors.New("dependency failure")
)

type kindError struct {
	kind    error
	message string
}

func (e *kindError) Error() string { return e.message }
func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, message string) error {
	return &kindError{kind: kind, message: message}
}

var (
	ErrDocumentNotFound = newKindError(ErrNotFound, "document not found")
	ErrRequestNotFound  = newKindError(ErrNotFound, "signature request not found")
	ErrSignerNotFound   = newKindError(ErrNotFound, "signer record not found")

	ErrAlreadySigned    = newKindError(ErrConflict, "signer has already signed")
	ErrNotSigned        = newKindError(ErrConflict, "signer has not signed yet")
	ErrRequestCancelled = newKindError(ErrConflict, "signature request has been cancelled")
	ErrRequestClosed    = newKindError(ErrConflict, "signature request is already closed")
	ErrRequestNotDone   = newKindError(ErrConflict, "signature request is not completed")
	ErrArtifactPending  = newKindError(ErrConflict, "signed document is still being generated")
	ErrOutOfOrder       = newKindError(ErrConflict, "must wait for earlier signers")

	ErrDocumentModified = newKindError(ErrIntegrityViolation, "document was modified after the signature request was created")

	ErrUnsupportedDocument = newKindError(ErrDependencyFailure, "document type cannot be stamped")
)

// NewValidationError builds an ErrValidation with a readable message
func NewValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// WrapError preserves the error kind with operation context
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
