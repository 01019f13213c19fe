package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"signflow/internal/domain/entity"
)

// Error codes returned in entity.APIError
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeDocumentModified  = "DOCUMENT_MODIFIED"
	CodeDependencyFailure = "DEPENDENCY_FAILURE"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorStatus maps an error kind to its HTTP status and response code
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return fiber.StatusBadRequest, CodeBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return fiber.StatusNotFound, CodeNotFound
	case errors.Is(err, entity.ErrConflict):
		return fiber.StatusConflict, CodeConflict
	case errors.Is(err, entity.ErrIntegrityViolation):
		return fiber.StatusUnprocessableEntity, CodeDocumentModified
	case errors.Is(err, entity.ErrDependencyFailure):
		return fiber.StatusServiceUnavailable, CodeDependencyFailure
	default:
		return fiber.StatusInternalServerError, CodeInternal
	}
}

func (h *SignatureHandler) respondError(c *fiber.Ctx, err error) error {
	status, code := ErrorStatus(err)

	message := err.Error()
	switch status {
	case fiber.StatusInternalServerError:
		h.logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		message = "internal server error"
	case fiber.StatusServiceUnavailable:
		h.logger.Warn("Dependency unavailable",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		message = "a required service is temporarily unavailable, please retry"
	case fiber.StatusUnprocessableEntity:
		message = entity.ErrDocumentModified.Error()
	}

	return c.Status(status).JSON(entity.NewErrorResponse(code, message))
}
