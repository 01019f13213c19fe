package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"signflow/internal/domain/entity"
	"signflow/internal/domain/repository"
)

const maxLogLimit = 200

type LogHandler struct {
	logRepo repository.APILogRepository
	logger  *zap.Logger
}

func NewLogHandler(logRepo repository.APILogRepository, logger *zap.Logger) *LogHandler {
	return &LogHandler{logRepo: logRepo, logger: logger}
}

// GetLogs returns the latest stamping service calls
func (h *LogHandler) GetLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	logs, err := h.logRepo.FindAll(c.UserContext(), limit)
	if err != nil {
		h.logger.Error("Failed to load api logs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse(CodeInternal, "failed to load logs"),
		)
	}

	return c.JSON(entity.NewSuccessResponse(logs, "Logs retrieved successfully"))
}

// SearchLogs returns the stamping calls made for one signature request
func (h *LogHandler) SearchLogs(c *fiber.Ctx) error {
	requestID := c.Query("request_id")
	if requestID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse(CodeBadRequest, "request_id parameter required"),
		)
	}

	limit := c.QueryInt("limit", 50)
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	logs, err := h.logRepo.FindByRequest(c.UserContext(), requestID, limit)
	if err != nil {
		h.logger.Error("Failed to search api logs",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse(CodeInternal, "failed to load logs"),
		)
	}

	return c.JSON(entity.NewSuccessResponse(logs, "Logs retrieved successfully"))
}
