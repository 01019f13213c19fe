package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"signflow/internal/domain/entity"
	"signflow/internal/usecase"
)

// Identity headers set by the upstream auth gateway
const (
	HeaderCompanyID = "X-Company-ID"
	HeaderUserID    = "X-User-ID"
)

type SignatureHandler struct {
	usecase usecase.SignatureUsecase
	logger  *zap.Logger
}

func NewSignatureHandler(usecase usecase.SignatureUsecase, logger *zap.Logger) *SignatureHandler {
	return &SignatureHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func companyID(c *fiber.Ctx) (string, error) {
	id := c.Get(HeaderCompanyID)
	if id == "" {
		return "", entity.NewValidationError("%s header is required", HeaderCompanyID)
	}
	return id, nil
}

func userID(c *fiber.Ctx) (string, error) {
	id := c.Get(HeaderUserID)
	if id == "" {
		return "", entity.NewValidationError("%s header is required", HeaderUserID)
	}
	return id, nil
}

// CreateRequest godoc
// @Summary Create signature request
// @Description Snapshot a document hash and invite signers
// @Tags signature
// @Accept json
// @Produce json
// @Param X-Company-ID header string true "Company id"
// @Param X-User-ID header string true "Requesting user id"
// @Param request body entity.CreateRequestInput true "Signature request"
// @Success 201 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 503 {object} entity.APIResponse
// @Router /api/v1/signature-requests [post]
func (h *SignatureHandler) CreateRequest(c *fiber.Ctx) error {
	ctx := c.UserContext()

	tenantID, err := companyID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	createdBy, err := userID(c)
	if err != nil {
		return h.respondError(c, err)
	}

	var input entity.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		h.logger.Warn("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
		)
	}
	input.TenantID = tenantID
	input.CreatedBy = createdBy

	req, err := h.usecase.CreateRequest(ctx, &input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(req, "Signature request created"),
	)
}

// ListRequests godoc
// @Summary List signature requests
// @Tags signature
// @Produce json
// @Param X-Company-ID header string true "Company id"
// @Param state query string false "pending, in_progress, completed or cancelled"
// @Param document_id query string false "Document id"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} entity.APIResponse
// @Router /api/v1/signature-requests [get]
func (h *SignatureHandler) ListRequests(c *fiber.Ctx) error {
	ctx := c.UserContext()

	tenantID, err := companyID(c)
	if err != nil {
		return h.respondError(c, err)
	}

	filter := entity.RequestFilter{
		State:      entity.RequestState(c.Query("state")),
		DocumentID: c.Query("document_id"),
		Limit:      c.QueryInt("limit", 0),
		Offset:     c.QueryInt("offset", 0),
	}

	items, err := h.usecase.ListRequests(ctx, tenantID, filter)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(entity.ListResponse{
		Items: items,
		Meta: entity.ListMeta{
			Limit:  filter.Limit,
			Offset: filter.Offset,
			Count:  len(items),
		},
	}, "Signature requests retrieved successfully"))
}

// GetRequestStatus godoc
// @Summary Get signature request status
// @Tags signature
// @Produce json
// @Param X-Company-ID header string true "Company id"
// @Param id path string true "Request id"
// @Success 200 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/signature-requests/{id} [get]
func (h *SignatureHandler) GetRequestStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()

	tenantID, err := companyID(c)
	if err != nil {
		return h.respondError(c, err)
	}

	status, err := h.usecase.GetRequestStatus(ctx, c.Params("id"), tenantID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(status, "Signature request retrieved successfully"))
}

// CancelRequest godoc
// @Summary Cancel signature request
// @Tags signature
// @Produce json
// @Param X-Company-ID header string true "Company id"
// @Param X-User-ID header string true "Cancelling user id"
// @Param id path string true "Request id"
// @Success 200 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Router /api/v1/signature-requests/{id}/cancel [post]
func (h *SignatureHandler) CancelRequest(c *fiber.Ctx) error {
	ctx := c.UserContext()

	tenantID, err := companyID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	cancelledBy, err := userID(c)
	if err != nil {
		return h.respondError(c, err)
	}

	req, err := h.usecase.CancelRequest(ctx, c.Params("id"), tenantID, cancelledBy)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(req, "Signature request cancelled"))
}

// RetryArtifact godoc
// @Summary Regenerate the signed document
// @Description Stamps and stores the final document of a completed request when it is missing
// @Tags signature
// @Produce json
// @Param X-Company-ID header string true "Company id"
// @Param id path string true "Request id"
// @Success 200 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Failure 503 {object} entity.APIResponse
// @Router /api/v1/signature-requests/{id}/artifact [post]
func (h *SignatureHandler) RetryArtifact(c *fiber.Ctx) error {
	ctx := c.UserContext()

	tenantID, err := companyID(c)
	if err != nil {
		return h.respondError(c, err)
	}

	status, err := h.usecase.RetryArtifact(ctx, c.Params("id"), tenantID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(status, "Signed document available"))
}

// Sign godoc
// @Summary Sign as one signer
// @Tags signature
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Signer id"
// @Param id path string true "Signer record id"
// @Param request body entity.SignInput false "Captured data"
// @Success 200 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Failure 422 {object} entity.APIResponse
// @Router /api/v1/signers/{id}/sign [post]
func (h *SignatureHandler) Sign(c *fiber.Ctx) error {
	ctx := c.UserContext()

	signerID, err := userID(c)
	if err != nil {
		return h.respondError(c, err)
	}

	var input entity.SignInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			h.logger.Warn("Failed to parse request body", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(
				entity.NewErrorResponse("BAD_REQUEST", "Invalid request body"),
			)
		}
	}
	input.SignerRecordID = c.Params("id")
	input.SignerID = signerID

	// server-observed values win over anything the client sent
	input.CapturedData.IP = c.IP()
	input.CapturedData.UserAgent = c.Get(fiber.HeaderUserAgent)

	result, err := h.usecase.Sign(ctx, &input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(result, "Document signed successfully"))
}

// VerifySignature godoc
// @Summary Verify a signer's certificate
// @Tags signature
// @Produce json
// @Param X-Company-ID header string true "Company id"
// @Param id path string true "Request id"
// @Param signerId path string true "Signer record id"
// @Success 200 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 409 {object} entity.APIResponse
// @Router /api/v1/signature-requests/{id}/signers/{signerId}/verify [get]
func (h *SignatureHandler) VerifySignature(c *fiber.Ctx) error {
	ctx := c.UserContext()

	tenantID, err := companyID(c)
	if err != nil {
		return h.respondError(c, err)
	}

	result, err := h.usecase.VerifySignature(ctx, c.Params("id"), c.Params("signerId"), tenantID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(result, "Signature verified"))
}
