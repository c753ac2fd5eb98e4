package handlers

import (
	"context"
	"log"
	"time"

	"github.com/openrv/pricing-engine/app/dto"
	"github.com/openrv/pricing-engine/app/middleware"
	businessflow "github.com/openrv/pricing-engine/business_flow"
	"github.com/openrv/pricing-engine/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AdjustmentHandlerInterface defines the batch adjustment endpoints.
type AdjustmentHandlerInterface interface {
	PreviewBatchAdjustment(c fiber.Ctx) error
	CommitBatchAdjustment(c fiber.Ctx) error
}

type AdjustmentHandler struct {
	flow      businessflow.AdjustmentFlow
	validator *validator.Validate
}

func NewAdjustmentHandler(flow businessflow.AdjustmentFlow) AdjustmentHandlerInterface {
	return &AdjustmentHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *AdjustmentHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *AdjustmentHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// PreviewBatchAdjustment dry-runs a bulk adjustment over a set of dates.
// @Summary Preview Batch Adjustment
// @Description Compute the old-to-new delta for every requested date without persisting anything
// @Tags Pricing Adjustments
// @Accept json
// @Produce json
// @Param request body dto.BatchAdjustmentRequest true "Adjustment payload"
// @Success 200 {object} dto.APIResponse{data=dto.BatchAdjustmentPreviewResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Model not found"
// @Failure 500 {object} dto.APIResponse "Preview failed"
// @Router /api/v1/pricing/adjustments/preview [post]
func (h *AdjustmentHandler) PreviewBatchAdjustment(c fiber.Ctx) error {
	req, err := h.bindAdjustment(c)
	if err != nil {
		return err
	}

	res, err := h.flow.PreviewBatchAdjustment(h.createRequestContext(c, "/api/v1/pricing/adjustments/preview"), req)
	if err != nil {
		return h.adjustmentError(c, err, "Batch adjustment preview failed", "ADJUSTMENT_PREVIEW_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Batch adjustment previewed", res)
}

// CommitBatchAdjustment applies a bulk adjustment and records it in the ledger.
// @Summary Commit Batch Adjustment
// @Description Apply the adjustment and append one ledger record per affected date
// @Tags Pricing Adjustments
// @Accept json
// @Produce json
// @Param request body dto.BatchAdjustmentRequest true "Adjustment payload"
// @Success 200 {object} dto.APIResponse{data=dto.BatchAdjustmentCommitResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Model not found"
// @Failure 500 {object} dto.APIResponse "Commit failed"
// @Router /api/v1/pricing/adjustments/commit [post]
func (h *AdjustmentHandler) CommitBatchAdjustment(c fiber.Ctx) error {
	req, err := h.bindAdjustment(c)
	if err != nil {
		return err
	}

	res, err := h.flow.CommitBatchAdjustment(h.createRequestContext(c, "/api/v1/pricing/adjustments/commit"), req)
	if err != nil {
		return h.adjustmentError(c, err, "Batch adjustment commit failed", "ADJUSTMENT_COMMIT_FAILED")
	}
	middleware.ObserveLedgerWrites(res.CommittedCount)

	return h.SuccessResponse(c, fiber.StatusOK, "Batch adjustment committed", res)
}

func (h *AdjustmentHandler) bindAdjustment(c fiber.Ctx) (*dto.BatchAdjustmentRequest, error) {
	var req dto.BatchAdjustmentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return nil, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}
	return &req, nil
}

func (h *AdjustmentHandler) adjustmentError(c fiber.Ctx, err error, message, fallbackCode string) error {
	switch {
	case businessflow.IsModelNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Model not found", "MODEL_NOT_FOUND", nil)
	case businessflow.IsVehicleIDRequired(err),
		businessflow.IsAdjustReasonRequired(err),
		businessflow.IsNoDatesRequested(err),
		businessflow.IsAdjustTypeInvalid(err),
		businessflow.IsFactorConfigRequired(err),
		businessflow.IsOverridePriceRequired(err),
		businessflow.IsDateInvalid(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), businessErrorCode(err, "ADJUSTMENT_INVALID"), nil)
	default:
		log.Println(message+":", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, message, fallbackCode, nil)
	}
}

func (h *AdjustmentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 60*time.Second)
}

func (h *AdjustmentHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
