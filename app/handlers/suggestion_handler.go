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

// SuggestionHandlerInterface defines the pricing suggestion endpoints.
type SuggestionHandlerInterface interface {
	GetSuggestion(c fiber.Ctx) error
	BatchSuggestions(c fiber.Ctx) error
}

type SuggestionHandler struct {
	flow      businessflow.SuggestionFlow
	validator *validator.Validate
}

func NewSuggestionHandler(flow businessflow.SuggestionFlow) SuggestionHandlerInterface {
	return &SuggestionHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *SuggestionHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *SuggestionHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// GetSuggestion runs the pricing strategies for one vehicle.
// @Summary Get Pricing Suggestion
// @Description Run every registered strategy (or one named strategy) for a vehicle
// @Tags Pricing Suggestions
// @Produce json
// @Param vehicleId path string true "Vehicle ID"
// @Param strategy query string false "Run only this strategy"
// @Success 200 {object} dto.APIResponse{data=dto.PricingSuggestionResponse}
// @Failure 400 {object} dto.APIResponse "Unknown strategy"
// @Failure 404 {object} dto.APIResponse "Vehicle not found"
// @Failure 500 {object} dto.APIResponse "Suggestion failed"
// @Router /api/v1/pricing/suggestions/{vehicleId} [get]
func (h *SuggestionHandler) GetSuggestion(c fiber.Ctx) error {
	vehicleID := c.Params("vehicleId")
	strategyID := c.Query("strategy")

	res, err := h.flow.GetSuggestion(h.createRequestContext(c, "/api/v1/pricing/suggestions/:vehicleId"), vehicleID, strategyID)
	if err != nil {
		switch {
		case businessflow.IsVehicleNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Vehicle not found", "VEHICLE_NOT_FOUND", nil)
		case businessflow.IsVehicleIDRequired(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Vehicle id is required", "SUGGESTION_VEHICLE_REQUIRED", nil)
		case businessflow.IsStrategyUnknown(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "SUGGESTION_STRATEGY_UNKNOWN", nil)
		default:
			log.Println("Pricing suggestion failed:", err)
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Pricing suggestion failed", "SUGGESTION_FAILED", nil)
		}
	}

	for _, candidate := range res.Candidates {
		if candidate.Error == "" {
			middleware.ObserveSuggestion(candidate.StrategyID)
		}
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Pricing suggestion generated", res)
}

// BatchSuggestions runs suggestions for many vehicles concurrently.
// @Summary Batch Pricing Suggestions
// @Description Run suggestions for up to 200 vehicles over a bounded worker pool
// @Tags Pricing Suggestions
// @Accept json
// @Produce json
// @Param request body dto.BatchSuggestionsRequest true "Vehicle ID list"
// @Success 200 {object} dto.APIResponse{data=dto.BatchSuggestionsResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Batch failed"
// @Router /api/v1/pricing/suggestions/batch [post]
func (h *SuggestionHandler) BatchSuggestions(c fiber.Ctx) error {
	var req dto.BatchSuggestionsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	res, err := h.flow.BatchSuggestions(h.createRequestContext(c, "/api/v1/pricing/suggestions/batch"), &req)
	if err != nil {
		log.Println("Batch pricing suggestions failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Batch pricing suggestions failed", "SUGGESTION_BATCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Batch pricing suggestions generated", res)
}

func (h *SuggestionHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 60*time.Second)
}

func (h *SuggestionHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
