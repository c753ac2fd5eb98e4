package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/openrv/pricing-engine/app/dto"
	businessflow "github.com/openrv/pricing-engine/business_flow"
	"github.com/openrv/pricing-engine/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// defaultHistoryPageSize caps a history page when the caller sends no limit.
const defaultHistoryPageSize = 50

// HistoryHandlerInterface defines the price ledger endpoints.
type HistoryHandlerInterface interface {
	RecordPriceChange(c fiber.Ctx) error
	GetVehicleHistory(c fiber.Ctx) error
	GetHistoryStats(c fiber.Ctx) error
}

type HistoryHandler struct {
	flow      businessflow.PriceHistoryFlow
	validator *validator.Validate
}

func NewHistoryHandler(flow businessflow.PriceHistoryFlow) HistoryHandlerInterface {
	return &HistoryHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *HistoryHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *HistoryHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// RecordPriceChange appends a manual entry to the price ledger.
// @Summary Record Price Change
// @Description Append one manual entry to the append-only price ledger
// @Tags Price History
// @Accept json
// @Produce json
// @Param request body dto.RecordPriceChangeRequest true "Ledger entry payload"
// @Success 201 {object} dto.APIResponse{data=dto.PriceHistoryItem}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Record failed"
// @Router /api/v1/pricing/history [post]
func (h *HistoryHandler) RecordPriceChange(c fiber.Ctx) error {
	var req dto.RecordPriceChangeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	res, err := h.flow.RecordPriceChange(h.createRequestContext(c, "/api/v1/pricing/history"), &req)
	if err != nil {
		if businessflow.IsVehicleIDRequired(err) || businessflow.IsPriceNegative(err) ||
			businessflow.IsDateInvalid(err) || businessflow.IsChangeReasonInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), businessErrorCode(err, "HISTORY_INPUT_INVALID"), nil)
		}
		log.Println("Record price change failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Record price change failed", "HISTORY_RECORD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Price change recorded", res)
}

// GetVehicleHistory returns a vehicle's ledger, most recent first.
// @Summary Get Vehicle Price History
// @Description List a vehicle's ledger entries, most recent first
// @Tags Price History
// @Produce json
// @Param vehicleId path string true "Vehicle ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.APIResponse{data=dto.PriceHistoryResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Query failed"
// @Router /api/v1/pricing/history/{vehicleId} [get]
func (h *HistoryHandler) GetVehicleHistory(c fiber.Ctx) error {
	vehicleID := c.Params("vehicleId")
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	if limit <= 0 {
		limit = defaultHistoryPageSize
	}
	if offset < 0 {
		offset = 0
	}

	res, err := h.flow.QueryByVehicle(h.createRequestContext(c, "/api/v1/pricing/history/:vehicleId"), vehicleID, limit, offset)
	if err != nil {
		if businessflow.IsVehicleIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Vehicle id is required", "HISTORY_VEHICLE_REQUIRED", nil)
		}
		log.Println("Query price history failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Query price history failed", "HISTORY_QUERY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Price history retrieved", res)
}

// GetHistoryStats summarizes the whole ledger.
// @Summary Get Price History Stats
// @Description Ledger totals, the most recent changes and the average absolute price movement
// @Tags Price History
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.PriceHistoryStatsResponse}
// @Failure 500 {object} dto.APIResponse "Stats failed"
// @Router /api/v1/pricing/history/stats [get]
func (h *HistoryHandler) GetHistoryStats(c fiber.Ctx) error {
	res, err := h.flow.Stats(h.createRequestContext(c, "/api/v1/pricing/history/stats"))
	if err != nil {
		log.Println("Price history stats failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Price history stats failed", "HISTORY_STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Price history stats retrieved", res)
}

func (h *HistoryHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *HistoryHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
