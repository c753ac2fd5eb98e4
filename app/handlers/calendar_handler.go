package handlers

import (
	"context"
	"log"
	"time"

	"github.com/openrv/pricing-engine/app/dto"
	businessflow "github.com/openrv/pricing-engine/business_flow"
	"github.com/openrv/pricing-engine/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CalendarHandlerInterface defines the calendar and day-price endpoints.
type CalendarHandlerInterface interface {
	GetPriceCalendar(c fiber.Ctx) error
	GetDayPriceDetail(c fiber.Ctx) error
}

type CalendarHandler struct {
	flow      businessflow.CalendarFlow
	validator *validator.Validate
}

func NewCalendarHandler(flow businessflow.CalendarFlow) CalendarHandlerInterface {
	return &CalendarHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *CalendarHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *CalendarHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// GetPriceCalendar prices every day in a date range for a model at a store.
// @Summary Get Price Calendar
// @Description Price every day in the range for a model at a store; failed days carry an error note
// @Tags Pricing Calendar
// @Produce json
// @Param model_id query string true "Model ID"
// @Param store_id query string true "Store ID"
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.PriceCalendarResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Model or store not found"
// @Failure 500 {object} dto.APIResponse "Calendar generation failed"
// @Router /api/v1/pricing/calendar [get]
func (h *CalendarHandler) GetPriceCalendar(c fiber.Ctx) error {
	var req dto.PriceCalendarRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	res, err := h.flow.GetPriceCalendar(h.createRequestContext(c, "/api/v1/pricing/calendar"), &req)
	if err != nil {
		return h.calendarError(c, err, "Price calendar generation failed", "CALENDAR_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Price calendar generated", res)
}

// GetDayPriceDetail resolves one day's price with its factor trail.
// @Summary Get Day Price Detail
// @Description Resolve one day's price for a model in a city with the full factor trail
// @Tags Pricing Calendar
// @Produce json
// @Param model_id query string true "Model ID"
// @Param city_id query string true "City ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.DayPriceDetailResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Model not found"
// @Failure 500 {object} dto.APIResponse "Day price resolution failed"
// @Router /api/v1/pricing/day-price [get]
func (h *CalendarHandler) GetDayPriceDetail(c fiber.Ctx) error {
	var req dto.DayPriceDetailRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	res, err := h.flow.GetDayPriceDetail(h.createRequestContext(c, "/api/v1/pricing/day-price"), &req)
	if err != nil {
		return h.calendarError(c, err, "Day price resolution failed", "DAY_PRICE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Day price resolved", res)
}

func (h *CalendarHandler) calendarError(c fiber.Ctx, err error, message, fallbackCode string) error {
	switch {
	case businessflow.IsModelNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Model not found", "MODEL_NOT_FOUND", nil)
	case businessflow.IsStoreNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Store not found", "STORE_NOT_FOUND", nil)
	case businessflow.IsDateRangeInvalid(err), businessflow.IsDateInvalid(err), businessflow.IsDateRangeTooLarge(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), businessErrorCode(err, "CALENDAR_RANGE_INVALID"), nil)
	default:
		log.Println(message+":", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, message, fallbackCode, nil)
	}
}

func (h *CalendarHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 60*time.Second)
}

func (h *CalendarHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
