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

// CalculatorHandlerInterface defines the base-rate calculation endpoint.
type CalculatorHandlerInterface interface {
	CalculateBaseRate(c fiber.Ctx) error
}

type CalculatorHandler struct {
	flow      businessflow.CalculatorFlow
	validator *validator.Validate
}

func NewCalculatorHandler(flow businessflow.CalculatorFlow) CalculatorHandlerInterface {
	return &CalculatorHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *CalculatorHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *CalculatorHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CalculateBaseRate runs the base-rate financial model for one vehicle.
// @Summary Calculate Base Daily Rate
// @Description Compute the suggested base daily price from purchase data and the stored financial parameters
// @Tags Pricing Calculator
// @Accept json
// @Produce json
// @Param request body dto.CalculateBaseRateRequest true "Calculation payload"
// @Success 200 {object} dto.APIResponse{data=dto.CalculationResultResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Calculation failed"
// @Router /api/v1/pricing/calculate [post]
func (h *CalculatorHandler) CalculateBaseRate(c fiber.Ctx) error {
	var req dto.CalculateBaseRateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	res, err := h.flow.CalculateBaseRate(h.createRequestContext(c, "/api/v1/pricing/calculate"), &req)
	middleware.ObserveCalculation(err == nil)
	if err != nil {
		if businessflow.IsPurchasePriceInvalid(err) || businessflow.IsPurchaseDateInvalid(err) || businessflow.IsConditionGradeInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), businessErrorCode(err, "CALC_INPUT_INVALID"), nil)
		}
		log.Println("Base rate calculation failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Base rate calculation failed", "CALC_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Base rate calculated", res)
}

func (h *CalculatorHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *CalculatorHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
