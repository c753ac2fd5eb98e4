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

// ConfigHandlerInterface defines the calculation config admin endpoints.
type ConfigHandlerInterface interface {
	ListConfigs(c fiber.Ctx) error
	UpdateConfig(c fiber.Ctx) error
	ResetConfig(c fiber.Ctx) error
	ResetAllConfigs(c fiber.Ctx) error
}

type ConfigHandler struct {
	flow      businessflow.CalculationConfigFlow
	validator *validator.Validate
}

func NewConfigHandler(flow businessflow.CalculationConfigFlow) ConfigHandlerInterface {
	return &ConfigHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *ConfigHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *ConfigHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// ListConfigs lists the calculator parameter rows.
// @Summary List Calculation Configs
// @Description List the editable calculator parameters, optionally filtered by category
// @Tags Calculation Configs
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {object} dto.APIResponse{data=dto.ListCalculationConfigsResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/pricing/configs [get]
func (h *ConfigHandler) ListConfigs(c fiber.Ctx) error {
	res, err := h.flow.ListConfigs(h.createRequestContext(c, "/api/v1/pricing/configs"), c.Query("category"))
	if err != nil {
		log.Println("List calculation configs failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List calculation configs failed", "CONFIG_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Calculation configs retrieved", res)
}

// UpdateConfig sets a new value for one parameter row.
// @Summary Update Calculation Config
// @Description Update one parameter value; values outside the documented range are rejected
// @Tags Calculation Configs
// @Accept json
// @Produce json
// @Param id path int true "Config ID"
// @Param request body dto.UpdateCalculationConfigRequest true "Update payload"
// @Success 200 {object} dto.APIResponse{data=dto.CalculationConfigResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Config not found"
// @Failure 500 {object} dto.APIResponse "Update failed"
// @Router /api/v1/pricing/configs/{id} [put]
func (h *ConfigHandler) UpdateConfig(c fiber.Ctx) error {
	id, err := h.configID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateCalculationConfigRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	res, err := h.flow.UpdateConfig(h.createRequestContext(c, "/api/v1/pricing/configs/:id"), id, &req)
	if err != nil {
		return h.configError(c, err, "Update calculation config failed", "CONFIG_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Calculation config updated", res)
}

// ResetConfig restores one parameter row to its default value.
// @Summary Reset Calculation Config
// @Description Restore one parameter row to its default value
// @Tags Calculation Configs
// @Produce json
// @Param id path int true "Config ID"
// @Success 200 {object} dto.APIResponse{data=dto.CalculationConfigResponse}
// @Failure 404 {object} dto.APIResponse "Config not found"
// @Failure 500 {object} dto.APIResponse "Reset failed"
// @Router /api/v1/pricing/configs/{id}/reset [post]
func (h *ConfigHandler) ResetConfig(c fiber.Ctx) error {
	id, err := h.configID(c)
	if err != nil {
		return err
	}

	res, err := h.flow.ResetConfig(h.createRequestContext(c, "/api/v1/pricing/configs/:id/reset"), id, c.Query("updated_by"))
	if err != nil {
		return h.configError(c, err, "Reset calculation config failed", "CONFIG_RESET_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Calculation config reset", res)
}

// ResetAllConfigs restores every parameter row to its default value.
// @Summary Reset All Calculation Configs
// @Description Restore every parameter row to its default value in one transaction
// @Tags Calculation Configs
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ResetAllConfigsResponse}
// @Failure 500 {object} dto.APIResponse "Reset failed"
// @Router /api/v1/pricing/configs/reset [post]
func (h *ConfigHandler) ResetAllConfigs(c fiber.Ctx) error {
	res, err := h.flow.ResetAllConfigs(h.createRequestContext(c, "/api/v1/pricing/configs/reset"), c.Query("updated_by"))
	if err != nil {
		log.Println("Reset all calculation configs failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Reset all calculation configs failed", "CONFIG_RESET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Calculation configs reset", res)
}

func (h *ConfigHandler) configID(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid config id", "INVALID_CONFIG_ID", nil)
	}
	return uint(id), nil
}

func (h *ConfigHandler) configError(c fiber.Ctx, err error, message, fallbackCode string) error {
	switch {
	case businessflow.IsConfigNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Calculation config not found", "CONFIG_NOT_FOUND", nil)
	case businessflow.IsConfigNotEditable(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Calculation config is not editable", "CONFIG_NOT_EDITABLE", nil)
	case businessflow.IsConfigValueOutOfRange(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "CONFIG_VALUE_OUT_OF_RANGE", nil)
	default:
		log.Println(message+":", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, message, fallbackCode, nil)
	}
}

func (h *ConfigHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *ConfigHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
