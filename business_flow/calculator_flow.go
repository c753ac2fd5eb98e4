package businessflow

import (
	"context"
	"errors"

	"github.com/openrv/pricing-engine/app/dto"
	"github.com/openrv/pricing-engine/pricing"
	"github.com/openrv/pricing-engine/repository"
	"github.com/openrv/pricing-engine/utils"
)

// CalculatorFlow runs the base-rate financial model against the stored
// parameter set.
type CalculatorFlow interface {
	CalculateBaseRate(ctx context.Context, req *dto.CalculateBaseRateRequest) (*dto.CalculationResultResponse, error)
}

type CalculatorFlowImpl struct {
	configRepo repository.CalculationConfigRepository
}

func NewCalculatorFlow(configRepo repository.CalculationConfigRepository) CalculatorFlow {
	return &CalculatorFlowImpl{configRepo: configRepo}
}

// CalculateBaseRate computes the suggested base daily price for one vehicle.
// The stored parameters are snapshotted once, so a concurrent config edit
// never produces a mixed parameter set within one calculation.
func (f *CalculatorFlowImpl) CalculateBaseRate(ctx context.Context, req *dto.CalculateBaseRateRequest) (*dto.CalculationResultResponse, error) {
	if req.PurchasePrice <= 0 {
		return nil, NewBusinessError("CALC_PURCHASE_PRICE_INVALID", "Purchase price must be positive", ErrPurchasePriceInvalid)
	}
	purchaseDate, err := utils.ParseDate(req.PurchaseDate)
	if err != nil {
		return nil, NewBusinessError("CALC_PURCHASE_DATE_INVALID", "Purchase date is not a valid calendar date", ErrPurchaseDateInvalid)
	}

	overrides := overridesFromDTO(req.Overrides)
	if req.ConditionGrade != nil {
		grade := pricing.ConditionGrade(*req.ConditionGrade)
		if !grade.IsValid() {
			return nil, NewBusinessError("CALC_CONDITION_GRADE_INVALID", "Condition grade must be one of A, B, C, D", ErrConditionGradeInvalid)
		}
		overrides.ConditionGrade = &grade
	}

	snapshot, err := configSnapshot(ctx, f.configRepo)
	if err != nil {
		return nil, NewBusinessError("CALC_CONFIG_LOAD_FAILED", "Failed to load calculation configs", err)
	}

	result, err := pricing.Calculate(pricing.CalculationInput{
		PurchasePrice: req.PurchasePrice,
		PurchaseDate:  purchaseDate,
		Config:        snapshot,
		Overrides:     overrides,
	}, utils.UTCNow())
	if err != nil {
		return nil, mapCalculationError(err)
	}

	return toCalculationResultDTO(result), nil
}

// mapCalculationError translates calculator sentinels into business errors.
func mapCalculationError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrInvalidPurchasePrice):
		return NewBusinessError("CALC_PURCHASE_PRICE_INVALID", "Purchase price must be positive", ErrPurchasePriceInvalid)
	case errors.Is(err, pricing.ErrInvalidPurchaseDate):
		return NewBusinessError("CALC_PURCHASE_DATE_INVALID", "Purchase date must not be in the future", ErrPurchaseDateInvalid)
	case errors.Is(err, pricing.ErrInvalidGrade):
		return NewBusinessError("CALC_CONDITION_GRADE_INVALID", "Condition grade must be one of A, B, C, D", ErrConditionGradeInvalid)
	default:
		return NewBusinessError("CALC_PARAMS_INVALID", "Calculation parameters are invalid", err)
	}
}
