// Package businessflow contains the business logic for the pricing engine.
package businessflow

import (
	"context"
	"time"

	"github.com/openrv/pricing-engine/app/dto"
	"github.com/openrv/pricing-engine/models"
	"github.com/openrv/pricing-engine/pricing"
	"github.com/openrv/pricing-engine/repository"
	"github.com/openrv/pricing-engine/utils"
)

// configSnapshot reads the current config rows into a consistent value
// snapshot for one calculation. Percent-unit rows are converted to fractions;
// the investment period stays in years. Missing rows fall through to the
// built-in defaults inside the calculator.
func configSnapshot(ctx context.Context, repo repository.CalculationConfigRepository) (pricing.ConfigSnapshot, error) {
	rows, err := repo.ListAll(ctx)
	if err != nil {
		return pricing.ConfigSnapshot{}, err
	}

	var snap pricing.ConfigSnapshot
	for _, row := range rows {
		switch row.ConfigKey {
		case models.ConfigKeyTargetAnnualReturn:
			snap.TargetAnnualReturn = utils.ToPtr(row.ConfigValue / 100)
		case models.ConfigKeyInvestmentPeriod:
			snap.InvestmentPeriod = utils.ToPtr(row.ConfigValue)
		case models.ConfigKeyResidualValueRate:
			snap.ResidualValueRate = utils.ToPtr(row.ConfigValue / 100)
		case models.ConfigKeyAnnualOperatingRate:
			snap.AnnualOperatingRate = utils.ToPtr(row.ConfigValue / 100)
		case models.ConfigKeyOperatingCostRate:
			snap.OperatingCostRate = utils.ToPtr(row.ConfigValue / 100)
		}
	}
	return snap, nil
}

// overridesFromDTO converts percent-unit API overrides into the fraction
// units of the calculator.
func overridesFromDTO(ov *dto.CalculationOverrides) pricing.Overrides {
	if ov == nil {
		return pricing.Overrides{}
	}
	frac := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		return utils.ToPtr(*p / 100)
	}
	return pricing.Overrides{
		TargetAnnualReturn:  frac(ov.TargetAnnualReturn),
		InvestmentPeriod:    ov.InvestmentPeriod,
		ResidualValueRate:   frac(ov.ResidualValueRate),
		AnnualOperatingRate: frac(ov.AnnualOperatingRate),
		OperatingCostRate:   frac(ov.OperatingCostRate),
	}
}

// toCalculationResultDTO maps a calculator result to its API shape,
// converting the echoed parameters back to percent units.
func toCalculationResultDTO(res *pricing.CalculationResult) *dto.CalculationResultResponse {
	return &dto.CalculationResultResponse{
		SuggestedPrice: res.SuggestedPrice,
		BaseDailyPrice: res.BaseDailyPrice,
		AgeMonths:      res.AgeMonths,
		ConditionGrade: string(res.Grade),
		GradeLabel:     res.GradeLabel,
		Breakdown: dto.BreakdownDTO{
			TotalReturn:     res.Breakdown.TotalReturn,
			ResidualValue:   res.Breakdown.ResidualValue,
			RequiredRevenue: res.Breakdown.RequiredRevenue,
			GrossRevenue:    res.Breakdown.GrossRevenue,
			AnnualRevenue:   res.Breakdown.AnnualRevenue,
			OperatingDays:   res.Breakdown.OperatingDays,
			BaseDailyPrice:  res.Breakdown.BaseDailyPrice,
			ConditionFactor: res.Breakdown.ConditionFactor,
		},
		Params: dto.ParamsUsedDTO{
			TargetAnnualReturn:  res.Params.TargetAnnualReturn * 100,
			InvestmentPeriod:    res.Params.InvestmentPeriod,
			ResidualValueRate:   res.Params.ResidualValueRate * 100,
			AnnualOperatingRate: res.Params.AnnualOperatingRate * 100,
			OperatingCostRate:   res.Params.OperatingCostRate * 100,
		},
		Warnings:    res.Warnings,
		Explanation: res.Explanation,
	}
}

// snapshotFromDTO converts an API parameter snapshot to its storage shape.
func snapshotFromDTO(s *dto.CalculationSnapshotDTO) *models.CalculationSnapshot {
	if s == nil {
		return nil
	}
	snap := models.CalculationSnapshot(*s)
	return &snap
}

// snapshotToDTO converts a stored parameter snapshot to its API shape.
func snapshotToDTO(s *models.CalculationSnapshot) *dto.CalculationSnapshotDTO {
	if s == nil {
		return nil
	}
	snap := dto.CalculationSnapshotDTO(*s)
	return &snap
}

// toPriceHistoryItem maps a ledger record to its API shape.
func toPriceHistoryItem(rec *models.PriceHistoryRecord) dto.PriceHistoryItem {
	item := dto.PriceHistoryItem{
		UUID:         rec.UUID.String(),
		VehicleID:    rec.VehicleID,
		PriceDate:    utils.FormatDate(rec.PriceDate),
		OldPrice:     rec.OldPrice,
		NewPrice:     rec.NewPrice,
		PriceChange:  rec.PriceChange(),
		ChangeReason: string(rec.ChangeReason),
		PriceSource:  string(rec.PriceSource),
		OperatorID:   rec.OperatorID,
		CalcSnapshot: snapshotToDTO(rec.CalcSnapshot),
		CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	if rec.Remark != nil {
		item.ChangeReasonText = *rec.Remark
	}
	if rec.OldPrice != nil && *rec.OldPrice > 0 {
		pct := (rec.NewPrice - *rec.OldPrice) / *rec.OldPrice * 100
		item.PriceChangePct = &pct
	}
	return item
}
