package businessflow

import (
	"context"
	"math"
	"time"

	"github.com/openrv/pricing-engine/app/dto"
	"github.com/openrv/pricing-engine/app/services"
	"github.com/openrv/pricing-engine/config"
	"github.com/openrv/pricing-engine/models"
	"github.com/openrv/pricing-engine/repository"
	"github.com/openrv/pricing-engine/utils"

	"gorm.io/gorm"
)

// AdjustmentFlow runs bulk what-if price adjustments over a set of dates.
// Preview is a pure dry run; commit appends one ledger record per affected
// date in a single transaction.
type AdjustmentFlow interface {
	PreviewBatchAdjustment(ctx context.Context, req *dto.BatchAdjustmentRequest) (*dto.BatchAdjustmentPreviewResponse, error)
	CommitBatchAdjustment(ctx context.Context, req *dto.BatchAdjustmentRequest) (*dto.BatchAdjustmentCommitResponse, error)
}

type AdjustmentFlowImpl struct {
	resolver    dayPriceResolver
	historyRepo repository.PriceHistoryRepository
	db          *gorm.DB
}

func NewAdjustmentFlow(
	configRepo repository.CalculationConfigRepository,
	modelCatalog services.ModelCatalog,
	cityDemand services.CityDemandSource,
	holidays services.HolidayCalendar,
	customRules services.CustomRuleSource,
	historyRepo repository.PriceHistoryRepository,
	db *gorm.DB,
	cfg *config.ProductionConfig,
) AdjustmentFlow {
	return &AdjustmentFlowImpl{
		resolver: dayPriceResolver{
			configRepo:   configRepo,
			modelCatalog: modelCatalog,
			cityDemand:   cityDemand,
			holidays:     holidays,
			customRules:  customRules,
			cfg:          cfg,
		},
		historyRepo: historyRepo,
		db:          db,
	}
}

// adjustedDate is one date's resolved old and new price, or its failure.
type adjustedDate struct {
	date       time.Time
	oldPrice   float64
	newPrice   float64
	cityFactor float64
	timeFactor float64
	err        error
}

// PreviewBatchAdjustment computes the old-to-new delta for every requested
// date without persisting anything. Dates that fail to resolve are reported
// with an error note and excluded from the affected set.
func (f *AdjustmentFlowImpl) PreviewBatchAdjustment(ctx context.Context, req *dto.BatchAdjustmentRequest) (*dto.BatchAdjustmentPreviewResponse, error) {
	resolved, _, err := f.resolveAdjustment(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &dto.BatchAdjustmentPreviewResponse{
		AffectedDates: make([]string, 0, len(resolved)),
		PreviewData:   make([]dto.AdjustmentPreviewItem, 0, len(resolved)),
	}
	for _, d := range resolved {
		item := dto.AdjustmentPreviewItem{Date: utils.FormatDate(d.date)}
		if d.err != nil {
			item.ErrorNote = d.err.Error()
			resp.PreviewData = append(resp.PreviewData, item)
			continue
		}
		item.OldPrice = d.oldPrice
		item.NewPrice = d.newPrice
		item.ChangeAmount = d.newPrice - d.oldPrice
		if d.oldPrice > 0 {
			item.ChangePercentage = math.Round((d.newPrice-d.oldPrice)/d.oldPrice*1000) / 10
		}
		resp.PreviewData = append(resp.PreviewData, item)
		resp.AffectedDates = append(resp.AffectedDates, item.Date)
	}
	resp.AffectedCount = len(resp.AffectedDates)
	return resp, nil
}

// CommitBatchAdjustment applies the adjustment and appends one ledger record
// per successfully resolved date, all inside one transaction. Failed dates are
// skipped; they never abort the rest of the batch.
func (f *AdjustmentFlowImpl) CommitBatchAdjustment(ctx context.Context, req *dto.BatchAdjustmentRequest) (*dto.BatchAdjustmentCommitResponse, error) {
	resolved, snapshot, err := f.resolveAdjustment(ctx, req)
	if err != nil {
		return nil, err
	}

	records, err := f.ledgerRecords(req, resolved, snapshot)
	if err != nil {
		return nil, err
	}

	if len(records) > 0 {
		err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
			return f.historyRepo.SaveBatch(txCtx, records)
		})
		if err != nil {
			return nil, NewBusinessError("ADJUSTMENT_COMMIT_FAILED", "Failed to write ledger records", err)
		}
	}

	return &dto.BatchAdjustmentCommitResponse{CommittedCount: len(records)}, nil
}

// resolveAdjustment validates the request and computes the per-date deltas
// shared by preview and commit. The returned snapshot carries the run-level
// parameters behind the prices; per-date factors are filled in when records
// are built.
func (f *AdjustmentFlowImpl) resolveAdjustment(ctx context.Context, req *dto.BatchAdjustmentRequest) ([]adjustedDate, *models.CalculationSnapshot, error) {
	if req.VehicleID == "" {
		return nil, nil, NewBusinessError("ADJUSTMENT_VEHICLE_REQUIRED", "Vehicle id is required", ErrVehicleIDRequired)
	}
	if req.Reason == "" {
		return nil, nil, NewBusinessError("ADJUSTMENT_REASON_REQUIRED", "Adjustment reason is required", ErrAdjustReasonRequired)
	}
	if len(req.Dates) == 0 {
		return nil, nil, NewBusinessError("ADJUSTMENT_NO_DATES", "At least one date is required", ErrNoDatesRequested)
	}
	switch req.AdjustType {
	case dto.AdjustModeAddFactor:
		if req.FactorType == "" || req.FactorValue == nil {
			return nil, nil, NewBusinessError("ADJUSTMENT_FACTOR_REQUIRED", "Factor type and value are required for add_factor", ErrFactorConfigRequired)
		}
	case dto.AdjustModeOverridePrice:
		if req.OverridePrice == nil {
			return nil, nil, NewBusinessError("ADJUSTMENT_OVERRIDE_REQUIRED", "Override price is required for override_price", ErrOverridePriceRequired)
		}
	default:
		return nil, nil, NewBusinessError("ADJUSTMENT_TYPE_INVALID", "Adjust type must be add_factor or override_price", ErrAdjustTypeInvalid)
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, s := range req.Dates {
		d, err := utils.ParseDate(s)
		if err != nil {
			return nil, nil, NewBusinessErrorf("ADJUSTMENT_DATE_INVALID", "Date %q is not a valid calendar date", ErrDateInvalid, s)
		}
		dates = append(dates, d)
	}

	model, err := f.resolver.lookupModel(ctx, req.ModelID)
	if err != nil {
		return nil, nil, err
	}
	base, err := f.resolver.baseRateForModel(ctx, model)
	if err != nil {
		return nil, nil, err
	}
	snapshot := &models.CalculationSnapshot{
		PurchasePrice:       model.PurchasePrice,
		ConditionGrade:      string(base.Grade),
		ConditionFactor:     base.Breakdown.ConditionFactor,
		TargetAnnualReturn:  base.Params.TargetAnnualReturn,
		InvestmentPeriod:    base.Params.InvestmentPeriod,
		ResidualValueRate:   base.Params.ResidualValueRate,
		AnnualOperatingRate: base.Params.AnnualOperatingRate,
		OperatingCostRate:   base.Params.OperatingCostRate,
	}

	from, to := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}
	holidays, rules := f.resolver.factorsForRange(ctx, from, to)

	resolved := make([]adjustedDate, 0, len(dates))
	for _, d := range dates {
		quote, err := f.resolver.effectiveDayPrice(ctx, base.SuggestedPrice, req.CityID, d, holidays, rules)
		if err != nil {
			resolved = append(resolved, adjustedDate{date: d, err: err})
			continue
		}
		resolved = append(resolved, adjustedDate{
			date:       d,
			oldPrice:   quote.price,
			newPrice:   applyAdjustment(quote.price, req),
			cityFactor: quote.cityFactor,
			timeFactor: quote.timeFactor,
		})
	}
	return resolved, snapshot, nil
}

// ledgerRecords builds one ledger record per successfully resolved date. Each
// record carries the parameter snapshot that produced its price so the ledger
// can explain the value without replaying config state.
func (f *AdjustmentFlowImpl) ledgerRecords(req *dto.BatchAdjustmentRequest, resolved []adjustedDate, snapshot *models.CalculationSnapshot) ([]*models.PriceHistoryRecord, error) {
	records := make([]*models.PriceHistoryRecord, 0, len(resolved))
	now := utils.UTCNow()
	for _, d := range resolved {
		if d.err != nil {
			continue
		}
		old := d.oldPrice
		remark := req.Reason
		snap := *snapshot
		snap.CityFactor = d.cityFactor
		snap.TimeFactor = d.timeFactor
		rec := &models.PriceHistoryRecord{
			VehicleID:    req.VehicleID,
			PriceDate:    d.date,
			OldPrice:     &old,
			NewPrice:     d.newPrice,
			ChangeReason: models.ChangeReasonBatchCalculator,
			PriceSource:  models.PriceSourceCalculated,
			OperatorID:   req.OperatorID,
			Remark:       &remark,
			CalcSnapshot: &snap,
			CreatedAt:    now,
		}
		if err := rec.BeforeCreate(); err != nil {
			return nil, NewBusinessError("ADJUSTMENT_COMMIT_FAILED", "Failed to prepare ledger record", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// applyAdjustment computes the new price for one date. Results are rounded to
// the integer currency unit and never drop below zero.
func applyAdjustment(oldPrice float64, req *dto.BatchAdjustmentRequest) float64 {
	var newPrice float64
	switch req.AdjustType {
	case dto.AdjustModeOverridePrice:
		newPrice = math.Round(*req.OverridePrice)
	case dto.AdjustModeAddFactor:
		if req.FactorType == dto.FactorTypePercentage {
			newPrice = math.Round(oldPrice * (1 + *req.FactorValue/100))
		} else {
			newPrice = math.Round(oldPrice + *req.FactorValue)
		}
	}
	if newPrice < 0 {
		return 0
	}
	return newPrice
}
