package businessflow

import (
	"context"
	"math"
	"time"

	"github.com/openrv/pricing-engine/app/dto"
	"github.com/openrv/pricing-engine/app/services"
	"github.com/openrv/pricing-engine/config"
	"github.com/openrv/pricing-engine/models"
	"github.com/openrv/pricing-engine/pricing"
	"github.com/openrv/pricing-engine/repository"
	"github.com/openrv/pricing-engine/utils"

	"golang.org/x/sync/errgroup"
)

// historicalWindowMonths is the ledger window backing the historical reference.
const historicalWindowMonths = 6

// needsAdjustThresholdPct marks a vehicle as needing adjustment when its
// preferred candidate moves the price by more than this percentage.
const needsAdjustThresholdPct = 5.0

// SuggestionFlow produces multi-strategy pricing suggestions for vehicles.
type SuggestionFlow interface {
	GetSuggestion(ctx context.Context, vehicleID, strategyID string) (*dto.PricingSuggestionResponse, error)
	BatchSuggestions(ctx context.Context, req *dto.BatchSuggestionsRequest) (*dto.BatchSuggestionsResponse, error)
}

type SuggestionFlowImpl struct {
	vehicleDirectory services.VehicleDirectory
	modelCatalog     services.ModelCatalog
	configRepo       repository.CalculationConfigRepository
	historyRepo      repository.PriceHistoryRepository
	registry         *pricing.Registry
	cfg              *config.ProductionConfig
}

func NewSuggestionFlow(
	vehicleDirectory services.VehicleDirectory,
	modelCatalog services.ModelCatalog,
	configRepo repository.CalculationConfigRepository,
	historyRepo repository.PriceHistoryRepository,
	registry *pricing.Registry,
	cfg *config.ProductionConfig,
) SuggestionFlow {
	return &SuggestionFlowImpl{
		vehicleDirectory: vehicleDirectory,
		modelCatalog:     modelCatalog,
		configRepo:       configRepo,
		historyRepo:      historyRepo,
		registry:         registry,
		cfg:              cfg,
	}
}

// GetSuggestion runs the registered strategies for one vehicle. An empty
// strategyID runs every strategy in registration order; a named strategy runs
// alone. A failed strategy is reported on its candidate and never hides the
// others.
func (f *SuggestionFlowImpl) GetSuggestion(ctx context.Context, vehicleID, strategyID string) (*dto.PricingSuggestionResponse, error) {
	if vehicleID == "" {
		return nil, NewBusinessError("SUGGESTION_VEHICLE_REQUIRED", "Vehicle id is required", ErrVehicleIDRequired)
	}

	ids := f.registry.IDs()
	if strategyID != "" {
		if _, ok := f.registry.Lookup(strategyID); !ok {
			return nil, NewBusinessErrorf("SUGGESTION_STRATEGY_UNKNOWN", "Unknown pricing strategy %q", ErrStrategyUnknown, strategyID)
		}
		ids = []string{strategyID}
	}

	vehicle, err := f.vehicleDirectory.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, NewBusinessError("SUGGESTION_VEHICLE_LOOKUP_FAILED", "Failed to look up vehicle", err)
	}
	if vehicle == nil {
		return nil, NewBusinessError("SUGGESTION_VEHICLE_NOT_FOUND", "Vehicle not found", ErrVehicleNotFound)
	}

	snapshot, err := configSnapshot(ctx, f.configRepo)
	if err != nil {
		return nil, NewBusinessError("CALC_CONFIG_LOAD_FAILED", "Failed to load calculation configs", err)
	}

	resp := &dto.PricingSuggestionResponse{
		VehicleID:    vehicle.ID,
		CurrentPrice: vehicle.CurrentPrice,
	}

	var market pricing.MarketData
	if snap, err := f.modelCatalog.MarketSnapshot(ctx, vehicle.ModelID); err != nil {
		resp.Notes = append(resp.Notes, "market snapshot unavailable; market-based results degraded")
	} else if snap != nil {
		market = *snap
	}

	now := utils.UTCNow()
	strategyCtx := pricing.StrategyContext{
		Vehicle: vehicleSnapshot(vehicle),
		Market:  market,
		Config:  snapshot,
		Now:     now,
	}

	for _, id := range ids {
		strategy, ok := f.registry.Lookup(id)
		if !ok {
			continue
		}
		candidateDTO := dto.StrategyCandidateDTO{
			StrategyID:   strategy.ID(),
			StrategyName: strategy.Name(),
		}
		candidate, err := strategy.Compute(strategyCtx)
		if err != nil {
			candidateDTO.Error = err.Error()
		} else {
			impact := pricing.EvaluateImpact(vehicle.CurrentPrice, candidate.Price, market)
			candidateDTO.SuggestedPrice = candidate.Price
			candidateDTO.Confidence = pricing.Confidence(strategyCtx.Vehicle, market, strategy.ID())
			candidateDTO.Reasoning = candidate.Reasoning
			candidateDTO.Impact = &dto.ImpactDTO{
				RevenueChangePercent: impact.RevenueChangePercent,
				Competitiveness:      impact.Competitiveness,
				MarketPosition:       impact.MarketPosition,
			}
		}
		resp.Candidates = append(resp.Candidates, candidateDTO)
	}

	if market.AveragePrice > 0 || len(market.CompetitorPrices) > 0 {
		cmp := pricing.CompareMarket(vehicle.CurrentPrice, market)
		resp.MarketComparison = &dto.MarketComparisonDTO{
			AveragePrice:    cmp.AveragePrice,
			MinPrice:        cmp.MinPrice,
			MaxPrice:        cmp.MaxPrice,
			CompetitorCount: cmp.CompetitorCount,
			Position:        cmp.Position,
		}
	}

	if ref, note := f.historicalReference(ctx, vehicle.ID, now); ref != nil {
		resp.HistoricalReference = ref
	} else if note != "" {
		resp.Notes = append(resp.Notes, note)
	}

	return resp, nil
}

// BatchSuggestions fans suggestions out over a bounded worker pool. Results
// come back in the caller-supplied order and one failing vehicle never aborts
// its neighbours.
func (f *SuggestionFlowImpl) BatchSuggestions(ctx context.Context, req *dto.BatchSuggestionsRequest) (*dto.BatchSuggestionsResponse, error) {
	if len(req.VehicleIDs) == 0 {
		return nil, NewBusinessError("SUGGESTION_NO_VEHICLES", "At least one vehicle id is required", ErrVehicleIDRequired)
	}

	items := make([]dto.BatchSuggestionItem, len(req.VehicleIDs))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Pricing.BatchConcurrency)
	for i, vehicleID := range req.VehicleIDs {
		g.Go(func() error {
			item := dto.BatchSuggestionItem{VehicleID: vehicleID}
			suggestion, err := f.GetSuggestion(groupCtx, vehicleID, "")
			if err != nil {
				item.Error = err.Error()
			} else {
				item.Suggestion = suggestion
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, NewBusinessError("SUGGESTION_BATCH_FAILED", "Failed to run batch suggestions", err)
	}

	return &dto.BatchSuggestionsResponse{
		Items:   items,
		Summary: summarizeBatch(items),
	}, nil
}

// historicalReference summarizes the vehicle's recent ledger window. A read
// failure degrades to a note instead of failing the suggestion.
func (f *SuggestionFlowImpl) historicalReference(ctx context.Context, vehicleID string, now time.Time) (*dto.HistoricalReferenceDTO, string) {
	since := now.AddDate(0, -historicalWindowMonths, 0)
	rows, err := f.historyRepo.ListByVehicleSince(ctx, vehicleID, since)
	if err != nil {
		return nil, "price history unavailable; historical reference omitted"
	}
	if len(rows) == 0 {
		return nil, ""
	}

	var sum float64
	var latest *models.PriceHistoryRecord
	for _, rec := range rows {
		sum += rec.NewPrice
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}

	ref := &dto.HistoricalReferenceDTO{
		AverageHistoricalPrice: math.Round(sum/float64(len(rows))*100) / 100,
		AdjustmentsPerMonth:    math.Round(float64(len(rows))/historicalWindowMonths*10) / 10,
		LastAdjustmentDate:     utils.FormatDate(latest.PriceDate),
	}
	if latest.Remark != nil {
		ref.LastAdjustmentReason = *latest.Remark
	}
	return ref, ""
}

// summarizeBatch aggregates the successful items. The preferred candidate per
// vehicle is the balanced strategy when it priced, otherwise the first
// successful candidate.
func summarizeBatch(items []dto.BatchSuggestionItem) dto.BatchSuggestionsSummary {
	summary := dto.BatchSuggestionsSummary{TotalVehicles: len(items)}

	var sumCurrent, sumSuggested float64
	for _, item := range items {
		if item.Suggestion == nil {
			summary.FailedVehicles++
			continue
		}
		summary.SucceededVehicles++
		sumCurrent += item.Suggestion.CurrentPrice

		candidate := preferredCandidate(item.Suggestion.Candidates)
		if candidate == nil {
			continue
		}
		sumSuggested += candidate.SuggestedPrice
		if item.Suggestion.CurrentPrice > 0 {
			changePct := math.Abs(candidate.SuggestedPrice-item.Suggestion.CurrentPrice) / item.Suggestion.CurrentPrice * 100
			if changePct > needsAdjustThresholdPct {
				summary.VehiclesNeedingAdjust++
			}
		}
	}

	if summary.SucceededVehicles > 0 {
		n := float64(summary.SucceededVehicles)
		summary.AvgCurrentPrice = math.Round(sumCurrent/n*100) / 100
		summary.AvgSuggestedPrice = math.Round(sumSuggested/n*100) / 100
	}
	return summary
}

// preferredCandidate picks the balanced candidate when it succeeded, otherwise
// the first successful one.
func preferredCandidate(candidates []dto.StrategyCandidateDTO) *dto.StrategyCandidateDTO {
	for i := range candidates {
		if candidates[i].StrategyID == pricing.StrategyBalanced && candidates[i].Error == "" {
			return &candidates[i]
		}
	}
	for i := range candidates {
		if candidates[i].Error == "" {
			return &candidates[i]
		}
	}
	return nil
}

// vehicleSnapshot converts the collaborator record into the strategy input.
func vehicleSnapshot(v *services.Vehicle) pricing.VehicleSnapshot {
	snap := pricing.VehicleSnapshot{
		VehicleID:     v.ID,
		ModelID:       v.ModelID,
		CurrentPrice:  v.CurrentPrice,
		PurchasePrice: v.PurchasePrice,
		PurchaseDate:  v.PurchaseDate,
		MileageKm:     v.MileageKm,
	}
	if v.ConditionGrade != nil {
		grade := pricing.ConditionGrade(*v.ConditionGrade)
		if grade.IsValid() {
			snap.ConditionGrade = &grade
		}
	}
	return snap
}
