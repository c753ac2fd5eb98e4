package businessflow

import (
	"context"

	"github.com/openrv/pricing-engine/app/dto"
	"github.com/openrv/pricing-engine/models"
	"github.com/openrv/pricing-engine/repository"
	"github.com/openrv/pricing-engine/utils"
)

// recentChangesLimit caps the recent-changes window of the ledger stats.
const recentChangesLimit = 10

// PriceHistoryFlow reads and appends the append-only price ledger.
type PriceHistoryFlow interface {
	RecordPriceChange(ctx context.Context, req *dto.RecordPriceChangeRequest) (*dto.PriceHistoryItem, error)
	QueryByVehicle(ctx context.Context, vehicleID string, limit, offset int) (*dto.PriceHistoryResponse, error)
	Stats(ctx context.Context) (*dto.PriceHistoryStatsResponse, error)
}

type PriceHistoryFlowImpl struct {
	historyRepo repository.PriceHistoryRepository
}

func NewPriceHistoryFlow(historyRepo repository.PriceHistoryRepository) PriceHistoryFlow {
	return &PriceHistoryFlowImpl{historyRepo: historyRepo}
}

// RecordPriceChange appends one manual entry to the ledger. Existing entries
// are never updated; corrections are recorded as new entries. A missing old
// price defaults to the vehicle's latest recorded price, best effort.
func (f *PriceHistoryFlowImpl) RecordPriceChange(ctx context.Context, req *dto.RecordPriceChangeRequest) (*dto.PriceHistoryItem, error) {
	if req.VehicleID == "" {
		return nil, NewBusinessError("HISTORY_VEHICLE_REQUIRED", "Vehicle id is required", ErrVehicleIDRequired)
	}
	if req.NewPrice < 0 || (req.OldPrice != nil && *req.OldPrice < 0) {
		return nil, NewBusinessError("HISTORY_PRICE_NEGATIVE", "Price must not be negative", ErrPriceNegative)
	}
	priceDate, err := utils.ParseDate(req.PriceDate)
	if err != nil {
		return nil, NewBusinessError("HISTORY_DATE_INVALID", "Price date is not a valid calendar date", ErrDateInvalid)
	}
	reason := models.ChangeReason(req.ChangeReason)
	source := models.PriceSource(req.PriceSource)
	if !reason.IsValid() || !source.IsValid() {
		return nil, NewBusinessError("HISTORY_REASON_INVALID", "Unknown change reason or price source", ErrChangeReasonInvalid)
	}

	oldPrice := req.OldPrice
	if oldPrice == nil {
		if latest, err := f.historyRepo.LatestByVehicle(ctx, req.VehicleID); err == nil && latest != nil {
			oldPrice = utils.ToPtr(latest.NewPrice)
		}
	}

	rec := &models.PriceHistoryRecord{
		VehicleID:    req.VehicleID,
		PriceDate:    priceDate,
		OldPrice:     oldPrice,
		NewPrice:     req.NewPrice,
		ChangeReason: reason,
		PriceSource:  source,
		OperatorID:   req.OperatorID,
		CalcSnapshot: snapshotFromDTO(req.CalcSnapshot),
		CreatedAt:    utils.UTCNow(),
	}
	if req.Remark != "" {
		rec.Remark = utils.ToPtr(req.Remark)
	}
	if err := rec.BeforeCreate(); err != nil {
		return nil, NewBusinessError("HISTORY_RECORD_FAILED", "Failed to prepare ledger record", err)
	}
	if err := f.historyRepo.Save(ctx, rec); err != nil {
		return nil, NewBusinessError("HISTORY_RECORD_FAILED", "Failed to write ledger record", err)
	}

	item := toPriceHistoryItem(rec)
	return &item, nil
}

// QueryByVehicle returns a vehicle's ledger entries, most recent first.
func (f *PriceHistoryFlowImpl) QueryByVehicle(ctx context.Context, vehicleID string, limit, offset int) (*dto.PriceHistoryResponse, error) {
	if vehicleID == "" {
		return nil, NewBusinessError("HISTORY_VEHICLE_REQUIRED", "Vehicle id is required", ErrVehicleIDRequired)
	}

	rows, err := f.historyRepo.ListByVehicle(ctx, vehicleID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("HISTORY_QUERY_FAILED", "Failed to query price history", err)
	}
	total, err := f.historyRepo.Count(ctx, models.PriceHistoryFilter{VehicleID: &vehicleID})
	if err != nil {
		return nil, NewBusinessError("HISTORY_QUERY_FAILED", "Failed to count price history", err)
	}

	items := make([]dto.PriceHistoryItem, 0, len(rows))
	for _, rec := range rows {
		items = append(items, toPriceHistoryItem(rec))
	}

	return &dto.PriceHistoryResponse{
		VehicleID: vehicleID,
		Items:     items,
		Total:     total,
	}, nil
}

// Stats summarizes the whole ledger: totals, the ten most recent changes and
// the average absolute price movement.
func (f *PriceHistoryFlowImpl) Stats(ctx context.Context) (*dto.PriceHistoryStatsResponse, error) {
	total, err := f.historyRepo.Count(ctx, models.PriceHistoryFilter{})
	if err != nil {
		return nil, NewBusinessError("HISTORY_STATS_FAILED", "Failed to count ledger records", err)
	}
	vehicles, err := f.historyRepo.CountDistinctVehicles(ctx)
	if err != nil {
		return nil, NewBusinessError("HISTORY_STATS_FAILED", "Failed to count ledger vehicles", err)
	}
	recent, err := f.historyRepo.ListRecent(ctx, recentChangesLimit)
	if err != nil {
		return nil, NewBusinessError("HISTORY_STATS_FAILED", "Failed to list recent changes", err)
	}
	avgChange, err := f.historyRepo.AverageAbsolutePriceChange(ctx)
	if err != nil {
		return nil, NewBusinessError("HISTORY_STATS_FAILED", "Failed to average price changes", err)
	}

	recentItems := make([]dto.PriceHistoryItem, 0, len(recent))
	for _, rec := range recent {
		recentItems = append(recentItems, toPriceHistoryItem(rec))
	}

	return &dto.PriceHistoryStatsResponse{
		TotalRecords:           total,
		TotalVehicles:          vehicles,
		RecentChanges:          recentItems,
		AvgAbsolutePriceChange: avgChange,
	}, nil
}
