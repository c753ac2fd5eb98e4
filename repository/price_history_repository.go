package repository

import (
	"context"
	"errors"
	"time"

	"github.com/openrv/pricing-engine/models"
	"gorm.io/gorm"
)

// PriceHistoryRepositoryImpl implements PriceHistoryRepository
type PriceHistoryRepositoryImpl struct {
	*BaseRepository[models.PriceHistoryRecord, models.PriceHistoryFilter]
}

// NewPriceHistoryRepository creates a new repository for the price ledger
func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &PriceHistoryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PriceHistoryRecord, models.PriceHistoryFilter](db),
	}
}

// ListByVehicle returns a vehicle's ledger entries, most recent first.
func (r *PriceHistoryRepositoryImpl) ListByVehicle(ctx context.Context, vehicleID string, limit, offset int) ([]*models.PriceHistoryRecord, error) {
	db := r.getDB(ctx)

	query := db.Where("vehicle_id = ?", vehicleID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.PriceHistoryRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestByVehicle returns a vehicle's most recent ledger entry.
func (r *PriceHistoryRepositoryImpl) LatestByVehicle(ctx context.Context, vehicleID string) (*models.PriceHistoryRecord, error) {
	db := r.getDB(ctx)

	var rec models.PriceHistoryRecord
	err := db.Where("vehicle_id = ?", vehicleID).
		Order("created_at DESC, id DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ListRecent returns the newest ledger entries across all vehicles.
func (r *PriceHistoryRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*models.PriceHistoryRecord, error) {
	db := r.getDB(ctx)

	var rows []*models.PriceHistoryRecord
	err := db.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByVehicleSince returns a vehicle's entries created at or after the given time.
func (r *PriceHistoryRepositoryImpl) ListByVehicleSince(ctx context.Context, vehicleID string, since time.Time) ([]*models.PriceHistoryRecord, error) {
	db := r.getDB(ctx)

	var rows []*models.PriceHistoryRecord
	err := db.Where("vehicle_id = ? AND created_at >= ?", vehicleID, since).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountDistinctVehicles returns the number of vehicles present in the ledger.
func (r *PriceHistoryRepositoryImpl) CountDistinctVehicles(ctx context.Context) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.PriceHistoryRecord{}).
		Distinct("vehicle_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// AverageAbsolutePriceChange returns the mean absolute delta across all
// entries that have a previous price.
func (r *PriceHistoryRepositoryImpl) AverageAbsolutePriceChange(ctx context.Context) (float64, error) {
	db := r.getDB(ctx)

	var avg *float64
	err := db.Raw(`
		SELECT AVG(ABS(new_price - old_price))
		FROM price_history_records
		WHERE old_price IS NOT NULL
	`).Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PriceHistoryRepositoryImpl) applyFilter(db *gorm.DB, filter models.PriceHistoryFilter) *gorm.DB {
	if filter.VehicleID != nil {
		db = db.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.ChangeReason != nil {
		db = db.Where("change_reason = ?", *filter.ChangeReason)
	}
	if filter.PriceSource != nil {
		db = db.Where("price_source = ?", *filter.PriceSource)
	}
	if filter.PriceDateFrom != nil {
		db = db.Where("price_date >= ?", *filter.PriceDateFrom)
	}
	if filter.PriceDateTo != nil {
		db = db.Where("price_date <= ?", *filter.PriceDateTo)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves ledger entries based on filter criteria.
func (r *PriceHistoryRepositoryImpl) ByFilter(ctx context.Context, filter models.PriceHistoryFilter, orderBy string, limit, offset int) ([]*models.PriceHistoryRecord, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PriceHistoryRecord{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.PriceHistoryRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of ledger entries matching the filter.
func (r *PriceHistoryRepositoryImpl) Count(ctx context.Context, filter models.PriceHistoryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PriceHistoryRecord{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any ledger entry matching the filter exists.
func (r *PriceHistoryRepositoryImpl) Exists(ctx context.Context, filter models.PriceHistoryFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
