package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/openrv/pricing-engine/models"
	"github.com/openrv/pricing-engine/utils"
	"gorm.io/gorm"
)

// CalculationConfigRepositoryImpl implements CalculationConfigRepository
type CalculationConfigRepositoryImpl struct {
	*BaseRepository[models.CalculationConfig, models.CalculationConfigFilter]
}

// NewCalculationConfigRepository creates a new repository for calculation configs
func NewCalculationConfigRepository(db *gorm.DB) CalculationConfigRepository {
	return &CalculationConfigRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CalculationConfig, models.CalculationConfigFilter](db),
	}
}

// ByConfigKey retrieves a config row by its unique key.
func (r *CalculationConfigRepositoryImpl) ByConfigKey(ctx context.Context, key string) (*models.CalculationConfig, error) {
	db := r.getDB(ctx)

	var cfg models.CalculationConfig
	err := db.Where("config_key = ?", key).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find config by key %s: %w", key, err)
	}
	return &cfg, nil
}

// ListByCategory returns all config rows of one category, stable by key.
func (r *CalculationConfigRepositoryImpl) ListByCategory(ctx context.Context, category string) ([]*models.CalculationConfig, error) {
	db := r.getDB(ctx)

	var rows []*models.CalculationConfig
	err := db.Where("category = ?", category).Order("config_key ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns every config row, stable by key.
func (r *CalculationConfigRepositoryImpl) ListAll(ctx context.Context) ([]*models.CalculationConfig, error) {
	db := r.getDB(ctx)

	var rows []*models.CalculationConfig
	err := db.Order("config_key ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateValue updates a config value and its audit fields.
func (r *CalculationConfigRepositoryImpl) UpdateValue(ctx context.Context, id uint, value float64, updatedBy string) error {
	db := r.getDB(ctx)

	result := db.Model(&models.CalculationConfig{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"config_value": value,
			"updated_by":   updatedBy,
			"updated_at":   utils.UTCNow(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update config %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CalculationConfigRepositoryImpl) applyFilter(db *gorm.DB, filter models.CalculationConfigFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.ConfigKey != nil {
		db = db.Where("config_key = ?", *filter.ConfigKey)
	}
	if filter.Category != nil {
		db = db.Where("category = ?", *filter.Category)
	}
	return db
}

// ByFilter retrieves calculation configs based on filter criteria.
func (r *CalculationConfigRepositoryImpl) ByFilter(ctx context.Context, filter models.CalculationConfigFilter, orderBy string, limit, offset int) ([]*models.CalculationConfig, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CalculationConfig{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "config_key ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.CalculationConfig
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of calculation configs matching the filter.
func (r *CalculationConfigRepositoryImpl) Count(ctx context.Context, filter models.CalculationConfigFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CalculationConfig{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any calculation config matching the filter exists.
func (r *CalculationConfigRepositoryImpl) Exists(ctx context.Context, filter models.CalculationConfigFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
