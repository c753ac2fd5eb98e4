// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/openrv/pricing-engine/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CalculationConfigRepository defines operations for calculation configs
type CalculationConfigRepository interface {
	Repository[models.CalculationConfig, models.CalculationConfigFilter]
	ByConfigKey(ctx context.Context, key string) (*models.CalculationConfig, error)
	ListByCategory(ctx context.Context, category string) ([]*models.CalculationConfig, error)
	ListAll(ctx context.Context) ([]*models.CalculationConfig, error)
	UpdateValue(ctx context.Context, id uint, value float64, updatedBy string) error
}

// PriceHistoryRepository defines operations for the append-only price ledger
type PriceHistoryRepository interface {
	Repository[models.PriceHistoryRecord, models.PriceHistoryFilter]
	ListByVehicle(ctx context.Context, vehicleID string, limit, offset int) ([]*models.PriceHistoryRecord, error)
	LatestByVehicle(ctx context.Context, vehicleID string) (*models.PriceHistoryRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*models.PriceHistoryRecord, error)
	ListByVehicleSince(ctx context.Context, vehicleID string, since time.Time) ([]*models.PriceHistoryRecord, error)
	CountDistinctVehicles(ctx context.Context) (int64, error)
	AverageAbsolutePriceChange(ctx context.Context) (float64, error)
}
