// Package testing provides test utilities and database setup for testing the pricing engine
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/openrv/pricing-engine/models"
	"github.com/openrv/pricing-engine/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// SeedCalculationConfigs inserts the default parameter rows. Useful after
// ClearAllTables, which also wipes the rows seeded by migrations.
func (tf *TestFixtures) SeedCalculationConfigs() error {
	for _, def := range models.DefaultCalculationConfigs() {
		row := def
		if err := tf.DB.DB.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to seed calculation config %s: %w", def.ConfigKey, err)
		}
	}
	return nil
}

// GetConfigByKey fetches one calculation config row by its key
func (tf *TestFixtures) GetConfigByKey(key string) (*models.CalculationConfig, error) {
	var row models.CalculationConfig
	if err := tf.DB.DB.Where("config_key = ?", key).First(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to find calculation config %s: %w", key, err)
	}
	return &row, nil
}

// CreateTestPriceHistoryRecord creates one ledger entry for the given vehicle
func (tf *TestFixtures) CreateTestPriceHistoryRecord(vehicleID string, oldPrice *float64, newPrice float64) (*models.PriceHistoryRecord, error) {
	record := &models.PriceHistoryRecord{
		UUID:         uuid.New(),
		VehicleID:    vehicleID,
		PriceDate:    utils.DateOnly(time.Now().UTC()),
		OldPrice:     oldPrice,
		NewPrice:     newPrice,
		ChangeReason: models.ChangeReasonManual,
		PriceSource:  models.PriceSourceManual,
		OperatorID:   "test-operator",
		CreatedAt:    time.Now().UTC(),
	}

	if err := tf.DB.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create test price history record: %w", err)
	}

	return record, nil
}

// CreateCalculatedHistoryRecord creates a ledger entry carrying a calculation snapshot
func (tf *TestFixtures) CreateCalculatedHistoryRecord(vehicleID string, oldPrice, newPrice float64, snapshot models.CalculationSnapshot) (*models.PriceHistoryRecord, error) {
	record := &models.PriceHistoryRecord{
		UUID:         uuid.New(),
		VehicleID:    vehicleID,
		PriceDate:    utils.DateOnly(time.Now().UTC()),
		OldPrice:     &oldPrice,
		NewPrice:     newPrice,
		ChangeReason: models.ChangeReasonBatchCalculator,
		PriceSource:  models.PriceSourceCalculated,
		OperatorID:   "test-operator",
		CalcSnapshot: &snapshot,
		CreatedAt:    time.Now().UTC(),
	}

	if err := tf.DB.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create calculated history record: %w", err)
	}

	return record, nil
}

// CreateVehicleLedger creates n manual ledger entries for one vehicle with
// ascending prices and distinct timestamps, oldest first.
func (tf *TestFixtures) CreateVehicleLedger(vehicleID string, n int, startPrice float64) ([]*models.PriceHistoryRecord, error) {
	var records []*models.PriceHistoryRecord
	base := time.Now().UTC().Add(-time.Duration(n) * time.Hour)

	price := startPrice
	for i := 0; i < n; i++ {
		old := price
		price += float64(rand.Intn(500) + 100)

		record := &models.PriceHistoryRecord{
			UUID:         uuid.New(),
			VehicleID:    vehicleID,
			PriceDate:    utils.DateOnly(base.AddDate(0, 0, i)),
			OldPrice:     &old,
			NewPrice:     price,
			ChangeReason: models.ChangeReasonManual,
			PriceSource:  models.PriceSourceManual,
			OperatorID:   "test-operator",
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		}

		if err := tf.DB.DB.Create(record).Error; err != nil {
			return nil, fmt.Errorf("failed to create ledger entry %d: %w", i, err)
		}
		records = append(records, record)
	}

	return records, nil
}
