package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	businessflow "github.com/openrv/pricing-engine/business_flow"
	"github.com/openrv/pricing-engine/models"
	"github.com/openrv/pricing-engine/repository"
	testingutil "github.com/openrv/pricing-engine/testing"
	"github.com/openrv/pricing-engine/utils"
)

// setupDB provisions a throwaway migrated database or skips the test when no
// PostgreSQL server is reachable.
func setupDB(t *testing.T) *testingutil.TestDB {
	t.Helper()
	db, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := db.TeardownTestDB(); err != nil {
			t.Logf("teardown: %v", err)
		}
	})
	return db
}

func TestCalculationConfigRepositoryDB(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := repository.NewCalculationConfigRepository(db.DB)

	t.Run("MigrationsSeedDefaults", func(t *testing.T) {
		rows, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 5)

		// Stable ordering by config key.
		keys := make([]string, 0, len(rows))
		for _, row := range rows {
			keys = append(keys, row.ConfigKey)
		}
		assert.Equal(t, []string{
			models.ConfigKeyAnnualOperatingRate,
			models.ConfigKeyInvestmentPeriod,
			models.ConfigKeyOperatingCostRate,
			models.ConfigKeyResidualValueRate,
			models.ConfigKeyTargetAnnualReturn,
		}, keys)
	})

	t.Run("ByConfigKey", func(t *testing.T) {
		row, err := repo.ByConfigKey(ctx, models.ConfigKeyTargetAnnualReturn)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, 3.0, row.ConfigValue)

		miss, err := repo.ByConfigKey(ctx, "NO_SUCH_KEY")
		require.NoError(t, err)
		assert.Nil(t, miss)
	})

	t.Run("UpdateValue", func(t *testing.T) {
		row, err := repo.ByConfigKey(ctx, models.ConfigKeyResidualValueRate)
		require.NoError(t, err)
		require.NotNil(t, row)

		require.NoError(t, repo.UpdateValue(ctx, row.ID, 45, "ops-admin"))

		updated, err := repo.ByID(ctx, row.ID)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, 45.0, updated.ConfigValue)
		assert.Equal(t, "ops-admin", updated.UpdatedBy)
		assert.Equal(t, 30.0, updated.DefaultValue)

		err = repo.UpdateValue(ctx, 99999, 10, "ops-admin")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("ListByCategory", func(t *testing.T) {
		rows, err := repo.ListByCategory(ctx, models.ConfigCategoryFinancial)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("ByIDMissIsNilNil", func(t *testing.T) {
		row, err := repo.ByID(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, row)
	})
}

func TestPriceHistoryRepositoryDB(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := repository.NewPriceHistoryRepository(db.DB)
	fixtures := testingutil.NewTestFixtures(db)

	// v1 gets two entries (deltas 10 and 25), v2 one without an old price.
	_, err := fixtures.CreateTestPriceHistoryRecord("v1", utils.ToPtr(300.0), 310)
	require.NoError(t, err)
	_, err = fixtures.CreateTestPriceHistoryRecord("v1", utils.ToPtr(310.0), 335)
	require.NoError(t, err)
	_, err = fixtures.CreateTestPriceHistoryRecord("v2", nil, 280)
	require.NoError(t, err)

	t.Run("ListByVehicleMostRecentFirst", func(t *testing.T) {
		rows, err := repo.ListByVehicle(ctx, "v1", 20, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 335.0, rows[0].NewPrice)
		assert.Equal(t, 310.0, rows[1].NewPrice)
	})

	t.Run("LatestByVehicle", func(t *testing.T) {
		rec, err := repo.LatestByVehicle(ctx, "v1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, 335.0, rec.NewPrice)

		miss, err := repo.LatestByVehicle(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, miss)
	})

	t.Run("CountByVehicle", func(t *testing.T) {
		n, err := repo.Count(ctx, models.PriceHistoryFilter{VehicleID: utils.ToPtr("v1")})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("CountDistinctVehicles", func(t *testing.T) {
		n, err := repo.CountDistinctVehicles(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("AverageAbsolutePriceChange", func(t *testing.T) {
		// Only entries with a previous price count: (10 + 25) / 2.
		avg, err := repo.AverageAbsolutePriceChange(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 17.5, avg, 0.001)
	})

	t.Run("ListRecent", func(t *testing.T) {
		rows, err := repo.ListRecent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("CalcSnapshotRoundTrips", func(t *testing.T) {
		_, err := fixtures.CreateCalculatedHistoryRecord("v3", 300, 320, models.CalculationSnapshot{
			PurchasePrice:   100000,
			ConditionGrade:  "B",
			ConditionFactor: 1.15,
			CityFactor:      1.2,
			TimeFactor:      1.5,
		})
		require.NoError(t, err)

		rec, err := repo.LatestByVehicle(ctx, "v3")
		require.NoError(t, err)
		require.NotNil(t, rec)
		require.NotNil(t, rec.CalcSnapshot)
		assert.Equal(t, "B", rec.CalcSnapshot.ConditionGrade)
		assert.Equal(t, 1.2, rec.CalcSnapshot.CityFactor)
		assert.Equal(t, 1.5, rec.CalcSnapshot.TimeFactor)
	})
}

func TestWithTransactionDB(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := repository.NewPriceHistoryRepository(db.DB)

	newRecord := func(vehicleID string, price float64) *models.PriceHistoryRecord {
		rec := &models.PriceHistoryRecord{
			VehicleID:    vehicleID,
			PriceDate:    utils.UTCNow(),
			NewPrice:     price,
			ChangeReason: models.ChangeReasonBatchCalculator,
			PriceSource:  models.PriceSourceCalculated,
		}
		require.NoError(t, rec.BeforeCreate())
		return rec
	}

	t.Run("CommitPersistsBatch", func(t *testing.T) {
		err := repository.WithTransaction(ctx, db.DB, func(txCtx context.Context) error {
			return repo.SaveBatch(txCtx, []*models.PriceHistoryRecord{
				newRecord("tx-commit", 300),
				newRecord("tx-commit", 310),
			})
		})
		require.NoError(t, err)

		n, err := repo.Count(ctx, models.PriceHistoryFilter{VehicleID: utils.ToPtr("tx-commit")})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("ErrorRollsBackBatch", func(t *testing.T) {
		boom := errors.New("boom")
		err := repository.WithTransaction(ctx, db.DB, func(txCtx context.Context) error {
			if err := repo.SaveBatch(txCtx, []*models.PriceHistoryRecord{newRecord("tx-rollback", 300)}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		n, err := repo.Count(ctx, models.PriceHistoryFilter{VehicleID: utils.ToPtr("tx-rollback")})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}

// ResetAllConfigs runs inside a real transaction, so it is covered here
// rather than with the in-memory fakes.
func TestResetAllConfigsDB(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := repository.NewCalculationConfigRepository(db.DB)
	flow := businessflow.NewCalculationConfigFlow(repo, db.DB)

	target, err := repo.ByConfigKey(ctx, models.ConfigKeyTargetAnnualReturn)
	require.NoError(t, err)
	require.NotNil(t, target)
	period, err := repo.ByConfigKey(ctx, models.ConfigKeyInvestmentPeriod)
	require.NoError(t, err)
	require.NotNil(t, period)

	require.NoError(t, repo.UpdateValue(ctx, target.ID, 10, "ops-admin"))
	require.NoError(t, repo.UpdateValue(ctx, period.ID, 8, "ops-admin"))

	res, err := flow.ResetAllConfigs(ctx, "ops-admin")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ResetCount)

	for _, key := range []string{models.ConfigKeyTargetAnnualReturn, models.ConfigKeyInvestmentPeriod} {
		row, err := repo.ByConfigKey(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, row.DefaultValue, row.ConfigValue, "key %s", key)
	}
}
