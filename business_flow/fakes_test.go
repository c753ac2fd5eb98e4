package businessflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/openrv/pricing-engine/app/services"
	"github.com/openrv/pricing-engine/config"
	"github.com/openrv/pricing-engine/models"
	"github.com/openrv/pricing-engine/pricing"
	"github.com/openrv/pricing-engine/utils"
)

func fptr(v float64) *float64 { return &v }

func sptr(s string) *string { return &s }

func newTestConfig() *config.ProductionConfig {
	return &config.ProductionConfig{
		Collaborators: config.CollaboratorsConfig{LookupTimeout: time.Second},
		Pricing: config.PricingConfig{
			BatchConcurrency: 4,
			MaxCalendarDays:  366,
			RequestTimeout:   30 * time.Second,
		},
	}
}

// fakeConfigRepo is an in-memory CalculationConfigRepository. Reads hand out
// copies so tests can assert the stored value stayed unchanged.
type fakeConfigRepo struct {
	mu        sync.Mutex
	rows      map[uint]models.CalculationConfig
	nextID    uint
	listErr   error
	updateErr error
	saveErr   error
}

func newFakeConfigRepo(seed bool) *fakeConfigRepo {
	r := &fakeConfigRepo{rows: make(map[uint]models.CalculationConfig), nextID: 1}
	if seed {
		for _, def := range models.DefaultCalculationConfigs() {
			row := def
			r.insert(&row)
		}
	}
	return r
}

func (r *fakeConfigRepo) insert(row *models.CalculationConfig) {
	if row.ID == 0 {
		row.ID = r.nextID
		r.nextID++
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	r.rows[row.ID] = *row
}

func (r *fakeConfigRepo) mustByKey(key string) models.CalculationConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ConfigKey == key {
			return row
		}
	}
	panic("config key not seeded: " + key)
}

func (r *fakeConfigRepo) setValue(key string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.ConfigKey == key {
			row.ConfigValue = value
			r.rows[id] = row
			return
		}
	}
}

func (r *fakeConfigRepo) ByID(_ context.Context, id uint) (*models.CalculationConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	out := row
	return &out, nil
}

func (r *fakeConfigRepo) ByFilter(_ context.Context, filter models.CalculationConfigFilter, _ string, _, _ int) ([]*models.CalculationConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CalculationConfig
	for _, row := range r.rows {
		if filter.ConfigKey != nil && row.ConfigKey != *filter.ConfigKey {
			continue
		}
		if filter.Category != nil && row.Category != *filter.Category {
			continue
		}
		rowCopy := row
		out = append(out, &rowCopy)
	}
	return out, nil
}

func (r *fakeConfigRepo) Save(_ context.Context, row *models.CalculationConfig) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(row)
	return nil
}

func (r *fakeConfigRepo) SaveBatch(ctx context.Context, rows []*models.CalculationConfig) error {
	for _, row := range rows {
		if err := r.Save(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeConfigRepo) Count(_ context.Context, _ models.CalculationConfigFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

func (r *fakeConfigRepo) Exists(ctx context.Context, filter models.CalculationConfigFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeConfigRepo) ByConfigKey(_ context.Context, key string) (*models.CalculationConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ConfigKey == key {
			out := row
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeConfigRepo) ListByCategory(_ context.Context, category string) ([]*models.CalculationConfig, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CalculationConfig
	for _, row := range r.rows {
		if row.Category != category {
			continue
		}
		rowCopy := row
		out = append(out, &rowCopy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeConfigRepo) ListAll(_ context.Context) ([]*models.CalculationConfig, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.CalculationConfig, 0, len(r.rows))
	for _, row := range r.rows {
		rowCopy := row
		out = append(out, &rowCopy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeConfigRepo) UpdateValue(_ context.Context, id uint, value float64, updatedBy string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil
	}
	row.ConfigValue = value
	row.UpdatedBy = updatedBy
	row.UpdatedAt = time.Now().UTC()
	r.rows[id] = row
	return nil
}

// fakeHistoryRepo is an in-memory PriceHistoryRepository.
type fakeHistoryRepo struct {
	mu        sync.Mutex
	saved     []*models.PriceHistoryRecord
	byVehicle map[string][]*models.PriceHistoryRecord
	recent    []*models.PriceHistoryRecord
	vehicles  int64
	avgChange float64
	saveErr   error
	listErr   error
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{byVehicle: make(map[string][]*models.PriceHistoryRecord)}
}

func (r *fakeHistoryRepo) savedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func (r *fakeHistoryRepo) ByID(_ context.Context, _ uint) (*models.PriceHistoryRecord, error) {
	return nil, nil
}

func (r *fakeHistoryRepo) ByFilter(_ context.Context, _ models.PriceHistoryFilter, _ string, _, _ int) ([]*models.PriceHistoryRecord, error) {
	return nil, nil
}

func (r *fakeHistoryRepo) Save(_ context.Context, rec *models.PriceHistoryRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, rec)
	return nil
}

func (r *fakeHistoryRepo) SaveBatch(_ context.Context, recs []*models.PriceHistoryRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, recs...)
	return nil
}

func (r *fakeHistoryRepo) Count(_ context.Context, filter models.PriceHistoryFilter) (int64, error) {
	if r.listErr != nil {
		return 0, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if filter.VehicleID != nil {
		return int64(len(r.byVehicle[*filter.VehicleID])), nil
	}
	total := int64(0)
	for _, rows := range r.byVehicle {
		total += int64(len(rows))
	}
	return total, nil
}

func (r *fakeHistoryRepo) Exists(ctx context.Context, filter models.PriceHistoryFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeHistoryRepo) ListByVehicle(_ context.Context, vehicleID string, limit, offset int) ([]*models.PriceHistoryRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.byVehicle[vehicleID]
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeHistoryRepo) LatestByVehicle(_ context.Context, vehicleID string) (*models.PriceHistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.byVehicle[vehicleID]
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *fakeHistoryRepo) ListRecent(_ context.Context, limit int) ([]*models.PriceHistoryRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > 0 && limit < len(r.recent) {
		return r.recent[:limit], nil
	}
	return r.recent, nil
}

func (r *fakeHistoryRepo) ListByVehicleSince(_ context.Context, vehicleID string, _ time.Time) ([]*models.PriceHistoryRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byVehicle[vehicleID], nil
}

func (r *fakeHistoryRepo) CountDistinctVehicles(_ context.Context) (int64, error) {
	if r.listErr != nil {
		return 0, r.listErr
	}
	return r.vehicles, nil
}

func (r *fakeHistoryRepo) AverageAbsolutePriceChange(_ context.Context) (float64, error) {
	if r.listErr != nil {
		return 0, r.listErr
	}
	return r.avgChange, nil
}

// fakeModelCatalog serves models and market snapshots from memory.
type fakeModelCatalog struct {
	models    map[string]*services.Model
	market    *pricing.MarketData
	modelErr  error
	marketErr error
}

func (f *fakeModelCatalog) GetModel(_ context.Context, modelID string) (*services.Model, error) {
	if f.modelErr != nil {
		return nil, f.modelErr
	}
	return f.models[modelID], nil
}

func (f *fakeModelCatalog) MarketSnapshot(_ context.Context, _ string) (*pricing.MarketData, error) {
	if f.marketErr != nil {
		return nil, f.marketErr
	}
	return f.market, nil
}

type fakeStoreDirectory struct {
	stores map[string]*services.Store
	err    error
}

func (f *fakeStoreDirectory) GetStore(_ context.Context, storeID string) (*services.Store, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stores[storeID], nil
}

type fakeVehicleDirectory struct {
	vehicles map[string]*services.Vehicle
	err      error
}

func (f *fakeVehicleDirectory) GetVehicle(_ context.Context, vehicleID string) (*services.Vehicle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vehicles[vehicleID], nil
}

// fakeCityDemand answers demand lookups per date. Dates listed in errDates
// fail; dates listed in factors return that factor; everything else is a miss.
type fakeCityDemand struct {
	factors  map[string]*float64
	errDates map[string]error
	err      error
}

func (f *fakeCityDemand) DemandFactor(_ context.Context, _ string, date time.Time) (*float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	key := utils.FormatDate(date)
	if err, ok := f.errDates[key]; ok {
		return nil, err
	}
	return f.factors[key], nil
}

type fakeHolidayCalendar struct {
	holidays []pricing.Holiday
	err      error
}

func (f *fakeHolidayCalendar) HolidaysInRange(_ context.Context, _, _ time.Time) ([]pricing.Holiday, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.holidays, nil
}

type fakeCustomRuleSource struct {
	rules []pricing.CustomRule
	err   error
}

func (f *fakeCustomRuleSource) RulesInRange(_ context.Context, _, _ time.Time) ([]pricing.CustomRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}
