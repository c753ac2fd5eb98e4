package businessflow

import (
	"context"
	"time"

	"github.com/openrv/pricing-engine/app/dto"
	"github.com/openrv/pricing-engine/models"
	"github.com/openrv/pricing-engine/repository"

	"gorm.io/gorm"
)

// CalculationConfigFlow defines admin operations on the calculator parameters.
type CalculationConfigFlow interface {
	ListConfigs(ctx context.Context, category string) (*dto.ListCalculationConfigsResponse, error)
	UpdateConfig(ctx context.Context, id uint, req *dto.UpdateCalculationConfigRequest) (*dto.CalculationConfigResponse, error)
	ResetConfig(ctx context.Context, id uint, updatedBy string) (*dto.CalculationConfigResponse, error)
	ResetAllConfigs(ctx context.Context, updatedBy string) (*dto.ResetAllConfigsResponse, error)
	EnsureSeeded(ctx context.Context) error
}

type CalculationConfigFlowImpl struct {
	configRepo repository.CalculationConfigRepository
	db         *gorm.DB
}

func NewCalculationConfigFlow(configRepo repository.CalculationConfigRepository, db *gorm.DB) CalculationConfigFlow {
	return &CalculationConfigFlowImpl{configRepo: configRepo, db: db}
}

// ListConfigs returns the parameter rows, optionally filtered by category.
func (f *CalculationConfigFlowImpl) ListConfigs(ctx context.Context, category string) (*dto.ListCalculationConfigsResponse, error) {
	var (
		rows []*models.CalculationConfig
		err  error
	)
	if category != "" {
		rows, err = f.configRepo.ListByCategory(ctx, category)
	} else {
		rows, err = f.configRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, NewBusinessError("CONFIG_LIST_FAILED", "Failed to list calculation configs", err)
	}

	items := make([]dto.CalculationConfigItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toConfigItem(row))
	}

	return &dto.ListCalculationConfigsResponse{Items: items}, nil
}

// UpdateConfig sets a new value for one editable row. Values outside the
// documented range for the row's key are rejected and the stored value stays
// unchanged.
func (f *CalculationConfigFlowImpl) UpdateConfig(ctx context.Context, id uint, req *dto.UpdateCalculationConfigRequest) (*dto.CalculationConfigResponse, error) {
	row, err := f.configRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("CONFIG_LOOKUP_FAILED", "Failed to load calculation config", err)
	}
	if row == nil {
		return nil, NewBusinessError("CONFIG_NOT_FOUND", "Calculation config not found", ErrConfigNotFound)
	}
	if !row.IsEditable {
		return nil, NewBusinessError("CONFIG_NOT_EDITABLE", "Calculation config is not editable", ErrConfigNotEditable)
	}
	if r, ok := models.RangeForConfigKey(row.ConfigKey); ok && !r.Contains(req.ConfigValue) {
		return nil, NewBusinessErrorf("CONFIG_VALUE_OUT_OF_RANGE",
			"Value %g is outside the valid range %s for %s", ErrConfigValueOutOfRange,
			req.ConfigValue, r.String(), row.ConfigKey)
	}

	if err := f.configRepo.UpdateValue(ctx, id, req.ConfigValue, req.UpdatedBy); err != nil {
		return nil, NewBusinessError("CONFIG_UPDATE_FAILED", "Failed to update calculation config", err)
	}

	updated, err := f.configRepo.ByID(ctx, id)
	if err != nil || updated == nil {
		return nil, NewBusinessError("CONFIG_LOOKUP_FAILED", "Failed to reload calculation config", err)
	}

	return &dto.CalculationConfigResponse{Item: toConfigItem(updated)}, nil
}

// ResetConfig restores one row to its default value.
func (f *CalculationConfigFlowImpl) ResetConfig(ctx context.Context, id uint, updatedBy string) (*dto.CalculationConfigResponse, error) {
	row, err := f.configRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("CONFIG_LOOKUP_FAILED", "Failed to load calculation config", err)
	}
	if row == nil {
		return nil, NewBusinessError("CONFIG_NOT_FOUND", "Calculation config not found", ErrConfigNotFound)
	}

	if err := f.configRepo.UpdateValue(ctx, id, row.DefaultValue, updatedBy); err != nil {
		return nil, NewBusinessError("CONFIG_RESET_FAILED", "Failed to reset calculation config", err)
	}

	updated, err := f.configRepo.ByID(ctx, id)
	if err != nil || updated == nil {
		return nil, NewBusinessError("CONFIG_LOOKUP_FAILED", "Failed to reload calculation config", err)
	}

	return &dto.CalculationConfigResponse{Item: toConfigItem(updated)}, nil
}

// ResetAllConfigs restores every row to its default value in one transaction.
func (f *CalculationConfigFlowImpl) ResetAllConfigs(ctx context.Context, updatedBy string) (*dto.ResetAllConfigsResponse, error) {
	rows, err := f.configRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("CONFIG_LIST_FAILED", "Failed to list calculation configs", err)
	}

	reset := 0
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		for _, row := range rows {
			if row.ConfigValue == row.DefaultValue {
				continue
			}
			if err := f.configRepo.UpdateValue(txCtx, row.ID, row.DefaultValue, updatedBy); err != nil {
				return err
			}
			reset++
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("CONFIG_RESET_FAILED", "Failed to reset calculation configs", err)
	}

	return &dto.ResetAllConfigsResponse{ResetCount: reset}, nil
}

// EnsureSeeded inserts any missing default parameter rows. Existing rows are
// left untouched so operator edits survive restarts.
func (f *CalculationConfigFlowImpl) EnsureSeeded(ctx context.Context) error {
	for _, def := range models.DefaultCalculationConfigs() {
		existing, err := f.configRepo.ByConfigKey(ctx, def.ConfigKey)
		if err != nil {
			return NewBusinessError("CONFIG_SEED_FAILED", "Failed to check calculation config", err)
		}
		if existing != nil {
			continue
		}
		row := def
		if err := f.configRepo.Save(ctx, &row); err != nil {
			return NewBusinessError("CONFIG_SEED_FAILED", "Failed to seed calculation config", err)
		}
	}
	return nil
}

func toConfigItem(row *models.CalculationConfig) dto.CalculationConfigItem {
	item := dto.CalculationConfigItem{
		ID:           row.ID,
		ConfigKey:    row.ConfigKey,
		ConfigName:   row.ConfigName,
		ConfigValue:  row.ConfigValue,
		DefaultValue: row.DefaultValue,
		Unit:         row.Unit,
		Description:  row.Description,
		Category:     row.Category,
		IsEditable:   row.IsEditable,
		UpdatedBy:    row.UpdatedBy,
		UpdatedAt:    row.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if r, ok := models.RangeForConfigKey(row.ConfigKey); ok {
		item.ValidRange = r.String()
	}
	return item
}
