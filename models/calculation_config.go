package models

import (
	"fmt"
	"time"
)

// CalculationConfig categories.
const (
	ConfigCategoryFinancial   = "financial"
	ConfigCategoryOperational = "operational"
	ConfigCategoryCondition   = "condition"
)

// Well-known configuration keys for the base-rate financial model.
// Percent-valued keys store their value in percent units (e.g. 3.0 == 3%).
const (
	ConfigKeyTargetAnnualReturn  = "TARGET_ANNUAL_RETURN"
	ConfigKeyInvestmentPeriod    = "INVESTMENT_PERIOD"
	ConfigKeyResidualValueRate   = "RESIDUAL_VALUE_RATE"
	ConfigKeyAnnualOperatingRate = "ANNUAL_OPERATING_RATE"
	ConfigKeyOperatingCostRate   = "OPERATING_COST_RATE"
)

// CalculationConfig stores one editable financial/operational parameter of the
// base-rate calculator. Rows are seeded at first run and only mutated through
// validated update/reset operations; they are never deleted.
// Table: calculation_configs
type CalculationConfig struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ConfigKey    string    `gorm:"size:64;not null;uniqueIndex:idx_calculation_configs_key" json:"config_key"`
	ConfigName   string    `gorm:"size:128;not null" json:"config_name"`
	ConfigValue  float64   `gorm:"type:numeric(12,4);not null" json:"config_value"`
	DefaultValue float64   `gorm:"type:numeric(12,4);not null" json:"default_value"`
	Unit         string    `gorm:"size:16;not null" json:"unit"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"size:32;not null;index:idx_calculation_configs_category" json:"category"`
	IsEditable   bool      `gorm:"not null;default:true" json:"is_editable"`
	UpdatedBy    string    `gorm:"size:128" json:"updated_by"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CalculationConfig) TableName() string { return "calculation_configs" }

// CalculationConfigFilter represents filter criteria for config queries.
type CalculationConfigFilter struct {
	ID        *uint   `json:"id,omitempty"`
	ConfigKey *string `json:"config_key,omitempty"`
	Category  *string `json:"category,omitempty"`
}

// ConfigRange is the documented valid range for one configuration key.
// Bounds are in the stored (percent or year) units.
type ConfigRange struct {
	Min          float64
	Max          float64
	MinExclusive bool
	MaxExclusive bool
}

// Contains reports whether v lies within the range.
func (r ConfigRange) Contains(v float64) bool {
	if r.MinExclusive {
		if v <= r.Min {
			return false
		}
	} else if v < r.Min {
		return false
	}
	if r.MaxExclusive {
		if v >= r.Max {
			return false
		}
	} else if v > r.Max {
		return false
	}
	return true
}

func (r ConfigRange) String() string {
	lo, hi := "[", "]"
	if r.MinExclusive {
		lo = "("
	}
	if r.MaxExclusive {
		hi = ")"
	}
	return fmt.Sprintf("%s%g, %g%s", lo, r.Min, r.Max, hi)
}

// configRanges holds the documented valid range per key.
var configRanges = map[string]ConfigRange{
	ConfigKeyTargetAnnualReturn:  {Min: 0, Max: 50},
	ConfigKeyInvestmentPeriod:    {Min: 1, Max: 30},
	ConfigKeyResidualValueRate:   {Min: 0, Max: 100},
	ConfigKeyAnnualOperatingRate: {Min: 0, Max: 100, MinExclusive: true},
	ConfigKeyOperatingCostRate:   {Min: 0, Max: 100, MaxExclusive: true},
}

// RangeForConfigKey returns the documented valid range for a key.
func RangeForConfigKey(key string) (ConfigRange, bool) {
	r, ok := configRanges[key]
	return r, ok
}

// DefaultCalculationConfigs returns the built-in parameter set used to seed
// the store at first run and to serve reset operations.
func DefaultCalculationConfigs() []CalculationConfig {
	return []CalculationConfig{
		{
			ConfigKey:    ConfigKeyTargetAnnualReturn,
			ConfigName:   "Target annual return",
			ConfigValue:  3.0,
			DefaultValue: 3.0,
			Unit:         "%",
			Description:  "Target annualized return on the vehicle investment",
			Category:     ConfigCategoryFinancial,
			IsEditable:   true,
		},
		{
			ConfigKey:    ConfigKeyInvestmentPeriod,
			ConfigName:   "Investment period",
			ConfigValue:  5,
			DefaultValue: 5,
			Unit:         "yr",
			Description:  "Expected service life of the vehicle investment",
			Category:     ConfigCategoryFinancial,
			IsEditable:   true,
		},
		{
			ConfigKey:    ConfigKeyResidualValueRate,
			ConfigName:   "Residual value rate",
			ConfigValue:  30.0,
			DefaultValue: 30.0,
			Unit:         "%",
			Description:  "Residual value at end of period as a share of purchase price",
			Category:     ConfigCategoryFinancial,
			IsEditable:   true,
		},
		{
			ConfigKey:    ConfigKeyAnnualOperatingRate,
			ConfigName:   "Annual operating rate",
			ConfigValue:  30.0,
			DefaultValue: 30.0,
			Unit:         "%",
			Description:  "Share of the year the vehicle is actually rented out (365 x 30% = 109.5 days)",
			Category:     ConfigCategoryOperational,
			IsEditable:   true,
		},
		{
			ConfigKey:    ConfigKeyOperatingCostRate,
			ConfigName:   "Operating cost rate",
			ConfigValue:  40.0,
			DefaultValue: 40.0,
			Unit:         "%",
			Description:  "Maintenance, insurance and management cost as a share of gross revenue",
			Category:     ConfigCategoryOperational,
			IsEditable:   true,
		},
	}
}
