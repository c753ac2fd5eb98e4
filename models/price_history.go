package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChangeReason identifies what triggered a price change
type ChangeReason string

const (
	ChangeReasonManual          ChangeReason = "manual"
	ChangeReasonCalculator      ChangeReason = "calculator"
	ChangeReasonBatchCalculator ChangeReason = "batch_calculator"
	ChangeReasonSystem          ChangeReason = "system"
)

// IsValid checks if the change reason is valid
func (r ChangeReason) IsValid() bool {
	switch r {
	case ChangeReasonManual,
		ChangeReasonCalculator,
		ChangeReasonBatchCalculator,
		ChangeReasonSystem:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ChangeReason
func (r *ChangeReason) Scan(value any) error {
	if value == nil {
		*r = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*r = ChangeReason(v)
	case []byte:
		*r = ChangeReason(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ChangeReason", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ChangeReason
func (r ChangeReason) Value() (driver.Value, error) {
	return string(r), nil
}

// PriceSource identifies where the recorded price came from
type PriceSource string

const (
	PriceSourceManual     PriceSource = "manual"
	PriceSourceCalculated PriceSource = "calculated"
	PriceSourceInherited  PriceSource = "inherited"
)

// IsValid checks if the price source is valid
func (s PriceSource) IsValid() bool {
	switch s {
	case PriceSourceManual, PriceSourceCalculated, PriceSourceInherited:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PriceSource
func (s *PriceSource) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = PriceSource(v)
	case []byte:
		*s = PriceSource(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PriceSource", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PriceSource
func (s PriceSource) Value() (driver.Value, error) {
	return string(s), nil
}

// CalculationSnapshot captures the parameters that produced a calculated price
// so the ledger can explain any historical value without replaying config state.
type CalculationSnapshot struct {
	PurchasePrice       float64 `json:"purchase_price,omitempty"`
	ConditionGrade      string  `json:"condition_grade,omitempty"`
	ConditionFactor     float64 `json:"condition_factor,omitempty"`
	TargetAnnualReturn  float64 `json:"target_annual_return,omitempty"`
	InvestmentPeriod    float64 `json:"investment_period,omitempty"`
	ResidualValueRate   float64 `json:"residual_value_rate,omitempty"`
	AnnualOperatingRate float64 `json:"annual_operating_rate,omitempty"`
	OperatingCostRate   float64 `json:"operating_cost_rate,omitempty"`
	CityFactor          float64 `json:"city_factor,omitempty"`
	TimeFactor          float64 `json:"time_factor,omitempty"`
	Strategy            string  `json:"strategy,omitempty"`
}

// Value implements the driver.Valuer interface for CalculationSnapshot
func (s CalculationSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for CalculationSnapshot
func (s *CalculationSnapshot) Scan(value any) error {
	if value == nil {
		*s = CalculationSnapshot{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CalculationSnapshot", value)
	}

	return json.Unmarshal(bytes, s)
}

// PriceHistoryRecord is one entry of the append-only price ledger. Records are
// only ever inserted; corrections happen by appending a new record.
// Table: price_history_records
type PriceHistoryRecord struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:uk_price_history_records_uuid" json:"uuid"`
	VehicleID     string               `gorm:"size:64;not null;index:idx_price_history_records_vehicle_id" json:"vehicle_id"`
	PriceDate     time.Time            `gorm:"type:date;not null;index:idx_price_history_records_price_date" json:"price_date"`
	OldPrice      *float64             `gorm:"type:numeric(12,2)" json:"old_price,omitempty"`
	NewPrice      float64              `gorm:"type:numeric(12,2);not null" json:"new_price"`
	ChangeReason  ChangeReason         `gorm:"size:32;not null;index:idx_price_history_records_change_reason" json:"change_reason"`
	PriceSource   PriceSource          `gorm:"size:32;not null" json:"price_source"`
	OperatorID    string               `gorm:"size:128" json:"operator_id"`
	Remark        *string              `gorm:"type:text" json:"remark,omitempty"`
	CalcSnapshot  *CalculationSnapshot `gorm:"type:jsonb" json:"calc_snapshot,omitempty"`
	EffectiveFrom *time.Time           `gorm:"type:date" json:"effective_from,omitempty"`
	EffectiveTo   *time.Time           `gorm:"type:date" json:"effective_to,omitempty"`
	CreatedAt     time.Time            `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_price_history_records_created_at" json:"created_at"`
}

// TableName returns the table name for the model
func (PriceHistoryRecord) TableName() string {
	return "price_history_records"
}

// BeforeCreate is called before creating a new record
func (p *PriceHistoryRecord) BeforeCreate() error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return nil
}

// PriceChange returns the signed delta against the previous price, if known.
func (p *PriceHistoryRecord) PriceChange() *float64 {
	if p.OldPrice == nil {
		return nil
	}
	d := p.NewPrice - *p.OldPrice
	return &d
}

// PriceHistoryFilter represents filter criteria for ledger queries.
type PriceHistoryFilter struct {
	VehicleID     *string       `json:"vehicle_id,omitempty"`
	ChangeReason  *ChangeReason `json:"change_reason,omitempty"`
	PriceSource   *PriceSource  `json:"price_source,omitempty"`
	PriceDateFrom *time.Time    `json:"price_date_from,omitempty"`
	PriceDateTo   *time.Time    `json:"price_date_to,omitempty"`
	CreatedAfter  *time.Time    `json:"created_after,omitempty"`
	CreatedBefore *time.Time    `json:"created_before,omitempty"`
}
