package dto

// CalculationSnapshotDTO carries the parameters that produced a recorded
// price. Rates are fractions, matching the calculator's units.
type CalculationSnapshotDTO struct {
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

// PriceHistoryItem is one ledger entry as returned to callers.
type PriceHistoryItem struct {
	UUID             string                  `json:"uuid"`
	VehicleID        string                  `json:"vehicle_id"`
	PriceDate        string                  `json:"price_date"`
	OldPrice         *float64                `json:"old_price,omitempty"`
	NewPrice         float64                 `json:"new_price"`
	PriceChange      *float64                `json:"price_change,omitempty"`
	PriceChangePct   *float64                `json:"price_change_percent,omitempty"`
	ChangeReason     string                  `json:"change_reason"`
	ChangeReasonText string                  `json:"change_reason_text,omitempty"`
	PriceSource      string                  `json:"price_source"`
	OperatorID       string                  `json:"operator_id,omitempty"`
	CalcSnapshot     *CalculationSnapshotDTO `json:"calc_snapshot,omitempty"`
	CreatedAt        string                  `json:"created_at"`
}

// PriceHistoryResponse is a vehicle's ledger, most recent first.
type PriceHistoryResponse struct {
	VehicleID string             `json:"vehicle_id"`
	Items     []PriceHistoryItem `json:"items"`
	Total     int64              `json:"total"`
}

// PriceHistoryStatsResponse summarizes the whole ledger.
type PriceHistoryStatsResponse struct {
	TotalRecords           int64              `json:"total_records"`
	TotalVehicles          int64              `json:"total_vehicles"`
	RecentChanges          []PriceHistoryItem `json:"recent_changes"`
	AvgAbsolutePriceChange float64            `json:"avg_absolute_price_change"`
}

// RecordPriceChangeRequest appends a manual entry to the ledger.
type RecordPriceChangeRequest struct {
	VehicleID    string                  `json:"vehicle_id" validate:"required"`
	PriceDate    string                  `json:"price_date" validate:"required"`
	OldPrice     *float64                `json:"old_price,omitempty" validate:"omitempty,gte=0"`
	NewPrice     float64                 `json:"new_price" validate:"required,gte=0"`
	ChangeReason string                  `json:"change_reason" validate:"required,oneof=manual calculator batch_calculator system"`
	PriceSource  string                  `json:"price_source" validate:"required,oneof=manual calculated inherited"`
	Remark       string                  `json:"remark,omitempty"`
	OperatorID   string                  `json:"operator_id,omitempty"`
	CalcSnapshot *CalculationSnapshotDTO `json:"calc_snapshot,omitempty"`
}
