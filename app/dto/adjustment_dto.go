package dto

// Batch adjustment modes.
const (
	AdjustModeAddFactor     = "add_factor"
	AdjustModeOverridePrice = "override_price"

	FactorTypePercentage = "percentage"
	FactorTypeFixed      = "fixed"
)

// BatchAdjustmentRequest represents a bulk what-if adjustment over a set of
// dates. add_factor applies a named percentage or fixed delta to each date's
// current price; override_price replaces it outright.
type BatchAdjustmentRequest struct {
	VehicleID     string   `json:"vehicle_id" validate:"required"`
	ModelID       string   `json:"model_id" validate:"required"`
	CityID        string   `json:"city_id" validate:"required"`
	Dates         []string `json:"dates" validate:"required,min=1,dive,required"`
	AdjustType    string   `json:"adjust_type" validate:"required,oneof=add_factor override_price"`
	FactorName    string   `json:"factor_name,omitempty"`
	FactorType    string   `json:"factor_type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	FactorValue   *float64 `json:"factor_value,omitempty"`
	OverridePrice *float64 `json:"override_price,omitempty" validate:"omitempty,gt=0"`
	Reason        string   `json:"reason" validate:"required"`
	OperatorID    string   `json:"operator_id,omitempty"`
}

// AdjustmentPreviewItem is the old-to-new price delta for one date.
type AdjustmentPreviewItem struct {
	Date             string  `json:"date"`
	OldPrice         float64 `json:"old_price"`
	NewPrice         float64 `json:"new_price"`
	ChangeAmount     float64 `json:"change_amount"`
	ChangePercentage float64 `json:"change_percentage"`
	ErrorNote        string  `json:"error_note,omitempty"`
}

// BatchAdjustmentPreviewResponse is the dry-run result. Nothing is persisted.
type BatchAdjustmentPreviewResponse struct {
	AffectedDates []string                `json:"affected_dates"`
	AffectedCount int                     `json:"affected_count"`
	PreviewData   []AdjustmentPreviewItem `json:"preview_data"`
}

// BatchAdjustmentCommitResponse reports how many ledger records were written.
type BatchAdjustmentCommitResponse struct {
	CommittedCount int `json:"committed_count"`
}
