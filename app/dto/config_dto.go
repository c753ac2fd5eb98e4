package dto

// CalculationConfigItem is one editable parameter row.
type CalculationConfigItem struct {
	ID           uint    `json:"id"`
	ConfigKey    string  `json:"config_key"`
	ConfigName   string  `json:"config_name"`
	ConfigValue  float64 `json:"config_value"`
	DefaultValue float64 `json:"default_value"`
	Unit         string  `json:"unit"`
	Description  string  `json:"description,omitempty"`
	Category     string  `json:"category"`
	IsEditable   bool    `json:"is_editable"`
	ValidRange   string  `json:"valid_range,omitempty"`
	UpdatedBy    string  `json:"updated_by,omitempty"`
	UpdatedAt    string  `json:"updated_at"`
}

// ListCalculationConfigsResponse lists parameter rows, optionally filtered
// by category.
type ListCalculationConfigsResponse struct {
	Items []CalculationConfigItem `json:"items"`
}

// UpdateCalculationConfigRequest updates one parameter value. The value is
// validated against the documented range for the row's key.
type UpdateCalculationConfigRequest struct {
	ConfigValue float64 `json:"config_value" validate:"required"`
	UpdatedBy   string  `json:"updated_by" validate:"required"`
}

// CalculationConfigResponse returns the row after an update or reset.
type CalculationConfigResponse struct {
	Item CalculationConfigItem `json:"item"`
}

// ResetAllConfigsResponse reports how many rows were restored to defaults.
type ResetAllConfigsResponse struct {
	ResetCount int `json:"reset_count"`
}
