package dto

// StrategyCandidateDTO is one strategy's proposal for a vehicle.
type StrategyCandidateDTO struct {
	StrategyID     string     `json:"strategy_id"`
	StrategyName   string     `json:"strategy_name"`
	SuggestedPrice float64    `json:"suggested_price"`
	Confidence     int        `json:"confidence"`
	Reasoning      []string   `json:"reasoning"`
	Impact         *ImpactDTO `json:"impact,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// ImpactDTO describes the expected effect of adopting a candidate price.
type ImpactDTO struct {
	RevenueChangePercent float64 `json:"revenue_change_percent"`
	Competitiveness      string  `json:"competitiveness"`
	MarketPosition       string  `json:"market_position"`
}

// MarketComparisonDTO positions the vehicle in the same-model market.
type MarketComparisonDTO struct {
	AveragePrice    float64 `json:"average_price"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	CompetitorCount int     `json:"competitor_count"`
	Position        string  `json:"position"`
}

// HistoricalReferenceDTO summarizes the vehicle's ledger context.
type HistoricalReferenceDTO struct {
	AverageHistoricalPrice float64 `json:"average_historical_price"`
	AdjustmentsPerMonth    float64 `json:"adjustments_per_month"`
	LastAdjustmentDate     string  `json:"last_adjustment_date,omitempty"`
	LastAdjustmentReason   string  `json:"last_adjustment_reason,omitempty"`
}

// PricingSuggestionResponse is the full multi-strategy suggestion for one vehicle.
type PricingSuggestionResponse struct {
	VehicleID           string                  `json:"vehicle_id"`
	CurrentPrice        float64                 `json:"current_price"`
	Candidates          []StrategyCandidateDTO  `json:"candidates"`
	MarketComparison    *MarketComparisonDTO    `json:"market_comparison,omitempty"`
	HistoricalReference *HistoricalReferenceDTO `json:"historical_reference,omitempty"`
	Notes               []string                `json:"notes,omitempty"`
}

// BatchSuggestionsRequest asks for suggestions for many vehicles at once.
type BatchSuggestionsRequest struct {
	VehicleIDs []string `json:"vehicle_ids" validate:"required,min=1,max=200,dive,required"`
}

// BatchSuggestionItem is one vehicle's result or error marker. Items come
// back in the caller-supplied order.
type BatchSuggestionItem struct {
	VehicleID  string                     `json:"vehicle_id"`
	Suggestion *PricingSuggestionResponse `json:"suggestion,omitempty"`
	Error      string                     `json:"error,omitempty"`
}

// BatchSuggestionsSummary aggregates the successful items of a batch.
type BatchSuggestionsSummary struct {
	TotalVehicles         int     `json:"total_vehicles"`
	SucceededVehicles     int     `json:"succeeded_vehicles"`
	FailedVehicles        int     `json:"failed_vehicles"`
	AvgCurrentPrice       float64 `json:"avg_current_price"`
	AvgSuggestedPrice     float64 `json:"avg_suggested_price"`
	VehiclesNeedingAdjust int     `json:"vehicles_needing_adjustment"`
}

// BatchSuggestionsResponse is the per-vehicle results plus batch summary.
type BatchSuggestionsResponse struct {
	Items   []BatchSuggestionItem   `json:"items"`
	Summary BatchSuggestionsSummary `json:"summary"`
}
