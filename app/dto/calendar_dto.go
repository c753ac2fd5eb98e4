package dto

// PriceCalendarRequest represents the query for a priced calendar.
type PriceCalendarRequest struct {
	ModelID   string `json:"model_id" query:"model_id" validate:"required"`
	StoreID   string `json:"store_id" query:"store_id" validate:"required"`
	StartDate string `json:"start_date" query:"start_date" validate:"required"`
	EndDate   string `json:"end_date" query:"end_date" validate:"required"`
}

// DayPriceDetailRequest represents the query for one day's price detail.
type DayPriceDetailRequest struct {
	ModelID string `json:"model_id" query:"model_id" validate:"required"`
	CityID  string `json:"city_id" query:"city_id" validate:"required"`
	Date    string `json:"date" query:"date" validate:"required"`
}

// CalendarDayDTO is one priced day. Price is null when the day failed.
type CalendarDayDTO struct {
	Date        string   `json:"date"`
	Price       *float64 `json:"price"`
	CityFactor  float64  `json:"city_factor"`
	TimeFactor  float64  `json:"time_factor"`
	Source      string   `json:"source,omitempty"`
	HolidayName string   `json:"holiday_name,omitempty"`
	RuleName    string   `json:"rule_name,omitempty"`
	Notes       []string `json:"notes,omitempty"`
	ErrorNote   string   `json:"error_note,omitempty"`
}

// CalendarSummaryDTO aggregates the priced days.
type CalendarSummaryDTO struct {
	TotalDays    int     `json:"total_days"`
	PricedDays   int     `json:"priced_days"`
	AveragePrice float64 `json:"average_price"`
	MaxPrice     float64 `json:"max_price"`
	MinPrice     float64 `json:"min_price"`
}

// PriceCalendarResponse is the priced range plus context and summary.
type PriceCalendarResponse struct {
	ModelID   string             `json:"model_id"`
	ModelName string             `json:"model_name"`
	StoreID   string             `json:"store_id"`
	CityID    string             `json:"city_id"`
	CityName  string             `json:"city_name"`
	BasePrice float64            `json:"base_price"`
	Calendar  []CalendarDayDTO   `json:"calendar"`
	Summary   CalendarSummaryDTO `json:"summary"`
}

// DayPriceDetailResponse is one day's price with its resolution trail.
type DayPriceDetailResponse struct {
	ModelID     string   `json:"model_id"`
	CityID      string   `json:"city_id"`
	Date        string   `json:"date"`
	BasePrice   float64  `json:"base_price"`
	CityFactor  float64  `json:"city_factor"`
	TimeFactor  float64  `json:"time_factor"`
	DailyRental float64  `json:"daily_rental"`
	Source      string   `json:"source,omitempty"`
	HolidayName string   `json:"holiday_name,omitempty"`
	RuleName    string   `json:"rule_name,omitempty"`
	Notes       []string `json:"notes,omitempty"`
}
