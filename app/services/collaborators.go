// Package services contains clients for external collaborator services. The
// pricing engine owns no master data; vehicles, models, stores, cities,
// holidays and custom rules are all read through the narrow interfaces here.
// A miss is (nil, nil) so callers can degrade to neutral behavior instead of
// failing a whole calculation.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openrv/pricing-engine/pricing"
)

// Model is the master-data record of a vehicle model.
type Model struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	PurchasePrice float64    `json:"purchase_price"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
}

// Store is the master-data record of a rental store.
type Store struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	CityID   string `json:"city_id"`
	CityName string `json:"city_name"`
}

// Vehicle is the master-data record of one rentable vehicle.
type Vehicle struct {
	ID             string     `json:"id"`
	ModelID        string     `json:"model_id"`
	StoreID        string     `json:"store_id"`
	CurrentPrice   float64    `json:"current_price"`
	PurchasePrice  *float64   `json:"purchase_price,omitempty"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	MileageKm      *float64   `json:"mileage_km,omitempty"`
	ConditionGrade *string    `json:"condition_grade,omitempty"`
}

// ModelCatalog reads vehicle model master data.
type ModelCatalog interface {
	GetModel(ctx context.Context, modelID string) (*Model, error)
	MarketSnapshot(ctx context.Context, modelID string) (*pricing.MarketData, error)
}

// StoreDirectory reads store master data.
type StoreDirectory interface {
	GetStore(ctx context.Context, storeID string) (*Store, error)
}

// VehicleDirectory reads vehicle master data.
type VehicleDirectory interface {
	GetVehicle(ctx context.Context, vehicleID string) (*Vehicle, error)
}

// CityDemandSource reads the demand factor of a city for a day. A nil factor
// means the collaborator has no figure for that city and day.
type CityDemandSource interface {
	DemandFactor(ctx context.Context, cityID string, date time.Time) (*float64, error)
}

// HolidayCalendar lists national holidays in a date range.
type HolidayCalendar interface {
	HolidaysInRange(ctx context.Context, from, to time.Time) ([]pricing.Holiday, error)
}

// CustomRuleSource lists operator-defined time factor rules touching a range.
type CustomRuleSource interface {
	RulesInRange(ctx context.Context, from, to time.Time) ([]pricing.CustomRule, error)
}

// getJSON performs a GET against a collaborator endpoint and decodes the JSON
// body into out. 404 reports a miss via (false, nil).
func getJSON(ctx context.Context, client *http.Client, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("collaborator http status %d for %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}
