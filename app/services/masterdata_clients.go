package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/openrv/pricing-engine/config"
	"github.com/openrv/pricing-engine/pricing"
)

// httpModelCatalog reads model master data over HTTP.
type httpModelCatalog struct {
	baseURL string
	client  *http.Client
}

// NewModelCatalog creates the HTTP client for the model catalog service.
func NewModelCatalog(cfg config.CollaboratorsConfig) ModelCatalog {
	return &httpModelCatalog{
		baseURL: cfg.ModelCatalogURL,
		client:  &http.Client{Timeout: cfg.LookupTimeout},
	}
}

func (c *httpModelCatalog) GetModel(ctx context.Context, modelID string) (*Model, error) {
	var model Model
	endpoint := fmt.Sprintf("%s/api/v1/models/%s", c.baseURL, url.PathEscape(modelID))
	found, err := getJSON(ctx, c.client, endpoint, &model)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &model, nil
}

func (c *httpModelCatalog) MarketSnapshot(ctx context.Context, modelID string) (*pricing.MarketData, error) {
	var snapshot struct {
		AveragePrice     float64   `json:"average_price"`
		CompetitorPrices []float64 `json:"competitor_prices"`
		MinPrice         float64   `json:"min_price"`
		MaxPrice         float64   `json:"max_price"`
	}
	endpoint := fmt.Sprintf("%s/api/v1/models/%s/market", c.baseURL, url.PathEscape(modelID))
	found, err := getJSON(ctx, c.client, endpoint, &snapshot)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &pricing.MarketData{
		AveragePrice:     snapshot.AveragePrice,
		CompetitorPrices: snapshot.CompetitorPrices,
		MinPrice:         snapshot.MinPrice,
		MaxPrice:         snapshot.MaxPrice,
	}, nil
}

// httpStoreDirectory reads store master data over HTTP.
type httpStoreDirectory struct {
	baseURL string
	client  *http.Client
}

// NewStoreDirectory creates the HTTP client for the store directory service.
func NewStoreDirectory(cfg config.CollaboratorsConfig) StoreDirectory {
	return &httpStoreDirectory{
		baseURL: cfg.StoreDirectoryURL,
		client:  &http.Client{Timeout: cfg.LookupTimeout},
	}
}

func (c *httpStoreDirectory) GetStore(ctx context.Context, storeID string) (*Store, error) {
	var store Store
	endpoint := fmt.Sprintf("%s/api/v1/stores/%s", c.baseURL, url.PathEscape(storeID))
	found, err := getJSON(ctx, c.client, endpoint, &store)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &store, nil
}

// httpVehicleDirectory reads vehicle master data over HTTP.
type httpVehicleDirectory struct {
	baseURL string
	client  *http.Client
}

// NewVehicleDirectory creates the HTTP client for the vehicle catalog service.
func NewVehicleDirectory(cfg config.CollaboratorsConfig) VehicleDirectory {
	return &httpVehicleDirectory{
		baseURL: cfg.VehicleCatalogURL,
		client:  &http.Client{Timeout: cfg.LookupTimeout},
	}
}

func (c *httpVehicleDirectory) GetVehicle(ctx context.Context, vehicleID string) (*Vehicle, error) {
	var vehicle Vehicle
	endpoint := fmt.Sprintf("%s/api/v1/vehicles/%s", c.baseURL, url.PathEscape(vehicleID))
	found, err := getJSON(ctx, c.client, endpoint, &vehicle)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &vehicle, nil
}
