package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/openrv/pricing-engine/config"
	"github.com/openrv/pricing-engine/pricing"
	"github.com/openrv/pricing-engine/utils"
)

// httpCityDemandSource reads city demand factors over HTTP.
type httpCityDemandSource struct {
	baseURL string
	client  *http.Client
}

// NewCityDemandSource creates the HTTP client for the city demand service.
func NewCityDemandSource(cfg config.CollaboratorsConfig) CityDemandSource {
	return &httpCityDemandSource{
		baseURL: cfg.CityDemandURL,
		client:  &http.Client{Timeout: cfg.LookupTimeout},
	}
}

func (c *httpCityDemandSource) DemandFactor(ctx context.Context, cityID string, date time.Time) (*float64, error) {
	var out struct {
		Factor float64 `json:"factor"`
	}
	endpoint := fmt.Sprintf("%s/api/v1/cities/%s/demand?date=%s",
		c.baseURL, url.PathEscape(cityID), utils.FormatDate(date))
	found, err := getJSON(ctx, c.client, endpoint, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out.Factor, nil
}

// httpHolidayCalendar reads national holidays over HTTP.
type httpHolidayCalendar struct {
	baseURL string
	client  *http.Client
}

// NewHolidayCalendar creates the HTTP client for the holiday calendar service.
func NewHolidayCalendar(cfg config.CollaboratorsConfig) HolidayCalendar {
	return &httpHolidayCalendar{
		baseURL: cfg.HolidayURL,
		client:  &http.Client{Timeout: cfg.LookupTimeout},
	}
}

func (c *httpHolidayCalendar) HolidaysInRange(ctx context.Context, from, to time.Time) ([]pricing.Holiday, error) {
	var holidays []pricing.Holiday
	endpoint := fmt.Sprintf("%s/api/v1/holidays?from=%s&to=%s",
		c.baseURL, utils.FormatDate(from), utils.FormatDate(to))
	found, err := getJSON(ctx, c.client, endpoint, &holidays)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return holidays, nil
}

// httpCustomRuleSource reads operator time-factor rules over HTTP.
type httpCustomRuleSource struct {
	baseURL string
	client  *http.Client
}

// NewCustomRuleSource creates the HTTP client for the pricing rule service.
func NewCustomRuleSource(cfg config.CollaboratorsConfig) CustomRuleSource {
	return &httpCustomRuleSource{
		baseURL: cfg.CustomRuleURL,
		client:  &http.Client{Timeout: cfg.LookupTimeout},
	}
}

func (c *httpCustomRuleSource) RulesInRange(ctx context.Context, from, to time.Time) ([]pricing.CustomRule, error) {
	var rules []pricing.CustomRule
	endpoint := fmt.Sprintf("%s/api/v1/rules?from=%s&to=%s",
		c.baseURL, utils.FormatDate(from), utils.FormatDate(to))
	found, err := getJSON(ctx, c.client, endpoint, &rules)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return rules, nil
}
