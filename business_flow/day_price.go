package businessflow

import (
	"context"
	"time"

	"github.com/openrv/pricing-engine/app/services"
	"github.com/openrv/pricing-engine/config"
	"github.com/openrv/pricing-engine/pricing"
	"github.com/openrv/pricing-engine/repository"
	"github.com/openrv/pricing-engine/utils"
)

// dayPriceResolver bundles the lookups shared by the calendar and adjustment
// flows: base price from the model's purchase data, factor windows from the
// collaborators, and the per-day demand figure.
type dayPriceResolver struct {
	configRepo   repository.CalculationConfigRepository
	modelCatalog services.ModelCatalog
	cityDemand   services.CityDemandSource
	holidays     services.HolidayCalendar
	customRules  services.CustomRuleSource
	cfg          *config.ProductionConfig
}

// baseRateForModel runs the base-rate calculator against the model's
// purchase data. A model with no purchase date is priced at the mid grade.
// The full result is returned so callers can snapshot the parameters that
// produced the price.
func (r *dayPriceResolver) baseRateForModel(ctx context.Context, model *services.Model) (*pricing.CalculationResult, error) {
	snapshot, err := configSnapshot(ctx, r.configRepo)
	if err != nil {
		return nil, NewBusinessError("CALC_CONFIG_LOAD_FAILED", "Failed to load calculation configs", err)
	}

	now := utils.UTCNow()
	in := pricing.CalculationInput{
		PurchasePrice: model.PurchasePrice,
		Config:        snapshot,
	}
	if model.PurchaseDate != nil {
		in.PurchaseDate = *model.PurchaseDate
	} else {
		in.PurchaseDate = now
		grade := pricing.ConditionGradeB
		in.Overrides.ConditionGrade = &grade
	}

	result, err := pricing.Calculate(in, now)
	if err != nil {
		return nil, mapCalculationError(err)
	}
	return result, nil
}

// lookupModel resolves a model or translates the miss into a business error.
func (r *dayPriceResolver) lookupModel(ctx context.Context, modelID string) (*services.Model, error) {
	model, err := r.modelCatalog.GetModel(ctx, modelID)
	if err != nil {
		return nil, NewBusinessError("MODEL_LOOKUP_FAILED", "Failed to look up model", err)
	}
	if model == nil {
		return nil, NewBusinessError("MODEL_NOT_FOUND", "Model not found", ErrModelNotFound)
	}
	return model, nil
}

// factorsForRange fetches holidays and custom rules once for a range. A
// collaborator failure degrades to the neutral factor instead of failing the
// whole request.
func (r *dayPriceResolver) factorsForRange(ctx context.Context, from, to time.Time) ([]pricing.Holiday, []pricing.CustomRule) {
	holidays, err := r.holidays.HolidaysInRange(ctx, from, to)
	if err != nil {
		holidays = nil
	}
	rules, err := r.customRules.RulesInRange(ctx, from, to)
	if err != nil {
		rules = nil
	}
	return holidays, rules
}

// dayInputFunc looks up the city demand factor for one day under its own
// timeout so a slow collaborator only costs that day.
func (r *dayPriceResolver) dayInputFunc(ctx context.Context, cityID string) func(date time.Time) pricing.DayInput {
	return func(date time.Time) pricing.DayInput {
		lookupCtx, cancel := context.WithTimeout(ctx, r.cfg.Collaborators.LookupTimeout)
		defer cancel()

		factor, err := r.cityDemand.DemandFactor(lookupCtx, cityID, date)
		if err != nil {
			return pricing.DayInput{LookupError: err}
		}
		return pricing.DayInput{CityFactor: factor}
	}
}

// dayQuote is one day's resolved price together with the factors behind it.
type dayQuote struct {
	price      float64
	cityFactor float64
	timeFactor float64
}

// effectiveDayPrice resolves one day's current price from the base price and
// both factors. The demand lookup error is returned so the caller can isolate
// the day instead of failing the batch.
func (r *dayPriceResolver) effectiveDayPrice(ctx context.Context, basePrice float64, cityID string, date time.Time, holidays []pricing.Holiday, rules []pricing.CustomRule) (dayQuote, error) {
	in := r.dayInputFunc(ctx, cityID)(date)
	if in.LookupError != nil {
		return dayQuote{}, in.LookupError
	}
	cityFactor, _ := pricing.ResolveCityFactor(in.CityFactor)
	tf := pricing.ResolveTimeFactor(date, holidays, rules)
	return dayQuote{
		price:      pricing.PriceDay(basePrice, cityFactor, tf.Factor),
		cityFactor: cityFactor,
		timeFactor: tf.Factor,
	}, nil
}
