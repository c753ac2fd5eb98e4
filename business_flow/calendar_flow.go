package businessflow

import (
	"context"

	"github.com/openrv/pricing-engine/app/dto"
	"github.com/openrv/pricing-engine/app/services"
	"github.com/openrv/pricing-engine/config"
	"github.com/openrv/pricing-engine/pricing"
	"github.com/openrv/pricing-engine/repository"
	"github.com/openrv/pricing-engine/utils"
)

// CalendarFlow produces priced calendars and single-day price details for a
// model in a city.
type CalendarFlow interface {
	GetPriceCalendar(ctx context.Context, req *dto.PriceCalendarRequest) (*dto.PriceCalendarResponse, error)
	GetDayPriceDetail(ctx context.Context, req *dto.DayPriceDetailRequest) (*dto.DayPriceDetailResponse, error)
}

type CalendarFlowImpl struct {
	resolver       dayPriceResolver
	storeDirectory services.StoreDirectory
	cfg            *config.ProductionConfig
}

func NewCalendarFlow(
	configRepo repository.CalculationConfigRepository,
	modelCatalog services.ModelCatalog,
	storeDirectory services.StoreDirectory,
	cityDemand services.CityDemandSource,
	holidays services.HolidayCalendar,
	customRules services.CustomRuleSource,
	cfg *config.ProductionConfig,
) CalendarFlow {
	return &CalendarFlowImpl{
		resolver: dayPriceResolver{
			configRepo:   configRepo,
			modelCatalog: modelCatalog,
			cityDemand:   cityDemand,
			holidays:     holidays,
			customRules:  customRules,
			cfg:          cfg,
		},
		storeDirectory: storeDirectory,
		cfg:            cfg,
	}
}

// GetPriceCalendar prices every day in the requested range for one model at
// one store. The store resolves the city once; holidays and custom rules are
// fetched once for the whole range; the city demand factor is looked up per
// day and a failed day never aborts its neighbours.
func (f *CalendarFlowImpl) GetPriceCalendar(ctx context.Context, req *dto.PriceCalendarRequest) (*dto.PriceCalendarResponse, error) {
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, NewBusinessError("CALENDAR_DATE_INVALID", "Start date is not a valid calendar date", ErrDateInvalid)
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return nil, NewBusinessError("CALENDAR_DATE_INVALID", "End date is not a valid calendar date", ErrDateInvalid)
	}
	if end.Before(start) {
		return nil, NewBusinessError("CALENDAR_RANGE_INVALID", "End date cannot be before start date", ErrDateRangeInvalid)
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > f.cfg.Pricing.MaxCalendarDays {
		return nil, NewBusinessErrorf("CALENDAR_RANGE_TOO_LARGE",
			"Date range spans %d days; the maximum is %d", ErrDateRangeTooLarge,
			days, f.cfg.Pricing.MaxCalendarDays)
	}

	store, err := f.storeDirectory.GetStore(ctx, req.StoreID)
	if err != nil {
		return nil, NewBusinessError("CALENDAR_STORE_LOOKUP_FAILED", "Failed to look up store", err)
	}
	if store == nil {
		return nil, NewBusinessError("CALENDAR_STORE_NOT_FOUND", "Store not found", ErrStoreNotFound)
	}
	model, err := f.resolver.lookupModel(ctx, req.ModelID)
	if err != nil {
		return nil, err
	}

	base, err := f.resolver.baseRateForModel(ctx, model)
	if err != nil {
		return nil, err
	}
	basePrice := base.SuggestedPrice

	holidays, rules := f.resolver.factorsForRange(ctx, start, end)

	cal, err := pricing.GenerateCalendar(basePrice, start, end, f.resolver.dayInputFunc(ctx, store.CityID), holidays, rules)
	if err != nil {
		return nil, NewBusinessError("CALENDAR_GENERATION_FAILED", "Failed to generate price calendar", err)
	}

	days := make([]dto.CalendarDayDTO, 0, len(cal.Days))
	for _, d := range cal.Days {
		days = append(days, dto.CalendarDayDTO{
			Date:        utils.FormatDate(d.Date),
			Price:       d.Price,
			CityFactor:  d.CityFactor,
			TimeFactor:  d.TimeFactor,
			Source:      string(d.Source),
			HolidayName: d.HolidayName,
			RuleName:    d.RuleName,
			Notes:       d.Notes,
			ErrorNote:   d.ErrorNote,
		})
	}

	return &dto.PriceCalendarResponse{
		ModelID:   model.ID,
		ModelName: model.Name,
		StoreID:   store.ID,
		CityID:    store.CityID,
		CityName:  store.CityName,
		BasePrice: basePrice,
		Calendar:  days,
		Summary: dto.CalendarSummaryDTO{
			TotalDays:    cal.Summary.TotalDays,
			PricedDays:   cal.Summary.PricedDays,
			AveragePrice: cal.Summary.AveragePrice,
			MaxPrice:     cal.Summary.MaxPrice,
			MinPrice:     cal.Summary.MinPrice,
		},
	}, nil
}

// GetDayPriceDetail resolves one day's price with its full factor trail.
func (f *CalendarFlowImpl) GetDayPriceDetail(ctx context.Context, req *dto.DayPriceDetailRequest) (*dto.DayPriceDetailResponse, error) {
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, NewBusinessError("CALENDAR_DATE_INVALID", "Date is not a valid calendar date", ErrDateInvalid)
	}

	model, err := f.resolver.lookupModel(ctx, req.ModelID)
	if err != nil {
		return nil, err
	}

	base, err := f.resolver.baseRateForModel(ctx, model)
	if err != nil {
		return nil, err
	}
	basePrice := base.SuggestedPrice

	holidays, rules := f.resolver.factorsForRange(ctx, date, date)

	var notes []string
	in := f.resolver.dayInputFunc(ctx, req.CityID)(date)
	if in.LookupError != nil {
		notes = append(notes, "city demand factor lookup failed; using neutral 1.0")
		in.CityFactor = nil
	}
	cityFactor, note := pricing.ResolveCityFactor(in.CityFactor)
	if note != "" {
		notes = append(notes, note)
	}
	tf := pricing.ResolveTimeFactor(date, holidays, rules)
	price := pricing.PriceDay(basePrice, cityFactor, tf.Factor)

	return &dto.DayPriceDetailResponse{
		ModelID:     model.ID,
		CityID:      req.CityID,
		Date:        utils.FormatDate(date),
		BasePrice:   basePrice,
		CityFactor:  cityFactor,
		TimeFactor:  tf.Factor,
		DailyRental: price,
		Source:      string(tf.Source),
		HolidayName: tf.HolidayName,
		RuleName:    tf.RuleName,
		Notes:       notes,
	}, nil
}
