package pricing

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// Strategy identifiers of the built-in strategy set.
const (
	StrategyMarketBased      = "market_based"
	StrategyRevenueOptimized = "revenue_optimized"
	StrategyCompetitive      = "competitive"
	StrategyBalanced         = "balanced"
)

// VehicleSnapshot is the vehicle data a strategy works from. Pointer fields
// are optional; strategies degrade to neutral adjustments when they are nil.
type VehicleSnapshot struct {
	VehicleID      string
	ModelID        string
	CurrentPrice   float64
	PurchasePrice  *float64
	PurchaseDate   *time.Time
	MileageKm      *float64
	ConditionGrade *ConditionGrade
}

// HasCompleteData reports whether all optional vehicle fields are present.
func (v VehicleSnapshot) HasCompleteData() bool {
	return v.PurchasePrice != nil && v.PurchaseDate != nil && v.MileageKm != nil
}

// Grade returns the explicit grade when set, otherwise the age-detected grade,
// otherwise B.
func (v VehicleSnapshot) Grade(now time.Time) ConditionGrade {
	if v.ConditionGrade != nil && v.ConditionGrade.IsValid() {
		return *v.ConditionGrade
	}
	if v.PurchaseDate != nil {
		return DetectGrade(*v.PurchaseDate, now).Grade
	}
	return ConditionGradeB
}

// MarketData summarizes same-model market pricing for the strategies.
type MarketData struct {
	AveragePrice     float64
	CompetitorPrices []float64
	MinPrice         float64
	MaxPrice         float64
}

// StrategyContext is the full input handed to a strategy run.
type StrategyContext struct {
	Vehicle VehicleSnapshot
	Market  MarketData
	Config  ConfigSnapshot
	Now     time.Time
}

// Candidate is one strategy's priced proposal.
type Candidate struct {
	Price     float64
	Reasoning []string
}

// Strategy computes a price candidate from a context. Implementations must be
// pure so the registry can run them concurrently.
type Strategy interface {
	ID() string
	Name() string
	Compute(ctx StrategyContext) (Candidate, error)
}

// Registry is an open set of strategies. Aggregation never depends on which
// strategies are registered, so new ones plug in without engine changes.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	order      []string
}

// NewRegistry returns an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds or replaces a strategy by its ID.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.strategies[s.ID()]; !exists {
		r.order = append(r.order, s.ID())
	}
	r.strategies[s.ID()] = s
}

// Lookup returns the strategy registered under id.
func (r *Registry) Lookup(id string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[id]
	return s, ok
}

// IDs returns the registered strategy IDs in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// DefaultRegistry holds the built-in strategy set.
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register(marketBasedStrategy{})
	DefaultRegistry.Register(revenueOptimizedStrategy{})
	DefaultRegistry.Register(competitiveStrategy{})
	DefaultRegistry.Register(balancedStrategy{})
}

// Confidence scores a suggestion on data quality. Base 70, plus 10 for a
// well-covered market, 10 for complete vehicle data and 10 for the balanced
// strategy, capped at 95.
func Confidence(v VehicleSnapshot, m MarketData, strategyID string) int {
	confidence := 70
	if len(m.CompetitorPrices) >= 5 {
		confidence += 10
	}
	if v.HasCompleteData() {
		confidence += 10
	}
	if strategyID == StrategyBalanced {
		confidence += 10
	}
	if confidence > 95 {
		confidence = 95
	}
	return confidence
}

// Competitiveness levels of a suggested price against the market average.
const (
	CompetitivenessHigh   = "high"
	CompetitivenessMedium = "medium"
	CompetitivenessLow    = "low"
)

// Impact describes the expected effect of moving to the suggested price.
type Impact struct {
	RevenueChangePercent float64 `json:"revenue_change_percent"`
	Competitiveness      string  `json:"competitiveness"`
	MarketPosition       string  `json:"market_position"`
}

// EvaluateImpact compares a suggested price against the current price and the
// market average. Ratio cutoffs 0.9 and 1.1 split the competitiveness levels.
func EvaluateImpact(currentPrice, suggestedPrice float64, m MarketData) Impact {
	impact := Impact{Competitiveness: CompetitivenessMedium}
	if currentPrice > 0 {
		impact.RevenueChangePercent = math.Round((suggestedPrice-currentPrice)/currentPrice*1000) / 10
	}
	if m.AveragePrice <= 0 {
		impact.MarketPosition = "no market reference available"
		return impact
	}

	ratio := suggestedPrice / m.AveragePrice
	switch {
	case ratio < 0.9:
		impact.Competitiveness = CompetitivenessHigh
	case ratio > 1.1:
		impact.Competitiveness = CompetitivenessLow
	}

	switch {
	case ratio < 0.85:
		impact.MarketPosition = "well below market average; strong value positioning"
	case ratio < 0.95:
		impact.MarketPosition = "slightly below market average; price advantage"
	case ratio > 1.15:
		impact.MarketPosition = "above market average; premium positioning"
	case ratio > 1.05:
		impact.MarketPosition = "slightly above market average; upper-mid positioning"
	default:
		impact.MarketPosition = "in line with market average"
	}
	return impact
}

// MarketComparison positions a price within the same-model market.
type MarketComparison struct {
	AveragePrice    float64 `json:"average_price"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	CompetitorCount int     `json:"competitor_count"`
	Position        string  `json:"position"`
}

// CompareMarket builds the market comparison snapshot for a price.
func CompareMarket(price float64, m MarketData) MarketComparison {
	cmp := MarketComparison{
		AveragePrice:    m.AveragePrice,
		MinPrice:        m.MinPrice,
		MaxPrice:        m.MaxPrice,
		CompetitorCount: len(m.CompetitorPrices),
		Position:        "at",
	}
	if m.AveragePrice > 0 {
		switch {
		case price < m.AveragePrice*0.98:
			cmp.Position = "below"
		case price > m.AveragePrice*1.02:
			cmp.Position = "above"
		}
	}
	return cmp
}

// conditionAdjustment maps a grade to its premium multiplier.
func conditionAdjustment(grade ConditionGrade) float64 {
	if band, ok := BandForGrade(grade); ok {
		return band.PriceFactor
	}
	return NeutralFactor
}

// mileageAdjustment discounts higher mileage. Nil means unknown, neutral.
func mileageAdjustment(mileageKm *float64) float64 {
	if mileageKm == nil {
		return NeutralFactor
	}
	switch {
	case *mileageKm < 50000:
		return 1.05
	case *mileageKm < 100000:
		return 1.0
	case *mileageKm < 150000:
		return 0.95
	default:
		return 0.90
	}
}

// ageAdjustment discounts older vehicles. Nil means unknown, neutral.
func ageAdjustment(purchaseDate *time.Time, now time.Time) float64 {
	if purchaseDate == nil {
		return NeutralFactor
	}
	ageMonths := AgeInMonths(*purchaseDate, now)
	switch {
	case ageMonths < 12:
		return 1.05
	case ageMonths < 36:
		return 1.0
	case ageMonths < 60:
		return 0.95
	default:
		return 0.90
	}
}

// quartiles returns Q1, Q2 and Q3 of the given prices using the same index
// positions the platform has always used.
func quartiles(prices []float64) (q1, q2, q3 float64) {
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)
	n := len(sorted)
	q1 = sorted[int(math.Floor(float64(n)*0.25))]
	q2 = sorted[int(math.Floor(float64(n)*0.50))]
	q3 = sorted[int(math.Floor(float64(n)*0.75))]
	return q1, q2, q3
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
