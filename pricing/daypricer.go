package pricing

import "math"

// MinimumPriceRatio floors any single day at 20% of the base price so stacked
// discount factors cannot collapse a day to a throwaway rate.
const MinimumPriceRatio = 0.20

// PriceDay applies the city and time factors to a base daily price and rounds
// to the integer currency unit. The result never drops below the minimum
// price floor.
func PriceDay(basePrice, cityFactor, timeFactor float64) float64 {
	price := math.Round(basePrice * cityFactor * timeFactor)
	floor := math.Round(basePrice * MinimumPriceRatio)
	if price < floor {
		return floor
	}
	return price
}
