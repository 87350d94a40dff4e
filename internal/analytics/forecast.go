package analytics

import (
	"math"
	"strings"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline/fba"
)

var shipmentTiers = []int{30, 50, 100, 150, 200, 250, 300, 400, 500}

const largeShipmentUnit = 50

// Velocity trend bands and the demand multiplier each one applies.
const (
	trendStrongGrowth    = 25
	trendModerateGrowth  = 10
	trendStrongDecline   = -25
	trendModerateDecline = -10

	multStrongGrowth    = 1.25
	multModerateGrowth  = 1.10
	multStrongDecline   = 0.75
	multModerateDecline = 0.90
)

// Sell-through bands that stretch or shrink the safety stock window.
const (
	highSellThrough  = 75
	lowSellThrough   = 25
	highSafetyFactor = 1.5
	lowSafetyFactor  = 0.5
)

// DefaultForecastSettings are used when the caller supplies none.
func DefaultForecastSettings() domain.ForecastSettings {
	return domain.ForecastSettings{
		LeadTimeDays:          30,
		SafetyStockDays:       14,
		DemandForecastPercent: 0,
	}
}

// RoundToShipmentQuantity rounds a unit gap up to the next standard shipment
// size, or to the next multiple of 50 past the largest tier.
func RoundToShipmentQuantity(units float64) int {
	if units <= 0 || math.IsNaN(units) {
		return 0
	}
	for _, tier := range shipmentTiers {
		if units <= float64(tier) {
			return tier
		}
	}
	return int(math.Ceil(units/largeShipmentUnit)) * largeShipmentUnit
}

// RestockRecommendation returns the units to send in so that stock covers
// lead time plus safety stock at the forecast sales rate.
func RestockRecommendation(r *domain.ProductRecord, settings domain.ForecastSettings) int {
	if r.ShippedT30 <= 0 || strings.Contains(strings.ToLower(r.RecommendedAction), "removal") {
		return 0
	}

	forecastDaily := fba.DailySales(r.ShippedT30) *
		(1 + settings.DemandForecastPercent/100) *
		trendMultiplier(r)

	safetyDays := settings.SafetyStockDays
	switch {
	case r.SellThroughRate > highSellThrough:
		safetyDays *= highSafetyFactor
	case r.SellThroughRate < lowSellThrough:
		safetyDays *= lowSafetyFactor
	}

	ideal := forecastDaily*settings.LeadTimeDays + forecastDaily*safetyDays
	return RoundToShipmentQuantity(ideal - r.Available)
}

func trendMultiplier(r *domain.ProductRecord) float64 {
	if r.Comparison == nil || r.VelocityTrend.IsNewSeller() {
		return 1
	}
	switch t := float64(r.VelocityTrend); {
	case t > trendStrongGrowth:
		return multStrongGrowth
	case t > trendModerateGrowth:
		return multModerateGrowth
	case t < trendStrongDecline:
		return multStrongDecline
	case t < trendModerateDecline:
		return multModerateDecline
	default:
		return 1
	}
}

// ApplyForecast returns a copy of records with RestockRecommendation set.
func ApplyForecast(records []domain.ProductRecord, settings domain.ForecastSettings) []domain.ProductRecord {
	out := make([]domain.ProductRecord, len(records))
	for i := range records {
		out[i] = records[i]
		units := RestockRecommendation(&records[i], settings)
		out[i].RestockRecommendation = &units
	}
	return out
}
