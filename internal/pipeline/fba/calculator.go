package fba

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

// Risk score bands. Each component is evaluated highest threshold first and
// contributes at most one band.
const (
	maxRiskScore = 100

	ageThreshold365 = 365
	ageThreshold180 = 180
	ageThreshold90  = 90
	agePoints365    = 40
	agePoints180    = 25
	agePoints90     = 15

	coverPointsStranded = 40
	coverThreshold180   = 180
	coverThreshold90    = 90
	coverThreshold60    = 60
	coverPoints180      = 35
	coverPoints90       = 20
	coverPoints60       = 10

	removalThreshold50 = 0.5
	removalThreshold20 = 0.2
	removalThreshold10 = 0.1
	removalPoints50    = 20
	removalPoints20    = 10
	removalPoints10    = 5
)

// Urgency classification thresholds.
const (
	coverCriticalDays      = 2
	coverWarningDays       = 5
	urgencyScoreThreshold = 0
	salesWindowDays       = 30
	percentScale          = 100
	urgencyScoreDecimals  = 2
)

// RiskInput is the subset of a record the risk scorer reads.
type RiskInput struct {
	TotalInvAgeDays int
	Available       float64
	ShippedT30      float64
	PendingRemoval  float64
}

// RiskScore combines inventory age, days of cover and pending-removal ratio
// into an integer score in [0, 100].
func RiskScore(in RiskInput) int {
	score := 0

	switch {
	case in.TotalInvAgeDays > ageThreshold365:
		score += agePoints365
	case in.TotalInvAgeDays > ageThreshold180:
		score += agePoints180
	case in.TotalInvAgeDays > ageThreshold90:
		score += agePoints90
	}

	dailySales := DailySales(in.ShippedT30)
	if dailySales <= 0 && in.Available > 0 {
		score += coverPointsStranded
	} else if dailySales > 0 {
		cover := in.Available / dailySales
		switch {
		case cover > coverThreshold180:
			score += coverPoints180
		case cover > coverThreshold90:
			score += coverPoints90
		case cover > coverThreshold60:
			score += coverPoints60
		}
	}

	if totalStock := in.Available + in.PendingRemoval; totalStock > 0 {
		ratio := in.PendingRemoval / totalStock
		switch {
		case ratio > removalThreshold50:
			score += removalPoints50
		case ratio > removalThreshold20:
			score += removalPoints20
		case ratio > removalThreshold10:
			score += removalPoints10
		}
	}

	if score > maxRiskScore {
		return maxRiskScore
	}
	if score < 0 {
		return 0
	}
	return score
}

// DailySales converts trailing-30-day shipped units into a daily rate.
func DailySales(shippedT30 float64) float64 {
	return shippedT30 / salesWindowDays
}

// SellThroughRate is the rounded percentage of available+shipped units that
// shipped in the window; 0 when there is nothing to measure.
func SellThroughRate(available, shipped float64) int {
	denominator := available + shipped
	if denominator <= 0 {
		return 0
	}
	return int(roundHalfUp(shipped / denominator * percentScale))
}

// RoundHalfUp is the rounding used for every derived integer metric.
func RoundHalfUp(v float64) int {
	return int(roundHalfUp(v))
}

// AgeBuckets are unit counts per inventory-age bracket.
type AgeBuckets struct {
	Days0to90    float64
	Days91to180  float64
	Days181to270 float64
	Days271to365 float64
	Days365plus  float64
}

// Total returns the units across all buckets.
func (b AgeBuckets) Total() float64 {
	return b.Days0to90 + b.Days91to180 + b.Days181to270 + b.Days271to365 + b.Days365plus
}

// WeightedAverageAge returns the unit-weighted mean age using bucket
// midpoints, rounded to whole days. 0 when the buckets are empty.
func WeightedAverageAge(b AgeBuckets) int {
	total := b.Total()
	if total == 0 {
		return 0
	}
	weighted := b.Days0to90*ageWeight0to90 +
		b.Days91to180*ageWeight91to180 +
		b.Days181to270*ageWeight181to270 +
		b.Days271to365*ageWeight271to365 +
		b.Days365plus*ageWeight365plus
	return int(roundHalfUp(weighted / total))
}

// LogisticsMetrics derives net stock, cover and urgency for a SKU with MFI data.
func LogisticsMetrics(available, shippedT30 float64, sellThroughRate int, mfi LogisticsRecord) *domain.Logistics {
	dailySales := DailySales(shippedT30)
	net := available + mfi.InboundWorking + mfi.InboundShipped - mfi.ReservedQuantity

	var cover domain.CoverDays
	switch {
	case dailySales > 0:
		cover = domain.CoverDays(roundHalfUp(net / dailySales))
	case net > 0:
		cover = domain.UnlimitedCover
	default:
		cover = 0
	}

	rawUrgency := (float64(sellThroughRate)/percentScale)*dailySales - net

	status := domain.UrgencyHealthy
	switch {
	case cover <= coverCriticalDays || rawUrgency > urgencyScoreThreshold:
		status = domain.UrgencyCritical
	case cover <= coverWarningDays:
		status = domain.UrgencyWarning
	}

	return &domain.Logistics{
		InboundWorking:    mfi.InboundWorking,
		InboundShipped:    mfi.InboundShipped,
		InboundReceiving:  mfi.InboundReceiving,
		ReservedQuantity:  mfi.ReservedQuantity,
		NetAvailableStock: net,
		DaysOfCover:       cover,
		UrgencyScore:      roundDecimal(rawUrgency, urgencyScoreDecimals),
		UrgencyStatus:     status,
	}
}

// FinancialMetrics derives inventory value and unit margin from cost and price.
// Values are exact decimal products and differences; rounding is left to
// whoever displays them.
func FinancialMetrics(available, cogs, price float64) *domain.Financials {
	units := decimal.NewFromFloat(available)
	c := decimal.NewFromFloat(cogs)
	p := decimal.NewFromFloat(price)

	return &domain.Financials{
		COGS:               cogs,
		Price:              price,
		InventoryValue:     units.Mul(c).InexactFloat64(),
		PotentialRevenue:   units.Mul(p).InexactFloat64(),
		GrossProfitPerUnit: p.Sub(c).InexactFloat64(),
	}
}

func roundDecimal(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
