package analytics

import (
	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline/fba"
)

// Risk thresholds shared by stats, summaries and KPIs.
const (
	MediumRiskThreshold = 70
	HighRiskThreshold   = 85
)

// CalculateStats aggregates a record collection in one pass. An empty
// collection yields the zero Stats.
func CalculateStats(records []domain.ProductRecord) domain.Stats {
	var (
		stats       domain.Stats
		weightedAge float64
	)

	for i := range records {
		r := &records[i]
		stats.TotalAvailable += r.Available
		stats.TotalPending += r.PendingRemoval
		stats.TotalShipped += r.ShippedT30
		weightedAge += float64(r.TotalInvAgeDays) * r.Available
		if r.RiskScore > MediumRiskThreshold {
			stats.AtRiskSKUs++
		}
	}

	stats.TotalProducts = len(records)
	if stats.TotalAvailable > 0 {
		stats.AvgDaysInventory = fba.RoundHalfUp(weightedAge / stats.TotalAvailable)
	}
	stats.SellThroughRate = fba.SellThroughRate(stats.TotalAvailable, stats.TotalShipped)

	return stats
}
