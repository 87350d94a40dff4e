package analytics

import (
	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

// CompareSnapshots annotates every record of newer with deltas against older.
// SKUs that are new this period are diffed against zero. SKUs present only in
// older are left out; DiscontinuedSKUs reports those. Neither input is modified.
func CompareSnapshots(newer, older domain.Snapshot) []domain.ProductRecord {
	previous := make(map[string]*domain.ProductRecord, len(older.Data))
	for i := range older.Data {
		previous[older.Data[i].SKU] = &older.Data[i]
	}

	out := make([]domain.ProductRecord, len(newer.Data))
	for i, rec := range newer.Data {
		out[i] = rec
		out[i].Comparison = diffRecord(&rec, previous[rec.SKU])
	}
	return out
}

// DiscontinuedSKUs returns SKUs present in older but missing from newer, in
// older's order.
func DiscontinuedSKUs(newer, older domain.Snapshot) []string {
	current := make(map[string]struct{}, len(newer.Data))
	for _, rec := range newer.Data {
		current[rec.SKU] = struct{}{}
	}

	var gone []string
	for _, rec := range older.Data {
		if _, ok := current[rec.SKU]; !ok {
			gone = append(gone, rec.SKU)
		}
	}
	return gone
}

func diffRecord(cur, old *domain.ProductRecord) *domain.Comparison {
	if old == nil {
		c := &domain.Comparison{
			InventoryChange: cur.Available,
			ShippedChange:   cur.ShippedT30,
			AgeChange:       cur.TotalInvAgeDays,
			RiskScoreChange: cur.RiskScore,
		}
		if cur.ShippedT30 > 0 {
			c.VelocityTrend = domain.NewSellerTrend
		}
		if cur.Financials != nil {
			v := cur.InventoryValue
			c.InventoryValueChange = &v
		}
		return c
	}

	c := &domain.Comparison{
		InventoryChange: cur.Available - old.Available,
		ShippedChange:   cur.ShippedT30 - old.ShippedT30,
		AgeChange:       cur.TotalInvAgeDays - old.TotalInvAgeDays,
		RiskScoreChange: cur.RiskScore - old.RiskScore,
		VelocityTrend:   velocityTrend(old.ShippedT30, cur.ShippedT30),
	}
	if cur.Financials != nil && old.Financials != nil {
		v := cur.InventoryValue - old.InventoryValue
		c.InventoryValueChange = &v
	}
	return c
}

func velocityTrend(oldShipped, newShipped float64) domain.VelocityTrend {
	switch {
	case oldShipped > 0:
		return domain.VelocityTrend((newShipped - oldShipped) / oldShipped * 100)
	case newShipped > 0:
		return domain.NewSellerTrend
	default:
		return 0
	}
}
