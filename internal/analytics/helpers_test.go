package analytics

import "github.com/andresuchdata/fba-cockpit/internal/domain"

func rec(sku string, available, shipped float64) domain.ProductRecord {
	return domain.ProductRecord{
		SKU:               sku,
		Name:              "Item " + sku,
		Category:          "General",
		Available:         available,
		ShippedT30:        shipped,
		RecommendedAction: "No Action",
	}
}

func skus(records []domain.ProductRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.SKU
	}
	return out
}

func withComparison(r domain.ProductRecord, trend domain.VelocityTrend) domain.ProductRecord {
	r.Comparison = &domain.Comparison{VelocityTrend: trend}
	return r
}

func withFinancials(r domain.ProductRecord, cogs, price float64) domain.ProductRecord {
	r.Financials = &domain.Financials{COGS: cogs, Price: price, InventoryValue: r.Available * cogs}
	return r
}
