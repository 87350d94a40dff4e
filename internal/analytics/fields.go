package analytics

import "github.com/andresuchdata/fba-cockpit/internal/domain"

type columnGroup int

const (
	groupBase columnGroup = iota
	groupComparison
	groupLogistics
	groupFinancial
	groupForecast
)

// field describes one addressable column of a ProductRecord. Exactly one of
// number or text is set. The bool result is false when the value is absent,
// which only happens for optional enrichments.
type field struct {
	key    string
	title  string
	group  columnGroup
	number func(*domain.ProductRecord) (float64, bool)
	text   func(*domain.ProductRecord) (string, bool)
}

func num(f func(*domain.ProductRecord) float64) func(*domain.ProductRecord) (float64, bool) {
	return func(r *domain.ProductRecord) (float64, bool) { return f(r), true }
}

func str(f func(*domain.ProductRecord) string) func(*domain.ProductRecord) (string, bool) {
	return func(r *domain.ProductRecord) (string, bool) { return f(r), true }
}

func logisticsNum(f func(*domain.Logistics) float64) func(*domain.ProductRecord) (float64, bool) {
	return func(r *domain.ProductRecord) (float64, bool) {
		if r.Logistics == nil {
			return 0, false
		}
		return f(r.Logistics), true
	}
}

func financialNum(f func(*domain.Financials) float64) func(*domain.ProductRecord) (float64, bool) {
	return func(r *domain.ProductRecord) (float64, bool) {
		if r.Financials == nil {
			return 0, false
		}
		return f(r.Financials), true
	}
}

func comparisonNum(f func(*domain.Comparison) float64) func(*domain.ProductRecord) (float64, bool) {
	return func(r *domain.ProductRecord) (float64, bool) {
		if r.Comparison == nil {
			return 0, false
		}
		return f(r.Comparison), true
	}
}

// fields is ordered as exported.
var fields = []field{
	{key: "sku", title: "SKU", text: str(func(r *domain.ProductRecord) string { return r.SKU })},
	{key: "asin", title: "ASIN", text: str(func(r *domain.ProductRecord) string { return r.ASIN })},
	{key: "name", title: "Product Name", text: str(func(r *domain.ProductRecord) string { return r.Name })},
	{key: "condition", title: "Condition", text: str(func(r *domain.ProductRecord) string { return r.Condition })},
	{key: "available", title: "Available", number: num(func(r *domain.ProductRecord) float64 { return r.Available })},
	{key: "pendingRemoval", title: "Pending Removal", number: num(func(r *domain.ProductRecord) float64 { return r.PendingRemoval })},
	{key: "invAge0to90", title: "Inv Age 0-90", number: num(func(r *domain.ProductRecord) float64 { return r.InvAge0to90 })},
	{key: "invAge91to180", title: "Inv Age 91-180", number: num(func(r *domain.ProductRecord) float64 { return r.InvAge91to180 })},
	{key: "invAge181to270", title: "Inv Age 181-270", number: num(func(r *domain.ProductRecord) float64 { return r.InvAge181to270 })},
	{key: "invAge271to365", title: "Inv Age 271-365", number: num(func(r *domain.ProductRecord) float64 { return r.InvAge271to365 })},
	{key: "invAge365plus", title: "Inv Age 365+", number: num(func(r *domain.ProductRecord) float64 { return r.InvAge365plus })},
	{key: "totalInvAgeDays", title: "Avg Inv Age (Days)", number: num(func(r *domain.ProductRecord) float64 { return float64(r.TotalInvAgeDays) })},
	{key: "shippedT30", title: "Shipped T30", number: num(func(r *domain.ProductRecord) float64 { return r.ShippedT30 })},
	{key: "sellThroughRate", title: "Sell-Through (%)", number: num(func(r *domain.ProductRecord) float64 { return float64(r.SellThroughRate) })},
	{key: "recommendedAction", title: "Recommended Action", text: str(func(r *domain.ProductRecord) string { return r.RecommendedAction })},
	{key: "riskScore", title: "Risk Score", number: num(func(r *domain.ProductRecord) float64 { return float64(r.RiskScore) })},
	{key: "category", title: "Category", text: str(func(r *domain.ProductRecord) string { return r.Category })},

	{key: "inventoryChange", title: "Inventory Change", group: groupComparison, number: comparisonNum(func(c *domain.Comparison) float64 { return c.InventoryChange })},
	{key: "shippedChange", title: "Shipped Change", group: groupComparison, number: comparisonNum(func(c *domain.Comparison) float64 { return c.ShippedChange })},
	{key: "ageChange", title: "Age Change", group: groupComparison, number: comparisonNum(func(c *domain.Comparison) float64 { return float64(c.AgeChange) })},
	{key: "riskScoreChange", title: "Risk Score Change", group: groupComparison, number: comparisonNum(func(c *domain.Comparison) float64 { return float64(c.RiskScoreChange) })},
	{key: "velocityTrend", title: "Velocity Trend (%)", group: groupComparison, number: comparisonNum(func(c *domain.Comparison) float64 { return float64(c.VelocityTrend) })},
	{key: "inventoryValueChange", title: "Inventory Value Change", group: groupComparison, number: func(r *domain.ProductRecord) (float64, bool) {
		if r.Comparison == nil || r.Comparison.InventoryValueChange == nil {
			return 0, false
		}
		return *r.Comparison.InventoryValueChange, true
	}},

	{key: "inboundWorking", title: "Inbound Working", group: groupLogistics, number: logisticsNum(func(l *domain.Logistics) float64 { return l.InboundWorking })},
	{key: "inboundShipped", title: "Inbound Shipped", group: groupLogistics, number: logisticsNum(func(l *domain.Logistics) float64 { return l.InboundShipped })},
	{key: "inboundReceiving", title: "Inbound Receiving", group: groupLogistics, number: logisticsNum(func(l *domain.Logistics) float64 { return l.InboundReceiving })},
	{key: "reservedQuantity", title: "Reserved", group: groupLogistics, number: logisticsNum(func(l *domain.Logistics) float64 { return l.ReservedQuantity })},
	{key: "netAvailableStock", title: "Net Available Stock", group: groupLogistics, number: logisticsNum(func(l *domain.Logistics) float64 { return l.NetAvailableStock })},
	{key: "daysOfCover", title: "Days of Cover", group: groupLogistics, number: logisticsNum(func(l *domain.Logistics) float64 { return float64(l.DaysOfCover) })},
	{key: "urgencyScore", title: "Urgency Score", group: groupLogistics, number: logisticsNum(func(l *domain.Logistics) float64 { return l.UrgencyScore })},
	{key: "urgencyStatus", title: "Urgency Status", group: groupLogistics, text: func(r *domain.ProductRecord) (string, bool) {
		if r.Logistics == nil {
			return "", false
		}
		return string(r.UrgencyStatus), true
	}},

	{key: "cogs", title: "COGS", group: groupFinancial, number: financialNum(func(f *domain.Financials) float64 { return f.COGS })},
	{key: "price", title: "Price", group: groupFinancial, number: financialNum(func(f *domain.Financials) float64 { return f.Price })},
	{key: "inventoryValue", title: "Inventory Value", group: groupFinancial, number: financialNum(func(f *domain.Financials) float64 { return f.InventoryValue })},
	{key: "potentialRevenue", title: "Potential Revenue", group: groupFinancial, number: financialNum(func(f *domain.Financials) float64 { return f.PotentialRevenue })},
	{key: "grossProfitPerUnit", title: "Gross Profit / Unit", group: groupFinancial, number: financialNum(func(f *domain.Financials) float64 { return f.GrossProfitPerUnit })},

	{key: "restockRecommendation", title: "Restock Recommendation", group: groupForecast, number: func(r *domain.ProductRecord) (float64, bool) {
		if r.RestockRecommendation == nil {
			return 0, false
		}
		return float64(*r.RestockRecommendation), true
	}},
}

var fieldsByKey = func() map[string]*field {
	m := make(map[string]*field, len(fields))
	for i := range fields {
		m[fields[i].key] = &fields[i]
	}
	return m
}()

// SortKeys lists every key SortRecords understands, in column order.
func SortKeys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

func hasGroup(r *domain.ProductRecord, g columnGroup) bool {
	switch g {
	case groupComparison:
		return r.Comparison != nil
	case groupLogistics:
		return r.Logistics != nil
	case groupFinancial:
		return r.Financials != nil
	case groupForecast:
		return r.RestockRecommendation != nil
	default:
		return true
	}
}
