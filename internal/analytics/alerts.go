package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline/fba"
)

type AlertLevel string

const (
	AlertCritical AlertLevel = "critical"
	AlertWarning  AlertLevel = "warning"
)

const (
	AlertStockout    = "stockout-alert"
	AlertStagnation  = "stagnation-alert"
	AlertStorageFees = "fee-alert"
)

const (
	stockoutHorizonDays = 14
	stagnationTrend     = -40
	alertNamedSKUs      = 3
)

// Alert is one proactive warning over a record collection.
type Alert struct {
	ID      string     `json:"id"`
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	SKUs    []string   `json:"skus"`
	Units   float64    `json:"units,omitempty"`
	Value   float64    `json:"value,omitempty"`
}

// BuildAlerts scans records for projected stockouts, long-term storage fee
// exposure and, when comparing snapshots, collapsing sales velocity.
func BuildAlerts(records []domain.ProductRecord, comparisonMode bool) []Alert {
	if len(records) == 0 {
		return nil
	}
	p := message.NewPrinter(language.English)

	var alerts []Alert
	if a, ok := stockoutAlert(records); ok {
		alerts = append(alerts, a)
	}
	if comparisonMode {
		if a, ok := stagnationAlert(records); ok {
			alerts = append(alerts, a)
		}
	}
	if a, ok := storageFeeAlert(p, records); ok {
		alerts = append(alerts, a)
	}
	return alerts
}

func stockoutAlert(records []domain.ProductRecord) (Alert, bool) {
	type candidate struct {
		sku  string
		days float64
	}
	var candidates []candidate
	for i := range records {
		r := &records[i]
		if r.Available <= 0 || r.ShippedT30 <= 0 {
			continue
		}
		if days := r.Available / fba.DailySales(r.ShippedT30); days < stockoutHorizonDays {
			candidates = append(candidates, candidate{sku: r.SKU, days: days})
		}
	}
	if len(candidates) == 0 {
		return Alert{}, false
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int { return cmp.Compare(a.days, b.days) })

	skus := make([]string, len(candidates))
	for i, c := range candidates {
		skus[i] = c.sku
	}
	return Alert{
		ID:    AlertStockout,
		Level: AlertCritical,
		Title: fmt.Sprintf("Projected Stockout Risk: %d SKU(s)", len(skus)),
		Message: fmt.Sprintf("The following SKUs are projected to stock out in under %d days: %s",
			stockoutHorizonDays, namedSKUs(skus)),
		SKUs: skus,
	}, true
}

func stagnationAlert(records []domain.ProductRecord) (Alert, bool) {
	var hits []*domain.ProductRecord
	for i := range records {
		r := &records[i]
		if r.Comparison != nil && float64(r.VelocityTrend) < stagnationTrend && r.Available > 0 {
			hits = append(hits, r)
		}
	}
	if len(hits) == 0 {
		return Alert{}, false
	}
	slices.SortStableFunc(hits, func(a, b *domain.ProductRecord) int {
		return cmp.Compare(a.VelocityTrend, b.VelocityTrend)
	})

	skus := make([]string, len(hits))
	for i, r := range hits {
		skus[i] = r.SKU
	}
	return Alert{
		ID:      AlertStagnation,
		Level:   AlertWarning,
		Title:   fmt.Sprintf("Sales Stagnation: %d SKU(s)", len(skus)),
		Message: fmt.Sprintf("Sales have dropped over 40%% for SKUs like %s Review pricing and marketing.", namedSKUs(skus)),
		SKUs:    skus,
	}, true
}

func storageFeeAlert(p *message.Printer, records []domain.ProductRecord) (Alert, bool) {
	var (
		skus  []string
		units float64
		value = decimal.Zero
	)
	for i := range records {
		r := &records[i]
		if r.InvAge365plus <= 0 {
			continue
		}
		skus = append(skus, r.SKU)
		units += r.InvAge365plus
		if r.Financials != nil {
			value = value.Add(decimal.NewFromFloat(r.InvAge365plus).Mul(decimal.NewFromFloat(r.COGS)))
		}
	}
	if len(skus) == 0 {
		return Alert{}, false
	}

	capital := value.Round(2).InexactFloat64()
	return Alert{
		ID:    AlertStorageFees,
		Level: AlertWarning,
		Title: fmt.Sprintf("Long-Term Storage Fee Risk: %d SKU(s)", len(skus)),
		Message: p.Sprintf("You have %v units aged over 365 days, representing ~$%.0f in capital at risk for high fees.",
			units, capital),
		SKUs:  skus,
		Units: units,
		Value: capital,
	}, true
}

func namedSKUs(skus []string) string {
	if len(skus) > alertNamedSKUs {
		return strings.Join(skus[:alertNamedSKUs], ", ") + " and more."
	}
	return strings.Join(skus, ", ") + "."
}
