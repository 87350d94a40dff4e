package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

const (
	summaryTopN         = 5
	hotSellThroughRate  = 70
	agedInventoryDays   = 180
	summaryEmptySection = "None"
)

// SummarizeForPrompt condenses records into the plain-text brief handed to the
// insights model: totals plus the top at-risk, fastest selling and oldest SKUs.
func SummarizeForPrompt(records []domain.ProductRecord) string {
	var totalUnits float64
	for i := range records {
		totalUnits += records[i].Available
	}

	atRisk := topBy(records,
		func(r *domain.ProductRecord) bool { return r.RiskScore > MediumRiskThreshold },
		func(r *domain.ProductRecord) int { return r.RiskScore })
	hot := topBy(records,
		func(r *domain.ProductRecord) bool { return r.SellThroughRate > hotSellThroughRate },
		func(r *domain.ProductRecord) int { return r.SellThroughRate })
	aged := topBy(records,
		func(r *domain.ProductRecord) bool { return r.TotalInvAgeDays > agedInventoryDays },
		func(r *domain.ProductRecord) int { return r.TotalInvAgeDays })

	var b strings.Builder
	b.WriteString("FBA Inventory Analysis Report:\n")
	fmt.Fprintf(&b, "- Total SKUs: %d\n", len(records))
	fmt.Fprintf(&b, "- Total Available Units: %s\n", formatNumber(totalUnits))

	b.WriteString("\nTop 5 High-Risk SKUs (by risk score):\n")
	writeLines(&b, atRisk, func(r *domain.ProductRecord) string {
		return fmt.Sprintf("- SKU: %s, Risk Score: %d, Available: %s, Avg Age: %d days",
			r.SKU, r.RiskScore, formatNumber(r.Available), r.TotalInvAgeDays)
	})

	b.WriteString("\nTop 5 Hot-Selling SKUs (by sell-through rate):\n")
	writeLines(&b, hot, func(r *domain.ProductRecord) string {
		return fmt.Sprintf("- SKU: %s, Sell-Through: %d%%, Available: %s",
			r.SKU, r.SellThroughRate, formatNumber(r.Available))
	})

	b.WriteString("\nTop 5 Oldest Inventory SKUs (by average age):\n")
	writeLines(&b, aged, func(r *domain.ProductRecord) string {
		return fmt.Sprintf("- SKU: %s, Avg Age: %d days, Available: %s",
			r.SKU, r.TotalInvAgeDays, formatNumber(r.Available))
	})

	return b.String()
}

// topBy returns up to summaryTopN matching records ordered by score, highest
// first. Equal scores keep input order.
func topBy(records []domain.ProductRecord, match func(*domain.ProductRecord) bool, score func(*domain.ProductRecord) int) []*domain.ProductRecord {
	var out []*domain.ProductRecord
	for i := range records {
		if match(&records[i]) {
			out = append(out, &records[i])
		}
	}
	slices.SortStableFunc(out, func(a, b *domain.ProductRecord) int {
		return cmp.Compare(score(b), score(a))
	})
	if len(out) > summaryTopN {
		out = out[:summaryTopN]
	}
	return out
}

func writeLines(b *strings.Builder, records []*domain.ProductRecord, line func(*domain.ProductRecord) string) {
	if len(records) == 0 {
		b.WriteString(summaryEmptySection + "\n")
		return
	}
	for _, r := range records {
		b.WriteString(line(r))
		b.WriteByte('\n')
	}
}
