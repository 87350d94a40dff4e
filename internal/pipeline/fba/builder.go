package fba

import (
	"strings"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

// NormalizeSKU trims and upper-cases a SKU so reports join consistently.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// NormalizeHeader strips a UTF-8 BOM and surrounding space and lower-cases.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// NormalizeRow re-keys an arbitrary string map by normalized header names.
// Later duplicates of the same normalized header win.
func NormalizeRow(row map[string]string) RawRow {
	out := make(RawRow, len(row))
	for k, v := range row {
		out[NormalizeHeader(k)] = v
	}
	return out
}

// MergeLogistics adds MFI rows into a SKU -> logistics index. Rows without a
// SKU are skipped and the last row of a duplicated SKU wins.
func MergeLogistics(index map[string]LogisticsRecord, rows []RawRow) {
	for _, row := range rows {
		sku := NormalizeSKU(row[ColSKU])
		if sku == "" {
			continue
		}
		index[sku] = LogisticsRecord{
			SKU:              sku,
			InboundWorking:   ParseNumeric(row[ColInboundWorking]),
			InboundShipped:   ParseNumeric(row[ColInboundShipped]),
			InboundReceiving: ParseNumeric(row[ColInboundReceiving]),
			ReservedQuantity: ParseNumeric(row[ColReservedQuantity]),
		}
	}
}

// MergeFinancials adds rows into a SKU -> cost/price index.
func MergeFinancials(index map[string]FinancialRecord, rows []RawRow) {
	for _, row := range rows {
		sku := NormalizeSKU(row[ColSKU])
		if sku == "" {
			continue
		}
		index[sku] = FinancialRecord{
			SKU:   sku,
			COGS:  ParseNumeric(row[ColCOGS]),
			Price: ParseNumeric(row[ColPrice]),
		}
	}
}

// BuildRecord maps one primary row into a ProductRecord. The second return is
// false when the row has no SKU and must be dropped.
func BuildRecord(row RawRow, lookups Lookups) (domain.ProductRecord, bool) {
	sku := NormalizeSKU(row[ColSKU])
	if sku == "" {
		return domain.ProductRecord{}, false
	}

	available := ParseNumeric(row[ColAvailable])
	shipped := ParseNumeric(row[ColUnitsShippedT30])
	buckets := AgeBuckets{
		Days0to90:    ParseNumeric(row[ColInvAge0to90]),
		Days91to180:  ParseNumeric(row[ColInvAge91to180]),
		Days181to270: ParseNumeric(row[ColInvAge181to270]),
		Days271to365: ParseNumeric(row[ColInvAge271to365]),
		Days365plus:  ParseNumeric(row[ColInvAge365plus]),
	}
	sellThrough := SellThroughRate(available, shipped)

	rec := domain.ProductRecord{
		SKU:               sku,
		ASIN:              strings.TrimSpace(row[ColASIN]),
		Name:              strings.TrimSpace(row[ColProductName]),
		Condition:         strings.TrimSpace(row[ColCondition]),
		Category:          textOr(row[ColCategory], defaultCategory),
		Available:         available,
		PendingRemoval:    ParseNumeric(row[ColPendingRemoval]),
		InvAge0to90:       buckets.Days0to90,
		InvAge91to180:     buckets.Days91to180,
		InvAge181to270:    buckets.Days181to270,
		InvAge271to365:    buckets.Days271to365,
		InvAge365plus:     buckets.Days365plus,
		ShippedT30:        shipped,
		TotalInvAgeDays:   WeightedAverageAge(buckets),
		SellThroughRate:   sellThrough,
		RecommendedAction: textOr(row[ColRecommendedAction], defaultRecommendedAction),
	}

	if mfi, ok := lookups.Logistics[sku]; ok {
		rec.Logistics = LogisticsMetrics(available, shipped, sellThrough, mfi)
	}

	if fin, ok := lookups.Financials[sku]; ok {
		rec.Financials = FinancialMetrics(available, fin.COGS, fin.Price)
	} else if hasValue(row, ColCOGS) || hasValue(row, ColPrice) {
		rec.Financials = FinancialMetrics(available, ParseNumeric(row[ColCOGS]), ParseNumeric(row[ColPrice]))
	}

	rec.RiskScore = RiskScore(RiskInput{
		TotalInvAgeDays: rec.TotalInvAgeDays,
		Available:       rec.Available,
		ShippedT30:      rec.ShippedT30,
		PendingRemoval:  rec.PendingRemoval,
	})

	return rec, true
}

// BuildRecords maps every primary row. Rows without a SKU are dropped. When a
// SKU repeats, the last row's values replace the earlier record in place, so
// output order follows first appearance.
func BuildRecords(rows []RawRow, lookups Lookups) ([]domain.ProductRecord, BuildReport) {
	report := BuildReport{Rows: len(rows)}
	records := make([]domain.ProductRecord, 0, len(rows))
	position := make(map[string]int, len(rows))

	for _, row := range rows {
		rec, ok := BuildRecord(row, lookups)
		if !ok {
			report.Dropped++
			continue
		}
		if i, seen := position[rec.SKU]; seen {
			records[i] = rec
			report.Duplicates++
			continue
		}
		position[rec.SKU] = len(records)
		records = append(records, rec)
	}

	return records, report
}

func textOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

func hasValue(row RawRow, col string) bool {
	v, ok := row[col]
	return ok && strings.TrimSpace(v) != ""
}
