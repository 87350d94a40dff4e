package fba

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

func snapshotRow(sku string, overrides map[string]string) RawRow {
	row := RawRow{
		ColSKU:               sku,
		ColASIN:              "B000TEST",
		ColProductName:       "Test Widget",
		ColCondition:         "New",
		ColAvailable:         "100",
		ColPendingRemoval:    "0",
		ColInvAge0to90:       "100",
		ColInvAge91to180:     "0",
		ColInvAge181to270:    "0",
		ColInvAge271to365:    "0",
		ColInvAge365plus:     "0",
		ColUnitsShippedT30:   "30",
		ColRecommendedAction: "No Action",
		ColCategory:          "Home",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABC-1", NormalizeSKU("  abc-1 "))
	assert.Equal(t, "sku", NormalizeHeader("\ufeff SKU "))
	assert.Equal(t, "units-shipped-t30", NormalizeHeader("Units-Shipped-T30"))

	row := NormalizeRow(map[string]string{"\ufeffSKU": "a", " Available ": "3"})
	assert.Equal(t, RawRow{"sku": "a", "available": "3"}, row)
}

func TestBuildRecord(t *testing.T) {
	t.Run("core fields", func(t *testing.T) {
		rec, ok := BuildRecord(snapshotRow(" widget-1 ", nil), Lookups{})
		require.True(t, ok)

		assert.Equal(t, "WIDGET-1", rec.SKU)
		assert.Equal(t, "B000TEST", rec.ASIN)
		assert.Equal(t, "Test Widget", rec.Name)
		assert.Equal(t, "Home", rec.Category)
		assert.Equal(t, 100.0, rec.Available)
		assert.Equal(t, 30.0, rec.ShippedT30)
		assert.Equal(t, 45, rec.TotalInvAgeDays)
		assert.Equal(t, 23, rec.SellThroughRate)
		assert.Equal(t, 20, rec.RiskScore)
		assert.Nil(t, rec.Logistics)
		assert.Nil(t, rec.Financials)
		assert.Nil(t, rec.Comparison)
	})

	t.Run("defaults for blank text columns", func(t *testing.T) {
		rec, ok := BuildRecord(snapshotRow("w", map[string]string{
			ColCategory:          " ",
			ColRecommendedAction: "",
		}), Lookups{})
		require.True(t, ok)
		assert.Equal(t, "Unknown", rec.Category)
		assert.Equal(t, "No Action", rec.RecommendedAction)
	})

	t.Run("empty sku is dropped", func(t *testing.T) {
		_, ok := BuildRecord(snapshotRow("   ", nil), Lookups{})
		assert.False(t, ok)
	})

	t.Run("idle stock has zero sell-through and no cover points", func(t *testing.T) {
		rec, ok := BuildRecord(snapshotRow("idle", map[string]string{
			ColAvailable:       "0",
			ColUnitsShippedT30: "0",
			ColInvAge0to90:     "0",
		}), Lookups{})
		require.True(t, ok)
		assert.Equal(t, 0, rec.SellThroughRate)
		assert.Equal(t, 0, rec.RiskScore)
	})

	t.Run("aged stranded stock", func(t *testing.T) {
		rec, ok := BuildRecord(snapshotRow("old", map[string]string{
			ColAvailable:       "50",
			ColUnitsShippedT30: "0",
			ColInvAge0to90:     "0",
			ColInvAge365plus:   "50",
		}), Lookups{})
		require.True(t, ok)
		assert.Equal(t, 400, rec.TotalInvAgeDays)
		assert.Equal(t, 80, rec.RiskScore)
	})

	t.Run("logistics joined by normalized sku", func(t *testing.T) {
		lookups := Lookups{Logistics: map[string]LogisticsRecord{}}
		MergeLogistics(lookups.Logistics, []RawRow{{
			ColSKU:              " widget-1",
			ColInboundWorking:   "10",
			ColInboundShipped:   "5",
			ColReservedQuantity: "15",
		}})

		rec, ok := BuildRecord(snapshotRow("WIDGET-1", nil), lookups)
		require.True(t, ok)
		require.NotNil(t, rec.Logistics)
		assert.Equal(t, 100.0, rec.NetAvailableStock)
		assert.Equal(t, domain.CoverDays(100), rec.DaysOfCover)
		assert.Equal(t, domain.UrgencyHealthy, rec.UrgencyStatus)
	})

	t.Run("financial file wins over row columns", func(t *testing.T) {
		lookups := Lookups{Financials: map[string]FinancialRecord{}}
		MergeFinancials(lookups.Financials, []RawRow{{
			ColSKU:   "WIDGET-1",
			ColCOGS:  "$2.00",
			ColPrice: "8",
		}})

		rec, ok := BuildRecord(snapshotRow("widget-1", map[string]string{
			ColCOGS:  "5",
			ColPrice: "10",
		}), lookups)
		require.True(t, ok)
		require.NotNil(t, rec.Financials)
		assert.Equal(t, 2.0, rec.COGS)
		assert.Equal(t, 8.0, rec.Price)
		assert.Equal(t, 200.0, rec.InventoryValue)
		assert.Equal(t, 800.0, rec.PotentialRevenue)
		assert.Equal(t, 6.0, rec.GrossProfitPerUnit)
	})

	t.Run("row columns used without financial file", func(t *testing.T) {
		rec, ok := BuildRecord(snapshotRow("widget-1", map[string]string{ColCOGS: "4"}), Lookups{})
		require.True(t, ok)
		require.NotNil(t, rec.Financials)
		assert.Equal(t, 400.0, rec.InventoryValue)
		assert.Equal(t, 0.0, rec.PotentialRevenue)
	})
}

func TestBuildRecords(t *testing.T) {
	rows := []RawRow{
		snapshotRow("a", map[string]string{ColAvailable: "1"}),
		snapshotRow("", nil),
		snapshotRow("b", nil),
		snapshotRow("A", map[string]string{ColAvailable: "5"}),
	}

	records, report := BuildRecords(rows, Lookups{})

	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].SKU)
	assert.Equal(t, 5.0, records[0].Available)
	assert.Equal(t, "B", records[1].SKU)
	assert.Equal(t, BuildReport{Rows: 4, Dropped: 1, Duplicates: 1}, report)

	for _, rec := range records {
		want := SellThroughRate(rec.Available, rec.ShippedT30)
		assert.Equal(t, want, rec.SellThroughRate)
	}
}

func TestBuildRecordsEmpty(t *testing.T) {
	records, report := BuildRecords(nil, Lookups{})
	assert.Empty(t, records)
	assert.Equal(t, BuildReport{}, report)
}
