package analytics

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline/fba"
)

var baseHeader = "SKU,ASIN,Product Name,Condition,Available,Pending Removal,Inv Age 0-90,Inv Age 91-180," +
	"Inv Age 181-270,Inv Age 271-365,Inv Age 365+,Avg Inv Age (Days),Shipped T30,Sell-Through (%)," +
	"Recommended Action,Risk Score,Category"

func TestFormatCSVField(t *testing.T) {
	n := 7
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"plain text", "Widget", "Widget"},
		{"comma", "Widget, large", `"Widget, large"`},
		{"quote", `12" ruler`, `"12"" ruler"`},
		{"newline", "line1\nline2", "\"line1\nline2\""},
		{"integer", 42, "42"},
		{"float", 12.5, "12.5"},
		{"no exponent", 1e21, "1000000000000000000000"},
		{"int pointer", &n, "7"},
		{"nil int pointer", (*int)(nil), ""},
		{"status", domain.UrgencyCritical, "Critical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCSVField(tt.in))
		})
	}
}

func TestFormatCSVFieldRoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 0.1, 12.5, 1234.5678, 0.30000000000000004, -99.77, 1e15, 123456789.123}
	for _, n := range values {
		assert.Equal(t, n, fba.ParseNumeric(FormatCSVField(n)), "n=%v", n)
	}

	t.Run("through WriteCSV", func(t *testing.T) {
		records := make([]domain.ProductRecord, len(values))
		for i, n := range values {
			records[i] = rec(fmt.Sprintf("SKU-%d", i), n, 0)
		}

		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, records))

		table, err := fba.ReadCSV(&buf)
		require.NoError(t, err)
		require.Len(t, table.Rows, len(values))
		for i, n := range values {
			assert.Equal(t, n, fba.ParseNumeric(table.Rows[i]["available"]), "n=%v", n)
		}
	})
}

func TestWriteCSV(t *testing.T) {
	t.Run("base columns only", func(t *testing.T) {
		r := rec("A-1", 10, 5)
		r.Name = `Mug, "large"`
		r.RiskScore = 35

		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, []domain.ProductRecord{r}))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, baseHeader, lines[0])
		assert.Equal(t, `A-1,,"Mug, ""large""",,10,0,0,0,0,0,0,0,5,0,No Action,35,General`, lines[1])
	})

	t.Run("empty collection", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, nil))
		assert.Equal(t, baseHeader+"\n", buf.String())
	})

	t.Run("optional groups follow data", func(t *testing.T) {
		compared := withComparison(rec("A", 1, 1), 12.5)
		compared.InventoryChange = -3
		plain := withFinancials(rec("B", 2, 0), 1.5, 4)

		headers := ExportHeaders([]domain.ProductRecord{compared, plain})
		assert.Contains(t, headers, "Inventory Change")
		assert.Contains(t, headers, "Velocity Trend (%)")
		assert.Contains(t, headers, "COGS")
		assert.NotContains(t, headers, "Days of Cover")
		assert.NotContains(t, headers, "Restock Recommendation")

		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, []domain.ProductRecord{compared, plain}))

		table, err := fba.ReadCSV(&buf)
		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "-3", table.Rows[0]["inventory change"])
		assert.Equal(t, "12.5", table.Rows[0]["velocity trend (%)"])
		assert.Equal(t, "", table.Rows[0]["cogs"])
		assert.Equal(t, "", table.Rows[1]["inventory change"])
		assert.Equal(t, "1.5", table.Rows[1]["cogs"])
		assert.Equal(t, "3", table.Rows[1]["inventory value"])
	})
}

func TestWriteXLSX(t *testing.T) {
	r := withFinancials(rec("X-1", 4, 2), 2.25, 5)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []domain.ProductRecord{r}))

	table, err := fba.ReadXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "X-1", table.Rows[0]["sku"])
	assert.Equal(t, 4.0, fba.ParseNumeric(table.Rows[0]["available"]))
	assert.Equal(t, 2.25, fba.ParseNumeric(table.Rows[0]["cogs"]))
	assert.Equal(t, 9.0, fba.ParseNumeric(table.Rows[0]["inventory value"]))
}
