package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

func numbered(n int) []domain.ProductRecord {
	out := make([]domain.ProductRecord, n)
	for i := range out {
		out[i] = rec(fmt.Sprintf("SKU-%02d", i+1), float64(i), 1)
	}
	return out
}

func TestPaginate(t *testing.T) {
	records := numbered(12)

	tests := []struct {
		name           string
		page, size     int
		wantPage       int
		wantSize       int
		wantTotalPages int
		wantFirst      string
		wantLen        int
	}{
		{"first page", 1, 5, 1, 5, 3, "SKU-01", 5},
		{"last partial page", 3, 5, 3, 5, 3, "SKU-11", 2},
		{"page past end clamps", 9, 5, 3, 5, 3, "SKU-11", 2},
		{"page below one", 0, 5, 1, 5, 3, "SKU-01", 5},
		{"default page size", 1, 0, 1, DefaultPageSize, 1, "SKU-01", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(records, tt.page, tt.size)
			assert.Equal(t, 12, got.Total)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantSize, got.PageSize)
			assert.Equal(t, tt.wantTotalPages, got.TotalPages)
			require.Len(t, got.Items, tt.wantLen)
			assert.Equal(t, tt.wantFirst, got.Items[0].SKU)
		})
	}

	t.Run("empty", func(t *testing.T) {
		got := Paginate(nil, 3, 10)
		assert.Equal(t, 0, got.Total)
		assert.Equal(t, 0, got.TotalPages)
		assert.Equal(t, 1, got.Page)
		assert.NotNil(t, got.Items)
		assert.Empty(t, got.Items)
	})
}

func TestBuildView(t *testing.T) {
	records := numbered(6)
	records[4].Category = "Toys"
	records[5].Category = "Toys"

	page := BuildView(records, ViewRequest{
		Filters:  domain.FilterState{Category: "Toys"},
		Sort:     domain.SortState{{Key: "available", Direction: domain.SortDesc}},
		Forecast: DefaultForecastSettings(),
		Page:     1,
		PageSize: 10,
	})

	assert.Equal(t, 2, page.Total)
	assert.Equal(t, []string{"SKU-06", "SKU-05"}, skus(page.Items))
	for _, r := range page.Items {
		assert.NotNil(t, r.RestockRecommendation)
	}
	assert.Nil(t, records[5].RestockRecommendation)
}
