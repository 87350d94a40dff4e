package fba

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

func TestClassifyHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    domain.FileKind
		ok      bool
	}{
		{
			name:    "mfi report",
			headers: []string{"SKU", "fnsku", "afn-inbound-working-quantity", "afn-reserved-quantity"},
			want:    domain.FileKindLogistics,
			ok:      true,
		},
		{
			name:    "mfi report with snapshot columns",
			headers: []string{"sku", "available", "afn-inbound-shipped-quantity"},
			want:    domain.FileKindLogistics,
			ok:      true,
		},
		{
			name:    "financial file",
			headers: []string{"sku", "COGS", "Price"},
			want:    domain.FileKindFinancial,
			ok:      true,
		},
		{
			name:    "snapshot with bom",
			headers: []string{"\ufeffsku", "asin", "available", "units-shipped-t30"},
			want:    domain.FileKindSnapshot,
			ok:      true,
		},
		{
			name:    "snapshot carrying cost columns",
			headers: []string{"sku", "available", "cogs"},
			want:    domain.FileKindSnapshot,
			ok:      true,
		},
		{
			name:    "no sku column",
			headers: []string{"asin", "available"},
			ok:      false,
		},
		{
			name: "empty header",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyHeaders(tt.headers)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
