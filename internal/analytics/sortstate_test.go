package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

func TestUpdateSort(t *testing.T) {
	asc := func(k string) domain.SortCriterion { return domain.SortCriterion{Key: k, Direction: domain.SortAsc} }
	desc := func(k string) domain.SortCriterion { return domain.SortCriterion{Key: k, Direction: domain.SortDesc} }

	tests := []struct {
		name     string
		state    domain.SortState
		key      string
		additive bool
		want     domain.SortState
	}{
		{"plain click on new column", domain.SortState{desc("riskScore")}, "sku", false, domain.SortState{asc("sku")}},
		{"plain click toggles sole key", domain.SortState{desc("riskScore")}, "riskScore", false, domain.SortState{asc("riskScore")}},
		{"plain click toggles back", domain.SortState{asc("sku")}, "sku", false, domain.SortState{desc("sku")}},
		{"plain click collapses multi-key", domain.SortState{desc("riskScore"), asc("sku")}, "riskScore", false, domain.SortState{asc("riskScore")}},
		{"plain click on empty state", nil, "sku", false, domain.SortState{asc("sku")}},
		{"additive click appends", domain.SortState{desc("riskScore")}, "sku", true, domain.SortState{desc("riskScore"), asc("sku")}},
		{"additive click toggles in place", domain.SortState{desc("riskScore"), asc("sku")}, "sku", true, domain.SortState{desc("riskScore"), desc("sku")}},
		{"additive click on empty state", nil, "sku", true, domain.SortState{asc("sku")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := append(domain.SortState(nil), tt.state...)
			assert.Equal(t, tt.want, UpdateSort(tt.state, tt.key, tt.additive))
			assert.Equal(t, before, tt.state)
		})
	}
}
