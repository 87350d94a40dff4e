package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

func alertByID(alerts []Alert, id string) (Alert, bool) {
	for _, a := range alerts {
		if a.ID == id {
			return a, true
		}
	}
	return Alert{}, false
}

func TestBuildAlerts(t *testing.T) {
	assert.Empty(t, BuildAlerts(nil, true))

	soon := rec("SOON", 5, 30)
	sooner := rec("SOONER", 2, 30)
	later := rec("LATER", 13, 30)
	fine := rec("FINE", 100, 30)
	aged := withFinancials(rec("AGED", 40, 0), 2.5, 10)
	aged.InvAge365plus = 40
	agedNoCost := rec("AGED-2", 10, 0)
	agedNoCost.InvAge365plus = 10
	falling := withComparison(rec("FALLING", 50, 300), -60)
	soldOut := withComparison(rec("GONE", 0, 3), -80)
	extra := rec("EXTRA", 1, 30)

	records := []domain.ProductRecord{soon, sooner, later, fine, aged, agedNoCost, falling, soldOut, extra}

	t.Run("stockout", func(t *testing.T) {
		a, ok := alertByID(BuildAlerts(records, false), AlertStockout)
		require.True(t, ok)
		assert.Equal(t, AlertCritical, a.Level)
		assert.Equal(t, []string{"EXTRA", "SOONER", "SOON", "FALLING", "LATER"}, a.SKUs)
		assert.Equal(t, "Projected Stockout Risk: 5 SKU(s)", a.Title)
		assert.Contains(t, a.Message, "EXTRA, SOONER, SOON and more.")
	})

	t.Run("stagnation only when comparing", func(t *testing.T) {
		_, ok := alertByID(BuildAlerts(records, false), AlertStagnation)
		assert.False(t, ok)

		a, ok := alertByID(BuildAlerts(records, true), AlertStagnation)
		require.True(t, ok)
		assert.Equal(t, AlertWarning, a.Level)
		assert.Equal(t, []string{"FALLING"}, a.SKUs)
	})

	t.Run("storage fees", func(t *testing.T) {
		a, ok := alertByID(BuildAlerts(records, false), AlertStorageFees)
		require.True(t, ok)
		assert.Equal(t, []string{"AGED", "AGED-2"}, a.SKUs)
		assert.Equal(t, 50.0, a.Units)
		assert.Equal(t, 100.0, a.Value)
		assert.Contains(t, a.Message, "~$100 in capital at risk")
	})

	t.Run("healthy data has no alerts", func(t *testing.T) {
		assert.Empty(t, BuildAlerts([]domain.ProductRecord{fine}, true))
	})
}
