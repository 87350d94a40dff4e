package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

func TestCalculateStats(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		assert.Equal(t, domain.Stats{}, CalculateStats(nil))
		assert.Equal(t, domain.Stats{}, CalculateStats([]domain.ProductRecord{}))
	})

	t.Run("weighted totals", func(t *testing.T) {
		a := rec("A", 100, 30)
		a.TotalInvAgeDays = 45
		a.RiskScore = 20
		a.PendingRemoval = 5

		b := rec("B", 50, 0)
		b.TotalInvAgeDays = 400
		b.RiskScore = 80

		c := rec("C", 0, 0)
		c.TotalInvAgeDays = 999
		c.RiskScore = 70

		got := CalculateStats([]domain.ProductRecord{a, b, c})

		assert.Equal(t, domain.Stats{
			TotalProducts:    3,
			TotalAvailable:   150,
			TotalPending:     5,
			TotalShipped:     30,
			AvgDaysInventory: 163,
			SellThroughRate:  17,
			AtRiskSKUs:       1,
		}, got)
	})

	t.Run("no available stock", func(t *testing.T) {
		got := CalculateStats([]domain.ProductRecord{rec("A", 0, 10)})
		assert.Equal(t, 0, got.AvgDaysInventory)
		assert.Equal(t, 100, got.SellThroughRate)
	})
}
