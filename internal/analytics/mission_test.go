package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

func missionRecords() []domain.ProductRecord {
	var out []domain.ProductRecord
	for i, str := range []int{10, 90, 50, 30, 70, 20, 60, 40, 80, 0} {
		r := rec(string(rune('A'+i)), float64(10*(i+1)), 0)
		r.SellThroughRate = str
		r.RiskScore = 10 * i
		r.InvAge181to270 = 1
		r.InvAge365plus = 2
		out = append(out, r)
	}
	out[0].ShippedT30 = 450
	return out
}

func TestKPIName(t *testing.T) {
	assert.Equal(t, "At-Risk SKUs (Risk Score > 70)", KPIName("Reduce Risk across catalog"))
	assert.Equal(t, "Overall Sell-Through Rate (%)", KPIName("Improve sell-through"))
	assert.Equal(t, "Units Aged 181+ Days", KPIName("Cut storage fees"))
	assert.Equal(t, "Available Units of Top 20% SKUs", KPIName("Improve Cash Flow"))
	assert.Equal(t, "Available Units of Top 20% SKUs", KPIName("Be more profitable"))
	assert.Equal(t, "Primary Metric", KPIName("something else"))
}

func TestCalculateKPI(t *testing.T) {
	records := missionRecords()

	assert.Equal(t, 0.0, CalculateKPI("reduce risk", nil))
	assert.Equal(t, 2.0, CalculateKPI("reduce risk", records))
	assert.Equal(t, 45.0, CalculateKPI("sell-through", records))
	assert.Equal(t, 30.0, CalculateKPI("storage fees", records))
	assert.Equal(t, 110.0, CalculateKPI("cash flow", records))
	assert.Equal(t, 0.0, CalculateKPI("unknown", records))
}

func TestTrackKPI(t *testing.T) {
	snaps := []domain.Snapshot{
		{Name: "jan", Data: missionRecords()},
		{Name: "feb", Data: nil},
	}

	got := TrackKPI("cut storage fees", snaps)

	assert.Equal(t, []KPIPoint{
		{Snapshot: "jan", Name: "Units Aged 181+ Days", Value: 30},
		{Snapshot: "feb", Name: "Units Aged 181+ Days", Value: 0},
	}, got)
}
