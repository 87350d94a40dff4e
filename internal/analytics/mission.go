package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

type missionGoal int

const (
	goalUnknown missionGoal = iota
	goalRisk
	goalSellThrough
	goalStorageFees
	goalCashFlow
)

const topSellerShare = 0.2

func classifyGoal(goal string) missionGoal {
	g := strings.ToLower(goal)
	switch {
	case strings.Contains(g, "risk"):
		return goalRisk
	case strings.Contains(g, "sell-through"):
		return goalSellThrough
	case strings.Contains(g, "storage fees"):
		return goalStorageFees
	case strings.Contains(g, "cash flow"), strings.Contains(g, "profitable"):
		return goalCashFlow
	default:
		return goalUnknown
	}
}

// KPIName is the label of the metric tracked for a mission goal.
func KPIName(goal string) string {
	switch classifyGoal(goal) {
	case goalRisk:
		return "At-Risk SKUs (Risk Score > 70)"
	case goalSellThrough:
		return "Overall Sell-Through Rate (%)"
	case goalStorageFees:
		return "Units Aged 181+ Days"
	case goalCashFlow:
		return "Available Units of Top 20% SKUs"
	default:
		return "Primary Metric"
	}
}

// CalculateKPI evaluates the mission metric for goal over one snapshot.
func CalculateKPI(goal string, records []domain.ProductRecord) float64 {
	if len(records) == 0 {
		return 0
	}

	switch classifyGoal(goal) {
	case goalRisk:
		return float64(CalculateStats(records).AtRiskSKUs)
	case goalSellThrough:
		return float64(CalculateStats(records).SellThroughRate)
	case goalStorageFees:
		var units float64
		for i := range records {
			units += records[i].InvAge181to270 + records[i].InvAge271to365 + records[i].InvAge365plus
		}
		return units
	case goalCashFlow:
		ranked := slices.Clone(records)
		slices.SortStableFunc(ranked, func(a, b domain.ProductRecord) int {
			return cmp.Compare(b.SellThroughRate, a.SellThroughRate)
		})
		var units float64
		for _, r := range ranked[:int(float64(len(ranked))*topSellerShare)] {
			units += r.Available
		}
		return units
	default:
		return 0
	}
}

// KPIPoint is one KPI reading taken from a named snapshot.
type KPIPoint struct {
	Snapshot string  `json:"snapshot"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
}

// TrackKPI evaluates goal over each snapshot in order.
func TrackKPI(goal string, snapshots []domain.Snapshot) []KPIPoint {
	name := KPIName(goal)
	points := make([]KPIPoint, len(snapshots))
	for i, s := range snapshots {
		points[i] = KPIPoint{Snapshot: s.Name, Name: name, Value: CalculateKPI(goal, s.Data)}
	}
	return points
}
