package analytics

import (
	"math"
	"strconv"
	"strings"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline/fba"
)

// Filter values accepted by the action and age predicates.
const (
	ActionRemoval = "removal"
	ActionNormal  = "normal"

	Age0to90    = "0-90"
	Age91to180  = "91-180"
	Age181to365 = "181-365"
	Age365plus  = "365+"
)

const (
	lowStockCoverDays  = 30
	highStockCoverDays = 180
	idleHighStockUnits = 100
)

// Filter narrows a record collection. Filters never modify their input.
type Filter func([]domain.ProductRecord) []domain.ProductRecord

// ApplyFilters runs every predicate of state in a fixed order. Empty fields
// are identity filters.
func ApplyFilters(records []domain.ProductRecord, state domain.FilterState) []domain.ProductRecord {
	pipeline := []Filter{
		SearchFilter(state.Search),
		ActionFilter(state.Action),
		AgeFilter(state.Age),
		CategoryFilter(state.Category),
		StockStatusFilter(state.StockStatus),
		MinStockFilter(state.MinStock),
		MaxStockFilter(state.MaxStock),
	}

	out := records
	for _, apply := range pipeline {
		out = apply(out)
	}
	return out
}

func keep(records []domain.ProductRecord, pred func(*domain.ProductRecord) bool) []domain.ProductRecord {
	out := make([]domain.ProductRecord, 0, len(records))
	for i := range records {
		if pred(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

func identity(records []domain.ProductRecord) []domain.ProductRecord { return records }

// SearchFilter matches a case-insensitive substring of SKU, ASIN or name.
func SearchFilter(search string) Filter {
	if search == "" {
		return identity
	}
	needle := strings.ToLower(search)
	return func(records []domain.ProductRecord) []domain.ProductRecord {
		return keep(records, func(r *domain.ProductRecord) bool {
			return strings.Contains(strings.ToLower(r.SKU), needle) ||
				strings.Contains(strings.ToLower(r.ASIN), needle) ||
				strings.Contains(strings.ToLower(r.Name), needle)
		})
	}
}

// ActionFilter keeps removal candidates ("removal") or everything else ("normal").
func ActionFilter(action string) Filter {
	var wantRemoval bool
	switch action {
	case ActionRemoval:
		wantRemoval = true
	case ActionNormal:
		wantRemoval = false
	default:
		return identity
	}
	return func(records []domain.ProductRecord) []domain.ProductRecord {
		return keep(records, func(r *domain.ProductRecord) bool {
			return isRemoval(r) == wantRemoval
		})
	}
}

func isRemoval(r *domain.ProductRecord) bool {
	return strings.Contains(strings.ToLower(r.RecommendedAction), ActionRemoval)
}

// AgeFilter keeps records whose weighted age falls in the named bracket.
func AgeFilter(age string) Filter {
	// lo is exclusive, hi inclusive; hi < 0 means no upper bound.
	var lo, hi int
	switch age {
	case Age0to90:
		lo, hi = math.MinInt, 90
	case Age91to180:
		lo, hi = 90, 180
	case Age181to365:
		lo, hi = 180, 365
	case Age365plus:
		lo, hi = 365, -1
	default:
		return identity
	}
	return func(records []domain.ProductRecord) []domain.ProductRecord {
		return keep(records, func(r *domain.ProductRecord) bool {
			d := r.TotalInvAgeDays
			return d > lo && (hi < 0 || d <= hi)
		})
	}
}

// CategoryFilter is an exact match.
func CategoryFilter(category string) Filter {
	if category == "" {
		return identity
	}
	return func(records []domain.ProductRecord) []domain.ProductRecord {
		return keep(records, func(r *domain.ProductRecord) bool { return r.Category == category })
	}
}

// StockStatusFilter buckets records by days of cover at the current sales rate.
func StockStatusFilter(status string) Filter {
	var pred func(*domain.ProductRecord) bool
	switch domain.StockStatus(status) {
	case domain.StockStatusLow:
		pred = func(r *domain.ProductRecord) bool {
			daily := fba.DailySales(r.ShippedT30)
			return daily > 0 && r.Available/daily < lowStockCoverDays
		}
	case domain.StockStatusHigh:
		pred = func(r *domain.ProductRecord) bool {
			daily := fba.DailySales(r.ShippedT30)
			if daily > 0 {
				return r.Available/daily > highStockCoverDays
			}
			return r.Available > idleHighStockUnits
		}
	case domain.StockStatusStranded:
		pred = func(r *domain.ProductRecord) bool {
			return r.Available > 0 && r.ShippedT30 == 0
		}
	default:
		return identity
	}
	return func(records []domain.ProductRecord) []domain.ProductRecord {
		return keep(records, pred)
	}
}

// MinStockFilter keeps available >= min. Input without a leading integer is ignored.
func MinStockFilter(min string) Filter {
	bound, ok := parseBound(min)
	if !ok {
		return identity
	}
	return func(records []domain.ProductRecord) []domain.ProductRecord {
		return keep(records, func(r *domain.ProductRecord) bool { return r.Available >= bound })
	}
}

// MaxStockFilter keeps available <= max. Input without a leading integer is ignored.
func MaxStockFilter(max string) Filter {
	bound, ok := parseBound(max)
	if !ok {
		return identity
	}
	return func(records []domain.ProductRecord) []domain.ProductRecord {
		return keep(records, func(r *domain.ProductRecord) bool { return r.Available <= bound })
	}
}

// parseBound reads the leading integer of s, so "10abc" and "10.5" both
// bound at 10. Input without leading digits is not a bound.
func parseBound(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
