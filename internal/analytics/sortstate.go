package analytics

import "github.com/andresuchdata/fba-cockpit/internal/domain"

// UpdateSort applies a column-header click to the current sort state and
// returns the new state. A plain click sorts by key alone, ascending, or flips
// the direction when key is already the only criterion. An additive click
// flips key in place if present and otherwise appends it ascending.
func UpdateSort(state domain.SortState, key string, additive bool) domain.SortState {
	idx := -1
	for i, c := range state {
		if c.Key == key {
			idx = i
			break
		}
	}

	if !additive {
		if len(state) == 1 && idx == 0 {
			return domain.SortState{{Key: key, Direction: state[0].Direction.Flip()}}
		}
		return domain.SortState{{Key: key, Direction: domain.SortAsc}}
	}

	next := make(domain.SortState, len(state), len(state)+1)
	copy(next, state)
	if idx >= 0 {
		next[idx].Direction = next[idx].Direction.Flip()
		return next
	}
	return append(next, domain.SortCriterion{Key: key, Direction: domain.SortAsc})
}
