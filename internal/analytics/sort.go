package analytics

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

// SortLanguage is the collation locale used for text columns.
var SortLanguage = language.English

// SortRecords returns a stably sorted copy of records. Criteria are compared in
// priority order. Absent values sort last in either direction and unknown keys
// compare as absent.
func SortRecords(records []domain.ProductRecord, state domain.SortState) []domain.ProductRecord {
	out := slices.Clone(records)
	if len(state) == 0 || len(out) < 2 {
		return out
	}

	// collators keep internal buffers, so each call gets its own
	coll := collate.New(SortLanguage)

	slices.SortStableFunc(out, func(a, b domain.ProductRecord) int {
		for _, c := range state {
			if r := compareField(coll, fieldsByKey[c.Key], &a, &b, c.Direction); r != 0 {
				return r
			}
		}
		return 0
	})
	return out
}

func compareField(coll *collate.Collator, f *field, a, b *domain.ProductRecord, dir domain.SortDirection) int {
	if f == nil {
		return 0
	}

	var (
		r        int
		aOK, bOK bool
	)
	if f.number != nil {
		var av, bv float64
		av, aOK = f.number(a)
		bv, bOK = f.number(b)
		r = cmp.Compare(av, bv)
	} else {
		var av, bv string
		av, aOK = f.text(a)
		bv, bOK = f.text(b)
		r = coll.CompareString(av, bv)
	}

	switch {
	case !aOK && !bOK:
		return 0
	case !aOK:
		return 1
	case !bOK:
		return -1
	}
	if dir == domain.SortDesc {
		return -r
	}
	return r
}

// ValidateSortState rejects criteria naming columns the sorter does not know.
func ValidateSortState(state domain.SortState) error {
	for _, c := range state {
		if _, ok := fieldsByKey[c.Key]; !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownSortKey, c.Key)
		}
	}
	return nil
}
