package analytics

import "github.com/andresuchdata/fba-cockpit/internal/domain"

// DefaultPageSize is the number of rows per page when the caller sends none.
const DefaultPageSize = 25

// Page is one slice of a processed collection plus paging metadata.
type Page struct {
	Items      []domain.ProductRecord `json:"items"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"pageSize"`
	TotalPages int                    `json:"totalPages"`
}

// ViewRequest is everything that shapes a table view of a snapshot.
type ViewRequest struct {
	Filters  domain.FilterState
	Sort     domain.SortState
	Forecast domain.ForecastSettings
	Page     int
	PageSize int
}

// Prepare runs forecast, filters and sort over records, in that order.
func Prepare(records []domain.ProductRecord, filters domain.FilterState, sort domain.SortState, forecast domain.ForecastSettings) []domain.ProductRecord {
	out := ApplyForecast(records, forecast)
	out = ApplyFilters(out, filters)
	return SortRecords(out, sort)
}

// BuildView prepares records and returns the requested page.
func BuildView(records []domain.ProductRecord, req ViewRequest) Page {
	return Paginate(Prepare(records, req.Filters, req.Sort, req.Forecast), req.Page, req.PageSize)
}

// Paginate slices records into 1-based pages. Pages past the end clamp to the
// last page.
func Paginate(records []domain.ProductRecord, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize

	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	items := []domain.ProductRecord{}
	if start < end {
		items = records[start:end]
	}

	return Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
