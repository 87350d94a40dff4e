package analytics

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

const exportSheet = "Inventory"

// exportFields returns the base columns plus every optional group that at
// least one record carries.
func exportFields(records []domain.ProductRecord) []*field {
	present := map[columnGroup]bool{groupBase: true}
	for i := range records {
		for _, g := range []columnGroup{groupComparison, groupLogistics, groupFinancial, groupForecast} {
			if !present[g] && hasGroup(&records[i], g) {
				present[g] = true
			}
		}
	}

	out := make([]*field, 0, len(fields))
	for i := range fields {
		if present[fields[i].group] {
			out = append(out, &fields[i])
		}
	}
	return out
}

// ExportHeaders returns the column titles WriteCSV would emit for records.
func ExportHeaders(records []domain.ProductRecord) []string {
	cols := exportFields(records)
	titles := make([]string, len(cols))
	for i, f := range cols {
		titles[i] = f.title
	}
	return titles
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatCSVField renders a single value as a CSV cell. Numbers use the
// shortest representation that parses back to the same value. Text containing
// a comma, quote or line break is quoted with inner quotes doubled.
func FormatCSVField(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case float64:
		s = formatNumber(t)
	case float32:
		s = formatNumber(float64(t))
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case *int:
		if t == nil {
			return ""
		}
		s = strconv.Itoa(*t)
	case *float64:
		if t == nil {
			return ""
		}
		s = formatNumber(*t)
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}

	if strings.ContainsAny(s, ",\"\r\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// WriteCSV writes records as CSV with a header row, one FormatCSVField cell
// per column. An empty collection produces the base header only.
func WriteCSV(w io.Writer, records []domain.ProductRecord) error {
	cols := exportFields(records)
	bw := bufio.NewWriter(w)

	cells := make([]string, len(cols))
	for i, title := range ExportHeaders(records) {
		cells[i] = FormatCSVField(title)
	}
	if err := writeCSVLine(bw, cells); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range records {
		for j, f := range cols {
			cells[j] = FormatCSVField(cellValue(f, &records[i]))
		}
		if err := writeCSVLine(bw, cells); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}

	return bw.Flush()
}

func writeCSVLine(w *bufio.Writer, cells []string) error {
	if _, err := w.WriteString(strings.Join(cells, ",")); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// WriteXLSX writes records to a single-sheet workbook. Numeric columns are
// stored as numbers and absent values as empty cells.
func WriteXLSX(w io.Writer, records []domain.ProductRecord) error {
	cols := exportFields(records)
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	titles := ExportHeaders(records)
	header := make([]any, len(titles))
	for i, title := range titles {
		header[i] = title
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write xlsx header: %w", err)
	}

	for i := range records {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = cellValue(c, &records[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write xlsx row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func cellValue(f *field, r *domain.ProductRecord) any {
	if f.number != nil {
		if v, ok := f.number(r); ok {
			return v
		}
		return nil
	}
	v, _ := f.text(r)
	return v
}
