package fba

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

// Table is one parsed report: normalized headers plus rows keyed by them.
type Table struct {
	Headers []string
	Rows    []RawRow
}

// RowReader parses a report stream into a Table.
type RowReader interface {
	Read(r io.Reader) (Table, error)
}

// CSVReader reads comma separated reports.
type CSVReader struct{}

// XLSXReader reads the first sheet of a workbook.
type XLSXReader struct{}

func (CSVReader) Read(r io.Reader) (Table, error)  { return ReadCSV(r) }
func (XLSXReader) Read(r io.Reader) (Table, error) { return ReadXLSX(r) }

// ReaderFor picks a reader from the file extension.
func ReaderFor(filename string) (RowReader, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return CSVReader{}, nil
	case ".xlsx", ".xlsm":
		return XLSXReader{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFile, filename)
	}
}

// ReadFile parses r with the reader matching filename's extension.
func ReadFile(filename string, r io.Reader) (Table, error) {
	reader, err := ReaderFor(filename)
	if err != nil {
		return Table{}, err
	}
	table, err := reader.Read(r)
	if err != nil {
		return Table{}, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return table, nil
}

// ReadCSV parses a CSV stream. Rows may be ragged; missing trailing cells read
// as empty strings and blank lines are skipped.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("failed to read header: %w", err)
	}

	var records [][]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read row: %w", err)
		}
		records = append(records, record)
	}

	return tableFrom(header, records), nil
}

// ReadXLSX parses the first sheet of an XLSX workbook.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, errors.New("xlsx has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	var header []string
	var records [][]string
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return Table{}, fmt.Errorf("failed to read row: %w", err)
		}
		if header == nil {
			header = cols
			continue
		}
		records = append(records, cols)
	}
	if err := rows.Error(); err != nil {
		return Table{}, fmt.Errorf("error iterating rows: %w", err)
	}
	if header == nil {
		return Table{}, nil
	}

	return tableFrom(header, records), nil
}

func tableFrom(header []string, records [][]string) Table {
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = NormalizeHeader(h)
	}

	rows := make([]RawRow, 0, len(records))
	for _, record := range records {
		if isBlank(record) {
			continue
		}
		row := make(RawRow, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return Table{Headers: headers, Rows: rows}
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
