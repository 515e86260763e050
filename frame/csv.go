package frame

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/teranos/dugout/errors"
)

// CSVOptions controls ReadCSV.
type CSVOptions struct {
	// Header reports whether the first record holds column names.
	Header bool
	// Columns names the columns when Header is false (or overrides it).
	Columns []string
	// Comma is the field delimiter (default ',').
	Comma rune
	// KeepStrings disables numeric inference.
	KeepStrings bool
}

// ReadCSV parses CSV into a frame. Empty cells become missing values.
// A column whose non-empty cells all parse as numbers becomes float64.
func ReadCSV(r io.Reader, opts CSVOptions) (*Frame, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv")
	}

	columns := opts.Columns
	if opts.Header {
		if len(records) == 0 {
			return nil, errors.NewInvalidArgumentError("csv has no header row")
		}
		if len(columns) == 0 {
			columns = records[0]
		}
		records = records[1:]
	}
	if len(columns) == 0 {
		return nil, errors.NewInvalidArgumentError("csv columns not specified")
	}

	for i, rec := range records {
		if len(rec) != len(columns) {
			line := i + 1
			if opts.Header {
				line++
			}
			return nil, errors.NewInvalidArgumentError("csv line %d has %d fields, expected %d", line, len(rec), len(columns))
		}
	}

	return FromStrings(columns, records, opts.KeepStrings), nil
}

// FromStrings builds a frame from text records of exactly len(columns)
// cells. Empty cells become missing values and numeric columns become
// float64 unless keepStrings is set.
func FromStrings(columns []string, records [][]string, keepStrings bool) *Frame {
	numeric := make([]bool, len(columns))
	for c := range columns {
		numeric[c] = !keepStrings && isNumericColumn(records, c)
	}

	f := New(columns...)
	f.Index = make([]string, len(records))
	f.Rows = make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(columns))
		for c, cell := range rec {
			trimmed := strings.TrimSpace(cell)
			switch {
			case cell == "", numeric[c] && trimmed == "":
				row[c] = nil
			case numeric[c]:
				v, _ := strconv.ParseFloat(trimmed, 64)
				row[c] = v
			default:
				row[c] = cell
			}
		}
		f.Index[i] = strconv.Itoa(i)
		f.Rows[i] = row
	}
	return f
}

func isNumericColumn(records [][]string, col int) bool {
	seen := false
	for _, rec := range records {
		cell := strings.TrimSpace(rec[col])
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// WriteCSV writes a header row followed by every row.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Columns); err != nil {
		return errors.Wrap(err, "failed to write csv header")
	}
	record := make([]string, len(f.Columns))
	for _, row := range f.Rows {
		for i, v := range row {
			record[i] = FormatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "failed to write csv row")
		}
	}
	writer.Flush()
	return writer.Error()
}
