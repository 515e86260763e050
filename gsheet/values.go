package gsheet

import (
	"strconv"

	"github.com/teranos/dugout/frame"
)

// FrameToValues renders a frame as a header row followed by one row per
// record. The index is not written; missing cells become empty strings.
func FrameToValues(f *frame.Frame) [][]interface{} {
	values := make([][]interface{}, 0, f.Len()+1)

	header := make([]interface{}, len(f.Columns))
	for i, c := range f.Columns {
		header[i] = c
	}
	values = append(values, header)

	for _, row := range f.Rows {
		out := make([]interface{}, len(row))
		for i, v := range row {
			switch x := v.(type) {
			case float64, int64, bool:
				if frame.IsMissing(x) {
					out[i] = ""
					continue
				}
				out[i] = x
			default:
				out[i] = frame.FormatValue(v)
			}
		}
		values = append(values, out)
	}
	return values
}

// ValuesToFrame reads a header row and data rows as returned by the Sheets
// API. Short rows are padded, blank header cells are named "Unnamed: <n>"
// and numeric columns are inferred the same way CSV input is.
func ValuesToFrame(values [][]interface{}) *frame.Frame {
	if len(values) == 0 {
		return frame.New()
	}

	width := 0
	for _, row := range values {
		if len(row) > width {
			width = len(row)
		}
	}

	columns := make([]string, width)
	for i := range columns {
		if i < len(values[0]) {
			columns[i] = frame.FormatValue(values[0][i])
		}
		if columns[i] == "" {
			columns[i] = "Unnamed: " + strconv.Itoa(i)
		}
	}

	records := make([][]string, 0, len(values)-1)
	for _, row := range values[1:] {
		rec := make([]string, width)
		for i, v := range row {
			rec[i] = frame.FormatValue(v)
		}
		records = append(records, rec)
	}
	return frame.FromStrings(columns, records, false)
}
