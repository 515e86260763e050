package display

import (
	"encoding/json"

	"github.com/teranos/dugout/frame"
)

// MarshalJSON marshals with two-space indentation
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// FrameJSON is the JSON shape of a frame: one object per row keyed by
// column, plus the row label.
type FrameJSON struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// NewFrameJSON converts a frame for JSON output. Missing cells become null
// and each row carries its label under "_index".
func NewFrameJSON(f *frame.Frame) FrameJSON {
	out := FrameJSON{Columns: f.Columns, Rows: make([]map[string]any, 0, f.Len())}
	for i, row := range f.Rows {
		obj := make(map[string]any, len(row)+1)
		obj["_index"] = f.Index[i]
		for c, v := range row {
			if frame.IsMissing(v) {
				obj[f.Columns[c]] = nil
				continue
			}
			obj[f.Columns[c]] = v
		}
		out.Rows = append(out.Rows, obj)
	}
	return out
}
