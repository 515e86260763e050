// Package display renders command results as terminal tables or JSON.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"github.com/teranos/dugout/frame"
)

// RenderTable prints a header row and data rows with pterm
func RenderTable(w io.Writer, header []string, rows [][]string) error {
	if w == nil {
		w = os.Stdout
	}
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)
	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithWriter(w).
		WithData(data).
		Render()
}

// RenderFrame prints up to limit rows of f (all when limit <= 0) with the
// row labels as the first column, followed by a row count footer when
// rows were cut.
func RenderFrame(w io.Writer, f *frame.Frame, limit int) error {
	if w == nil {
		w = os.Stdout
	}
	n := f.Len()
	if limit > 0 && n > limit {
		n = limit
	}

	header := append([]string{""}, f.Columns...)
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, 0, len(f.Columns)+1)
		row = append(row, f.Index[i])
		for _, v := range f.Rows[i] {
			row = append(row, frame.FormatValue(v))
		}
		rows[i] = row
	}

	if err := RenderTable(w, header, rows); err != nil {
		return err
	}
	if n < f.Len() {
		_, err := fmt.Fprintf(w, "... %d of %d rows shown\n", n, f.Len())
		return err
	}
	return nil
}
