package fuzzy

import (
	"io"

	"github.com/teranos/dugout/frame"
)

// Column names used by Table.Frame.
const (
	SourceColumn = "COL1"
	MatchColumn  = "COL2_MATCH"
)

// Record is one matcher result. Matched is false when no target reached the
// threshold; Match is then empty and carries no meaning.
type Record struct {
	Source  string `json:"source"`
	Match   string `json:"match,omitempty"`
	Matched bool   `json:"matched"`
	Score   int    `json:"score"`
}

// Table is the ordered matcher output, one record per distinct source.
type Table []Record

// Matched counts records with a match.
func (t Table) Matched() int {
	n := 0
	for _, r := range t {
		if r.Matched {
			n++
		}
	}
	return n
}

// Lookup maps matched sources to their targets.
func (t Table) Lookup() map[string]string {
	out := make(map[string]string, len(t))
	for _, r := range t {
		if r.Matched {
			out[r.Source] = r.Match
		}
	}
	return out
}

// Frame renders the table as two columns; unmatched sources get a missing cell.
func (t Table) Frame() *frame.Frame {
	rows := make([][]any, len(t))
	for i, r := range t {
		var match any
		if r.Matched {
			match = r.Match
		}
		rows[i] = []any{r.Source, match}
	}
	f, _ := frame.FromRecords([]string{SourceColumn, MatchColumn}, rows)
	return f
}

// WriteCSV writes the Frame rendering as CSV.
func (t Table) WriteCSV(w io.Writer) error {
	return t.Frame().WriteCSV(w)
}
