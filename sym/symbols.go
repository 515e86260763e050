// Package sym defines the glyphs dugout prints in logs and CLI help.
// They are stable across commands so log lines can be grepped by area.
package sym

// Command glyphs.
const (
	AM = "≡" // am: configuration
	AX = "⋈" // match: fuzzy join
	DB = "⊔" // db: SQLite storage
	IX = "⨳" // ingest: retrosheet, fangraphs, kaggle
	SO = "⟶" // sheet: push and pull to Google Sheets
)

// System glyphs.
const (
	Pulse = "꩜" // rate limiting and waits
	Doc   = "▤" // files on disk
)

type entry struct {
	glyph       string
	commands    []string
	description string
}

var registry = []entry{
	{AM, []string{"am"}, "Configuration"},
	{AX, []string{"match"}, "Fuzzy join"},
	{DB, []string{"db"}, "SQLite storage"},
	{IX, []string{"retrosheet", "fangraphs", "kaggle"}, "Ingest external data"},
	{SO, []string{"sheet"}, "Google Sheets"},
}

var commandToGlyph = func() map[string]string {
	m := make(map[string]string)
	for _, e := range registry {
		for _, c := range e.commands {
			m[c] = e.glyph
		}
	}
	return m
}()

// ForCommand returns the glyph for a top-level command, or "" if it has none.
func ForCommand(cmd string) string {
	return commandToGlyph[cmd]
}

// Describe returns the short description of a glyph's area.
func Describe(glyph string) string {
	for _, e := range registry {
		if e.glyph == glyph {
			return e.description
		}
	}
	return ""
}

// PaletteOrder is the order glyphs are listed in help output.
var PaletteOrder = []string{AM, IX, DB, AX, SO}
