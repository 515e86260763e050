package fangraphs

import (
	"net/url"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/teranos/dugout/errors"
)

// DefaultBattingStats is the custom batting column list used by the
// leaderboard defaults.
const DefaultBattingStats = "c,3,6,5,8,9,10,11,13,12,14,17,21,39,51,61,316,50,317,102,103,107,206,207,208,211,308,305,306,311,60"

// Params are the leaderboard query parameters.
type Params struct {
	League    string `toml:"lg"`        // all, al, nl
	Month     string `toml:"month"`     // 0 full season, 1/2/3 past 7/14/30 days
	Position  string `toml:"pos"`       // all, c, 1b, 2b, of, p, ...
	Qualified string `toml:"qual"`      // minimum plate appearances
	Season    string `toml:"season"`    // yyyy
	Stats     string `toml:"stats"`     // bat, pit, fld
	Type      string `toml:"type"`      // custom column list
	StartDate string `toml:"startdate"` // yyyy-mm-dd
	EndDate   string `toml:"enddate"`   // yyyy-mm-dd
	Sort      string `toml:"sort"`      // "<column>,<d|a>"
}

// DefaultBattingParams returns the full-season batting leaderboard for 2022.
func DefaultBattingParams() Params {
	return Params{
		League:    "all",
		Month:     "0",
		Position:  "all",
		Qualified: "0",
		Season:    "2022",
		Stats:     "bat",
		Type:      DefaultBattingStats,
		Sort:      "15,d",
	}
}

// WithSeason returns a copy of p for another season.
func (p Params) WithSeason(season int) Params {
	p.Season = strconv.Itoa(season)
	return p
}

// Values encodes the parameters under their query names.
func (p Params) Values() url.Values {
	return url.Values{
		"lg":        {p.League},
		"month":     {p.Month},
		"pos":       {p.Position},
		"qual":      {p.Qualified},
		"season":    {p.Season},
		"stats":     {p.Stats},
		"type":      {p.Type},
		"startdate": {p.StartDate},
		"enddate":   {p.EndDate},
		"sort":      {p.Sort},
	}
}

// UpdateURLParams returns base with its query replaced by values.
func UpdateURLParams(base string, values url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(errors.Mark(err, errors.ErrInvalidArgument), "invalid URL %q", base)
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// LoadPresets reads named parameter sets from a TOML file. Fields a preset
// leaves out take their value from DefaultBattingParams.
//
//	[presets.pitching]
//	stats = "pit"
//	sort = "19,a"
func LoadPresets(path string) (map[string]Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("presets file %s not found", path)
		}
		return nil, errors.Wrapf(err, "read presets %s", path)
	}

	var raw struct {
		Presets map[string]toml.Primitive `toml:"presets"`
	}
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidArgument), "parse presets %s", path)
	}

	presets := make(map[string]Params, len(raw.Presets))
	for name, prim := range raw.Presets {
		p := DefaultBattingParams()
		if err := md.PrimitiveDecode(prim, &p); err != nil {
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidArgument), "preset %q", name)
		}
		presets[name] = p
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.NewInvalidArgumentError("presets %s has unknown keys: %v", path, undecoded)
	}
	return presets, nil
}
