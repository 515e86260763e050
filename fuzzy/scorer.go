package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/teranos/dugout/errors"
)

// Method names a string-similarity strategy.
type Method string

const (
	// MethodRatio compares the raw character sequences.
	MethodRatio Method = "ratio"
	// MethodPartialRatio scores the shorter string against the best
	// equal-length window of the longer one.
	MethodPartialRatio Method = "partial_ratio"
	// MethodTokenSortRatio normalises both strings, sorts their tokens
	// and compares the results, so word order does not matter.
	MethodTokenSortRatio Method = "token_sort_ratio"
	// MethodPartialTokenSortRatio is MethodTokenSortRatio with partial comparison.
	MethodPartialTokenSortRatio Method = "partial_token_sort_ratio"
	// MethodTokenSetRatio compares the shared tokens against each side's
	// leftovers, so extra words on one side are forgiven.
	MethodTokenSetRatio Method = "token_set_ratio"
)

// DefaultMethod is used by the CLI when no scorer is configured.
const DefaultMethod = MethodTokenSortRatio

// Scorer returns a similarity in [0, 100]; higher is more similar.
type Scorer func(a, b string) int

var scorers = map[Method]Scorer{
	MethodRatio:                 Ratio,
	MethodPartialRatio:          PartialRatio,
	MethodTokenSortRatio:        TokenSortRatio,
	MethodPartialTokenSortRatio: PartialTokenSortRatio,
	MethodTokenSetRatio:         TokenSetRatio,
}

// Methods lists the recognised scoring methods in a stable order.
func Methods() []Method {
	out := make([]Method, 0, len(scorers))
	for m := range scorers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseMethod validates a scoring method name.
func ParseMethod(name string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := scorers[m]; !ok {
		return "", errors.WithHintf(
			errors.NewInvalidArgumentError("unknown scoring method %q", name),
			"valid methods: %v", Methods())
	}
	return m, nil
}

// Scorer returns the scoring function for the method.
func (m Method) Scorer() (Scorer, error) {
	s, ok := scorers[m]
	if !ok {
		return nil, errors.NewInvalidArgumentError("unknown scoring method %q", string(m))
	}
	return s, nil
}

// Ratio is the normalised Levenshtein similarity of the raw strings:
// 100 * (1 - distance / longer length), rounded. Only equal strings score 100.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	distance := levenshtein.ComputeDistance(a, b)
	return inexact(a, b, int(math.Round(100*(1-float64(distance)/float64(longest)))))
}

// inexact keeps 100 for identical input only. Rounding, windowing and
// normalisation can otherwise score different strings 100, and a threshold
// of 100 must mean an exact match.
func inexact(a, b string, score int) int {
	if score >= 100 && a != b {
		return 99
	}
	return score
}

// PartialRatio returns the best Ratio between the shorter string and every
// window of the longer string with the same length.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == len(long) {
		return Ratio(a, b)
	}

	needle := string(short)
	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		score := Ratio(needle, string(long[i:i+len(short)]))
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return inexact(a, b, best)
}

// TokenSortRatio compares the sorted, normalised tokens of both strings.
func TokenSortRatio(a, b string) int {
	return tokenSort(a, b, Ratio)
}

// PartialTokenSortRatio compares sorted, normalised tokens with PartialRatio.
func PartialTokenSortRatio(a, b string) int {
	return tokenSort(a, b, PartialRatio)
}

func tokenSort(a, b string, compare Scorer) int {
	if a == b {
		return 100
	}
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	sort.Strings(ta)
	sort.Strings(tb)
	return inexact(a, b, compare(strings.Join(ta, " "), strings.Join(tb, " ")))
}

// TokenSetRatio splits both strings into token sets and takes the best Ratio
// among intersection, intersection+leftovers(a) and intersection+leftovers(b).
func TokenSetRatio(a, b string) int {
	if a == b {
		return 100
	}
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	section := strings.Join(common, " ")
	combinedA := strings.TrimSpace(section + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(section + " " + strings.Join(onlyB, " "))

	best := Ratio(section, combinedA)
	if s := Ratio(section, combinedB); s > best {
		best = s
	}
	if s := Ratio(combinedA, combinedB); s > best {
		best = s
	}
	return inexact(a, b, best)
}

// normalize lower-cases, replaces anything that is not a letter or digit
// with a space and collapses whitespace.
func normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

func tokens(s string) []string {
	return strings.Fields(normalize(s))
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tokens(s) {
		set[t] = true
	}
	return set
}
