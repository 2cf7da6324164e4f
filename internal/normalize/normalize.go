// Package normalize canonicalizes free-text fields into comparable tokens.
// All functions are pure; unrecognized input passes through lower-cased.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var multiSpace = regexp.MustCompile(`\s{2,}`)

// Token lower-cases, trims, and collapses internal whitespace.
func Token(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	return multiSpace.ReplaceAllString(t, " ")
}

// Tokens applies Token to each element and drops empties and duplicates,
// preserving first-seen order.
func Tokens(values []string) []string {
	var out []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		t := Token(v)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Title renders a token for display in rationale text ("growth equity" ->
// "Growth Equity"). Presentation only; never used for comparison. A fresh
// caser per call because cases.Caser carries mutable transform state and
// Title runs on concurrent scoring goroutines.
func Title(token string) string {
	return cases.Title(language.AmericanEnglish).String(token)
}

// regionAlias maps location keywords to a coarse region token. Order matters:
// the first matching entry wins, which keeps region inference deterministic.
var regionAliases = []struct {
	region   string
	keywords []string
}{
	{"us", []string{"united states", "usa", "us", "u.s.", "america", "california", "texas", "ny", "new york", "florida", "chicago", "boston"}},
	{"canada", []string{"canada", "ontario", "quebec", "toronto", "vancouver"}},
	{"europe", []string{"uk", "united kingdom", "england", "london", "europe", "germany", "france", "netherlands"}},
}

// Region maps a single location string to its region token. Strings that
// match no alias pass through lower-cased so set comparison still works on
// datasets that already use custom region labels.
func Region(location string) string {
	t := Token(location)
	if t == "" {
		return ""
	}
	for _, a := range regionAliases {
		for _, kw := range a.keywords {
			if containsToken(t, kw) {
				return a.region
			}
		}
	}
	return t
}

// Regions maps location strings to deduplicated region tokens, preserving
// first-seen order.
func Regions(locations []string) []string {
	var out []string
	seen := make(map[string]bool, len(locations))
	for _, loc := range locations {
		r := Region(loc)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// containsToken reports whether text contains kw. Keywords with punctuation
// or spaces match as substrings; plain words must match a whole field so that
// "us" does not hit "business" or "austria".
func containsToken(text, kw string) bool {
	if strings.IndexFunc(kw, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) >= 0 {
		return strings.Contains(text, kw)
	}
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if f == kw {
			return true
		}
	}
	return false
}
