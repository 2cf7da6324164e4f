package normalize

import "strings"

// dealTypeClasses groups deal-type tokens into adjacency classes. Tokens in
// the same class are treated as mutually "near" when classifying a requested
// deal type against a fund's listed types. Built once at init; immutable.
var dealTypeClasses = [][]string{
	{"buyout", "lbo", "control", "majority"},
	{"growth", "growth equity", "minority"},
	{"roll-up", "buy-and-build", "add-on", "platform"},
	{"carve-out", "divestiture"},
	{"recap", "recapitalization"},
}

// dealTypeAliases collapses common spelling variants onto canonical tokens.
// Kept as an ordered slice so free-text scans stay deterministic.
var dealTypeAliases = []struct{ alias, canon string }{
	{"leveraged buyout", "lbo"},
	{"growth-equity", "growth equity"},
	{"rollup", "roll-up"},
	{"roll up", "roll-up"},
	{"buy and build", "buy-and-build"},
	{"addon", "add-on"},
	{"add on", "add-on"},
	{"carveout", "carve-out"},
	{"carve out", "carve-out"},
	{"recapitalisation", "recapitalization"},
}

var dealTypeClass map[string]int

func init() {
	dealTypeClass = make(map[string]int)
	for i, class := range dealTypeClasses {
		for _, t := range class {
			dealTypeClass[t] = i
		}
	}
}

// DealType canonicalizes a deal-type string: lower-cased, trimmed, alias
// variants collapsed. Unknown strings pass through lower-cased.
func DealType(s string) string {
	t := Token(s)
	for _, a := range dealTypeAliases {
		if t == a.alias {
			return a.canon
		}
	}
	return t
}

// KnownDealType reports whether token is in the canonical vocabulary.
func KnownDealType(token string) bool {
	_, ok := dealTypeClass[DealType(token)]
	return ok
}

// SameDealClass reports whether two canonical tokens belong to the same
// adjacency class.
func SameDealClass(a, b string) bool {
	ca, ok := dealTypeClass[DealType(a)]
	if !ok {
		return false
	}
	cb, ok := dealTypeClass[DealType(b)]
	return ok && ca == cb
}

// FindDealType scans free text for the first canonical deal-type token and
// returns it, or "" when none is present. Classes are scanned in declaration
// order so repeated calls on the same text always agree.
func FindDealType(text string) string {
	t := Token(text)
	if t == "" {
		return ""
	}
	for _, class := range dealTypeClasses {
		for _, token := range class {
			if containsToken(t, token) {
				return token
			}
		}
	}
	for _, a := range dealTypeAliases {
		if strings.Contains(t, a.alias) {
			return a.canon
		}
	}
	return ""
}
