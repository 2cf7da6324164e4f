package model

// Factor names, in the order subscores appear in every ShortlistItem.
const (
	FactorIndustry  = "industry"
	FactorRegion    = "region"
	FactorRevenue   = "revenue"
	FactorEmployees = "employees"
	FactorDealType  = "deal_type"
)

// DealClassification labels how a requested deal type relates to a fund's
// listed deal types. Near-matches and mismatches both contribute zero score;
// the label exists so rationale text can tell them apart.
type DealClassification string

const (
	DealMatch         DealClassification = "match"
	DealNearMatch     DealClassification = "near_match"
	DealMismatch      DealClassification = "mismatch"
	DealNotApplicable DealClassification = "not_applicable"
)

// Subscore is one factor's contribution to a fund's total score.
// Contribution is always raw*weight, so 0 <= Contribution <= Weight.
type Subscore struct {
	Factor         string             `json:"factor"`
	Applied        bool               `json:"applied"`
	Raw            float64            `json:"raw"`
	Weight         float64            `json:"weight"`
	Contribution   float64            `json:"contribution"`
	Classification DealClassification `json:"classification,omitempty"`
	Detail         string             `json:"detail"`
}

// ShortlistItem is one scored fund. Subscores are ordered by factor
// (industry, region, revenue, employees, deal_type) so serialized output is
// byte-stable across runs.
type ShortlistItem struct {
	Fund      string     `json:"fund"`
	Score     float64    `json:"score"`
	Subscores []Subscore `json:"subscores"`
}

// Subscore returns the subscore for the named factor, or nil.
func (s *ShortlistItem) Subscore(factor string) *Subscore {
	for i := range s.Subscores {
		if s.Subscores[i].Factor == factor {
			return &s.Subscores[i]
		}
	}
	return nil
}

// MatchResult pairs the extracted profile with its ranked shortlist.
// This is the exact shape dumped as JSON by the CLI and the HTTP API.
type MatchResult struct {
	Profile   CompanyProfile  `json:"company_profile"`
	Shortlist []ShortlistItem `json:"shortlist"`
}
