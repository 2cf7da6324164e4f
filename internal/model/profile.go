// Package model defines the shared data types for the matching pipeline.
package model

// CompanyProfile is the structured description of a target company, produced
// by an extractor (Claude or the offline heuristic). Every field is optional;
// the matcher degrades to zero-contribution factors for anything missing.
type CompanyProfile struct {
	Name          string   `json:"company_name"`
	URL           string   `json:"url"`
	Industries    []string `json:"industries,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	EmployeeCount *Range   `json:"employee_count_range,omitempty"`
	RevenueUSD    *Range   `json:"revenue_range_usd,omitempty"`
	Offerings     []string `json:"offerings,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Confidence    float64  `json:"confidence"`
}

// Empty reports whether the profile carries no matchable signal.
func (p *CompanyProfile) Empty() bool {
	return p == nil ||
		(len(p.Industries) == 0 && len(p.Locations) == 0 &&
			p.EmployeeCount.Empty() && p.RevenueUSD.Empty())
}
