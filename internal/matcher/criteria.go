package matcher

import (
	"github.com/sells-group/fundmatch/internal/model"
	"github.com/sells-group/fundmatch/internal/normalize"
)

// Criteria is the normalized, read-only view of a company profile that the
// factor scorers compare against each fund. Built once per engine invocation
// and discarded after scoring.
type Criteria struct {
	Industries []string
	Regions    []string
	RevenueUSD *model.Range
	Employees  *model.Range

	// DealType is the canonical requested deal type, or "" when no
	// preference could be derived. An empty value marks the deal-type
	// factor not-applicable rather than a mismatch.
	DealType string
}

// BuildCriteria derives Criteria from a profile, an optional free-text
// context string, and an optional explicit deal type. Precedence for the
// deal type: explicit > context hint > none. Never fails: an empty profile
// yields criteria that score every fund at zero.
func BuildCriteria(p model.CompanyProfile, context, explicitDealType string) Criteria {
	c := Criteria{
		Industries: normalize.Tokens(p.Industries),
		Regions:    normalize.Regions(p.Locations),
		RevenueUSD: p.RevenueUSD,
		Employees:  p.EmployeeCount,
	}

	switch {
	case explicitDealType != "":
		c.DealType = normalize.DealType(explicitDealType)
	case context != "":
		c.DealType = normalize.FindDealType(context)
	}

	return c
}
