package matcher

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sells-group/fundmatch/internal/model"
	"github.com/sells-group/fundmatch/internal/normalize"
)

// round4 trims a contribution to 4 decimal places for stable serialized
// output. Totals are computed from the rounded values so weight conservation
// holds exactly on what callers see.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// scoreIndustry scores the overlap between company and fund industries as
// |company ∩ fund| / |company|, clamped to [0,1].
func scoreIndustry(companyInds []string, fund model.Fund, weight float64) model.Subscore {
	s := model.Subscore{Factor: model.FactorIndustry, Weight: weight}

	if len(companyInds) == 0 {
		s.Detail = "no industries identified for the company"
		return s
	}

	fundInds := normalize.Tokens(fund.Industries)
	fundSet := make(map[string]bool, len(fundInds))
	for _, fi := range fundInds {
		fundSet[fi] = true
	}

	var overlap []string
	for _, ci := range companyInds {
		if fundSet[ci] {
			overlap = append(overlap, ci)
		}
	}
	sort.Strings(overlap)

	s.Applied = true
	s.Raw = clamp01(float64(len(overlap)) / float64(len(companyInds)))
	s.Contribution = round4(s.Raw * weight)

	if len(overlap) == 0 {
		s.Detail = fmt.Sprintf("none of the company's %d industries match the fund's focus", len(companyInds))
		return s
	}
	s.Detail = fmt.Sprintf("%d of %d industries overlap: %s",
		len(overlap), len(companyInds), titleJoin(overlap))
	return s
}

// scoreRegion scores region fit as binary set intersection; no partial credit.
func scoreRegion(companyRegions []string, fund model.Fund, weight float64) model.Subscore {
	s := model.Subscore{Factor: model.FactorRegion, Weight: weight}

	if len(companyRegions) == 0 {
		s.Detail = "no regions identified for the company"
		return s
	}

	fundRegions := normalize.Regions(fund.Regions)
	fundSet := make(map[string]bool, len(fundRegions))
	for _, fr := range fundRegions {
		fundSet[fr] = true
	}

	var overlap []string
	for _, cr := range companyRegions {
		if fundSet[cr] {
			overlap = append(overlap, cr)
		}
	}
	sort.Strings(overlap)

	s.Applied = true
	if len(overlap) > 0 {
		s.Raw = 1
		s.Detail = fmt.Sprintf("region overlap: %s", titleJoin(overlap))
	} else {
		s.Detail = "no overlap between company regions and fund regions"
	}
	s.Contribution = round4(s.Raw * weight)
	return s
}

// scoreRange scores how much of the company's numeric range the fund's focus
// range covers. Absent data on either side applies no score and no penalty.
func scoreRange(factor, noun string, company, fund *model.Range, weight float64) model.Subscore {
	s := model.Subscore{Factor: factor, Weight: weight}

	switch {
	case company.Empty():
		s.Detail = fmt.Sprintf("company %s range unknown", noun)
		return s
	case fund.Empty():
		s.Detail = fmt.Sprintf("fund lists no %s focus", noun)
		return s
	}

	s.Applied = true
	s.Raw = rangeCoverage(company, fund)
	s.Contribution = round4(s.Raw * weight)

	switch {
	case s.Raw >= 1:
		s.Detail = fmt.Sprintf("company %s range fully within fund focus", noun)
	case s.Raw > 0:
		s.Detail = fmt.Sprintf("fund focus covers %.0f%% of the company %s range", s.Raw*100, noun)
	default:
		s.Detail = fmt.Sprintf("company %s range does not overlap fund focus", noun)
	}
	return s
}

// rangeCoverage returns the fraction of the company interval covered by the
// fund interval, clamped to [0,1]. Open bounds are treated as infinite. A
// zero-width company range scores 1 when the point lies inside the fund
// range. A company range that is itself unbounded on a side has no finite
// width, so coverage degrades to binary: 1 on any overlap.
func rangeCoverage(company, fund *model.Range) float64 {
	lo := math.Inf(-1)
	hi := math.Inf(1)
	if company.Min != nil {
		lo = *company.Min
	}
	if company.Max != nil {
		hi = *company.Max
	}
	flo := math.Inf(-1)
	fhi := math.Inf(1)
	if fund.Min != nil {
		flo = *fund.Min
	}
	if fund.Max != nil {
		fhi = *fund.Max
	}

	// Inverted input scores zero rather than erroring.
	if hi < lo || fhi < flo {
		return 0
	}

	interLo := math.Max(lo, flo)
	interHi := math.Min(hi, fhi)
	if interHi < interLo {
		return 0
	}

	width := hi - lo
	if math.IsInf(width, 1) {
		// Unbounded company range: any overlap counts in full.
		return 1
	}
	if width == 0 {
		// Point estimate: inside or outside, nothing in between.
		if fund.Contains(lo) {
			return 1
		}
		return 0
	}

	return clamp01((interHi - interLo) / width)
}

// scoreDealType scores the requested deal type against the fund's listed
// types. Only an exact (post-normalization) match earns credit; near-matches
// and mismatches score zero but keep distinct classifications so rationale
// can tell "flexible near-fit" from "no fit".
func scoreDealType(requested string, fund model.Fund, weight float64) model.Subscore {
	s := model.Subscore{Factor: model.FactorDealType, Weight: weight}
	s.Classification = classifyDealType(requested, fund.DealTypes)

	switch s.Classification {
	case model.DealNotApplicable:
		s.Detail = "no deal-type preference specified"
		return s
	case model.DealMatch:
		s.Applied = true
		s.Raw = 1
		s.Detail = fmt.Sprintf("fund lists the requested deal type (%s)",
			normalize.Title(normalize.DealType(requested)))
	case model.DealNearMatch:
		s.Applied = true
		s.Detail = fmt.Sprintf("fund lists an adjacent deal type to %s (%s); flexible near-fit, no score credit",
			normalize.Title(normalize.DealType(requested)), titleJoin(normalize.Tokens(fund.DealTypes)))
	case model.DealMismatch:
		s.Applied = true
		s.Detail = fmt.Sprintf("requested deal type %s matches none of the fund's deal types",
			normalize.Title(normalize.DealType(requested)))
	}

	s.Contribution = round4(s.Raw * weight)
	return s
}

func titleJoin(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = normalize.Title(t)
	}
	return strings.Join(parts, ", ")
}
