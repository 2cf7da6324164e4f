// Package matcher implements the deterministic buyer-matching engine: it
// turns a company profile plus a fund catalog into per-factor subscores, a
// weighted total, rationale text, and a stable ranking.
package matcher

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fundmatch/internal/config"
)

// Bounds on the requested shortlist size. Out-of-range values are clamped,
// never rejected.
const (
	MinTopK = 1
	MaxTopK = 50
)

// DefaultConfig returns a config.MatchConfig with the standard weights.
// Weights sum to 1.0.
func DefaultConfig() config.MatchConfig {
	return config.MatchConfig{
		IndustryWeight:  0.40,
		RegionWeight:    0.20,
		RevenueWeight:   0.20,
		EmployeeWeight:  0.10,
		DealTypeWeight:  0.10,
		TopK:            5,
		DefaultDealType: "buyout",
		Workers:         1,
	}
}

// WeightSum returns the sum of all factor weights.
func WeightSum(c config.MatchConfig) float64 {
	return c.IndustryWeight + c.RegionWeight + c.RevenueWeight +
		c.EmployeeWeight + c.DealTypeWeight
}

// ValidateConfig checks that a MatchConfig is internally consistent.
func ValidateConfig(c config.MatchConfig) error {
	var errs []string

	weights := map[string]float64{
		"industry_weight":  c.IndustryWeight,
		"region_weight":    c.RegionWeight,
		"revenue_weight":   c.RevenueWeight,
		"employee_weight":  c.EmployeeWeight,
		"deal_type_weight": c.DealTypeWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	sum := WeightSum(c)
	if sum <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}
	if math.Abs(sum-1.0) > 0.001 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.3f", sum))
	}

	if c.Workers < 0 {
		errs = append(errs, "workers must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("matcher: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
