package matcher

import (
	"github.com/sells-group/fundmatch/internal/model"
	"github.com/sells-group/fundmatch/internal/normalize"
)

// classifyDealType classifies a requested deal type against a fund's listed
// deal types. Literal membership wins; otherwise shared adjacency class is a
// near-match. An empty request is not-applicable, which rationale text must
// keep distinct from a mismatch.
func classifyDealType(requested string, fundTypes []string) model.DealClassification {
	if requested == "" {
		return model.DealNotApplicable
	}

	req := normalize.DealType(requested)
	for _, ft := range fundTypes {
		if normalize.DealType(ft) == req {
			return model.DealMatch
		}
	}
	for _, ft := range fundTypes {
		if normalize.SameDealClass(req, ft) {
			return model.DealNearMatch
		}
	}
	return model.DealMismatch
}
