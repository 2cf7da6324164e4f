package matcher

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/fundmatch/internal/config"
	"github.com/sells-group/fundmatch/internal/model"
)

// ErrEmptyDataset is returned when no fund records are available to score.
// Callers should report it and render an empty shortlist rather than abort.
var ErrEmptyDataset = eris.New("matcher: fund dataset is empty")

// Request carries one matching invocation's inputs.
type Request struct {
	Profile model.CompanyProfile

	// Context is free text forwarded to the criteria builder; a deal-type
	// token found in it sets the requested deal type.
	Context string

	// DealType explicitly requests a deal type, overriding any context hint.
	DealType string

	// TopK is the shortlist size; clamped to [MinTopK, MaxTopK].
	TopK int
}

// Engine scores fund records against company criteria. It is stateless
// across invocations and safe for concurrent use.
type Engine struct {
	cfg config.MatchConfig
}

// New creates an Engine with the given config.
func New(cfg config.MatchConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Match scores every fund against the request, ranks by descending total
// score with fund name as tie-break, and returns the top-K shortlist.
// Sparse inputs degrade to zero-contribution factors; the only reported
// condition is an empty dataset.
func (e *Engine) Match(ctx context.Context, req Request, funds []model.Fund) ([]model.ShortlistItem, error) {
	if len(funds) == 0 {
		return nil, ErrEmptyDataset
	}

	crit := BuildCriteria(req.Profile, req.Context, req.DealType)
	items := make([]model.ShortlistItem, len(funds))

	if e.cfg.Workers > 1 {
		// Fan out per fund. Scoring is read-only and each goroutine writes
		// only its own slot, so the deterministic sort below is the only
		// ordering step.
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.Workers)
		for i := range funds {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				items[i] = e.scoreFund(crit, funds[i])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, eris.Wrap(err, "matcher: concurrent scoring")
		}
	} else {
		for i := range funds {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "matcher: scoring cancelled")
			}
			items[i] = e.scoreFund(crit, funds[i])
		}
	}

	// Equal scores order by name so ranking is a total order.
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Fund < items[j].Fund
	})

	k := clampTopK(req.TopK)
	if len(items) > k {
		items = items[:k]
	}

	zap.L().Debug("matcher: shortlist complete",
		zap.Int("funds_scored", len(funds)),
		zap.Int("shortlist", len(items)),
		zap.String("deal_type", crit.DealType),
	)

	return items, nil
}

// scoreFund computes all five subscores for one fund and sums their
// contributions. Subscore order is fixed so serialized output is stable.
func (e *Engine) scoreFund(crit Criteria, fund model.Fund) model.ShortlistItem {
	subs := []model.Subscore{
		scoreIndustry(crit.Industries, fund, e.cfg.IndustryWeight),
		scoreRegion(crit.Regions, fund, e.cfg.RegionWeight),
		scoreRange(model.FactorRevenue, "revenue", crit.RevenueUSD, fund.RevenueFocus, e.cfg.RevenueWeight),
		scoreRange(model.FactorEmployees, "employee count", crit.Employees, fund.EmployeeFocus, e.cfg.EmployeeWeight),
		scoreDealType(crit.DealType, fund, e.cfg.DealTypeWeight),
	}

	var total float64
	for _, s := range subs {
		total += s.Contribution
	}

	return model.ShortlistItem{
		Fund:      fund.Name,
		Score:     round4(total),
		Subscores: subs,
	}
}

func clampTopK(k int) int {
	if k < MinTopK {
		return MinTopK
	}
	if k > MaxTopK {
		return MaxTopK
	}
	return k
}
