package main

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fundmatch/internal/dataset"
	"github.com/sells-group/fundmatch/internal/extract"
	"github.com/sells-group/fundmatch/internal/fetch"
	"github.com/sells-group/fundmatch/internal/matcher"
	"github.com/sells-group/fundmatch/internal/model"
	"github.com/sells-group/fundmatch/internal/normalize"
	"github.com/sells-group/fundmatch/internal/store"
	"github.com/sells-group/fundmatch/pkg/anthropic"
)

// initStore opens and migrates the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// newExtractor picks the model-backed extractor when a key is configured,
// the keyword heuristic otherwise. --offline forces the heuristic.
func newExtractor(offline bool) extract.Extractor {
	if offline || cfg.Anthropic.Key == "" {
		if !offline {
			zap.L().Warn("no anthropic key configured, using heuristic extraction")
		}
		return extract.NewHeuristicExtractor()
	}
	return extract.NewClaudeExtractor(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic)
}

// loadFunds reads the fund catalog from a file path, or from the store
// when path is empty.
func loadFunds(ctx context.Context, st store.Store, path string) ([]model.Fund, error) {
	if path != "" {
		funds, err := dataset.Load(path)
		if err != nil {
			return nil, eris.Wrapf(err, "load dataset %s", path)
		}
		return funds, nil
	}
	if st == nil {
		return nil, eris.New("no dataset path and no store configured")
	}
	funds, err := st.ListFunds(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "list funds from store")
	}
	return funds, nil
}

// resolveDealType applies the fallback when neither an explicit flag nor
// the caller context names a deal type. An empty return defers to the
// criteria builder's context hint.
func resolveDealType(explicit, extraContext, fallback string) string {
	if explicit != "" {
		return explicit
	}
	if normalize.FindDealType(extraContext) != "" {
		return ""
	}
	return fallback
}

// matchRunHandle tracks a persisted run so the caller can mark its
// outcome. A nil handle is a no-op, which keeps the unsaved path clean.
type matchRunHandle struct {
	st store.Store
	id string
}

func beginRun(ctx context.Context, st store.Store, url string) (*matchRunHandle, error) {
	run, err := st.CreateRun(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "create run")
	}
	return &matchRunHandle{st: st, id: run.ID}, nil
}

func (h *matchRunHandle) complete(ctx context.Context, result *model.MatchResult) {
	if h == nil {
		return
	}
	if err := h.st.CompleteRun(ctx, h.id, result); err != nil {
		zap.L().Warn("failed to record run result", zap.String("run_id", h.id), zap.Error(err))
	}
}

func (h *matchRunHandle) fail(ctx context.Context, runErr error) {
	if h == nil {
		return
	}
	if err := h.st.FailRun(ctx, h.id, runErr.Error()); err != nil {
		zap.L().Warn("failed to record run failure", zap.String("run_id", h.id), zap.Error(err))
	}
}

// pipeline bundles the fetch, extract, and score stages with the loaded
// fund catalog so each command wires them once.
type pipeline struct {
	fetcher         *fetch.Fetcher
	extractor       extract.Extractor
	engine          *matcher.Engine
	funds           []model.Fund
	defaultDealType string
}

func newPipeline(offline bool, funds []model.Fund) *pipeline {
	return &pipeline{
		fetcher:         fetch.New(cfg.Fetch),
		extractor:       newExtractor(offline),
		engine:          matcher.New(cfg.Match),
		funds:           funds,
		defaultDealType: cfg.Match.DefaultDealType,
	}
}

// match runs fetch, extract, then score for one URL.
func (p *pipeline) match(ctx context.Context, url, extraContext, dealType string, topK int) (*model.MatchResult, error) {
	page, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	profile, err := p.extractor.Extract(ctx, page, extraContext)
	if err != nil {
		return nil, err
	}

	return p.matchProfile(ctx, profile, extraContext, dealType, topK)
}

// matchProfile scores an already-extracted profile against the catalog.
// Callers that have profile data in hand skip the fetch and extract stages.
func (p *pipeline) matchProfile(ctx context.Context, profile *model.CompanyProfile, extraContext, dealType string, topK int) (*model.MatchResult, error) {
	shortlist, err := p.engine.Match(ctx, matcher.Request{
		Profile:  *profile,
		Context:  extraContext,
		DealType: resolveDealType(dealType, extraContext, p.defaultDealType),
		TopK:     topK,
	}, p.funds)
	if err != nil {
		if errors.Is(err, matcher.ErrEmptyDataset) {
			zap.L().Warn("fund catalog is empty, returning no matches", zap.String("company", profile.Name))
			return &model.MatchResult{Profile: *profile, Shortlist: []model.ShortlistItem{}}, nil
		}
		return nil, err
	}

	return &model.MatchResult{Profile: *profile, Shortlist: shortlist}, nil
}
