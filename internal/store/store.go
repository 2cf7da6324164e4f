package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fundmatch/internal/config"
	"github.com/sells-group/fundmatch/internal/model"
)

// RunFilter specifies criteria for listing match runs.
type RunFilter struct {
	Status     model.RunStatus `json:"status,omitempty"`
	CompanyURL string          `json:"company_url,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for fund catalogs and run history.
type Store interface {
	// Funds
	UpsertFunds(ctx context.Context, funds []model.Fund) (int, error)
	ListFunds(ctx context.Context) ([]model.Fund, error)

	// Runs
	CreateRun(ctx context.Context, companyURL string) (*model.MatchRun, error)
	CompleteRun(ctx context.Context, runID string, result *model.MatchResult) error
	FailRun(ctx context.Context, runID string, runErr string) error
	GetRun(ctx context.Context, runID string) (*model.MatchRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.MatchRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New opens a Store for the configured driver.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
