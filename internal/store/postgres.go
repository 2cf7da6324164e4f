package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fundmatch/internal/model"
)

// Pool abstracts the pgx connection pool so tests can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS funds (
	name       TEXT PRIMARY KEY,
	profile    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS match_runs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_url TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'pending',
	result      JSONB,
	error       TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_match_runs_status ON match_runs(status);
CREATE INDEX IF NOT EXISTS idx_match_runs_company_url ON match_runs(company_url);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) UpsertFunds(ctx context.Context, funds []model.Fund) (int, error) {
	now := time.Now().UTC()
	count := 0
	for _, f := range funds {
		if f.Name == "" {
			continue
		}
		profileJSON, err := json.Marshal(f)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal fund %s", f.Name)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO funds (name, profile, updated_at) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE SET profile = $2, updated_at = $3`,
			f.Name, profileJSON, now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: upsert fund %s", f.Name)
		}
		count++
	}
	return count, nil
}

func (s *PostgresStore) ListFunds(ctx context.Context) ([]model.Fund, error) {
	rows, err := s.pool.Query(ctx, `SELECT profile FROM funds ORDER BY name ASC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list funds")
	}
	defer rows.Close()

	var funds []model.Fund
	for rows.Next() {
		var profileJSON []byte
		if err := rows.Scan(&profileJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan fund")
		}
		var f model.Fund
		if err := json.Unmarshal(profileJSON, &f); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal fund")
		}
		funds = append(funds, f)
	}
	return funds, eris.Wrap(rows.Err(), "postgres: list funds iterate")
}

func (s *PostgresStore) CreateRun(ctx context.Context, companyURL string) (*model.MatchRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_runs (id, company_url, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, companyURL, string(model.RunStatusPending), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.MatchRun{
		ID:         id,
		CompanyURL: companyURL,
		Status:     model.RunStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.MatchResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE match_runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		resultJSON, string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, runErr string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE match_runs SET error = $1, status = $2, updated_at = $3 WHERE id = $4`,
		runErr, string(model.RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.MatchRun, error) {
	var r model.MatchRun
	var resultJSON []byte
	var errMsg *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, company_url, status, result, error, created_at, updated_at FROM match_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.CompanyURL, &r.Status, &resultJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if len(resultJSON) > 0 {
		r.Result = &model.MatchResult{}
		if err := json.Unmarshal(resultJSON, r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.MatchRun, error) {
	query := `SELECT id, company_url, status, result, error, created_at, updated_at FROM match_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.CompanyURL != "" {
		query += fmt.Sprintf(` AND company_url = $%d`, argIdx)
		args = append(args, filter.CompanyURL)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.MatchRun
	for rows.Next() {
		var r model.MatchRun
		var resultJSON []byte
		var errMsg *string

		if err := rows.Scan(&r.ID, &r.CompanyURL, &r.Status, &resultJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if len(resultJSON) > 0 {
			r.Result = &model.MatchResult{}
			if err := json.Unmarshal(resultJSON, r.Result); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal result")
			}
		}
		if errMsg != nil {
			r.Error = *errMsg
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
