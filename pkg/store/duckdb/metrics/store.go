package metrics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb"
)

// Store keeps the single metrics summary row.
type Store interface {
	Get(ctx context.Context) (*store.MetricsSummary, error)
	Put(ctx context.Context, summary store.MetricsSummary) error
}

type metricsStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &metricsStore{db: db}, nil
}

func (s *metricsStore) Get(ctx context.Context) (*store.MetricsSummary, error) {
	var summary store.MetricsSummary
	err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &summary, `
		SELECT id, repository_count, team_count, commit_count, last_fetched
		FROM metrics_summary
		ORDER BY id
		LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("metrics summary: %w", store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get metrics summary: %w", err)
	}
	return &summary, nil
}

func (s *metricsStore) Put(ctx context.Context, summary store.MetricsSummary) error {
	_, err := duckdb.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT OR REPLACE INTO metrics_summary (id, repository_count, team_count, commit_count, last_fetched)
		VALUES (?, ?, ?, ?, ?)`,
		summary.ID, summary.RepositoryCount, summary.TeamCount, summary.CommitCount, summary.LastFetched)
	if err != nil {
		return fmt.Errorf("upsert metrics summary: %w", err)
	}
	return nil
}
