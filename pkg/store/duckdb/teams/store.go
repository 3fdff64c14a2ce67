package teams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb"
)

type Store interface {
	Get(ctx context.Context, id int64) (*store.Team, error)
	Put(ctx context.Context, team store.Team) error
	BulkPut(ctx context.Context, teams []store.Team) error
	List(ctx context.Context) ([]store.Team, error)
	Count(ctx context.Context) (int, error)
}

const columns = `id, name, slug, description, html_url, last_fetched`

const upsertQuery = `
	INSERT OR REPLACE INTO teams (` + columns + `)
	VALUES (:id, :name, :slug, :description, :html_url, :last_fetched)`

type teamStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &teamStore{db: db}, nil
}

func (s *teamStore) Get(ctx context.Context, id int64) (*store.Team, error) {
	var team store.Team
	err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &team, `SELECT `+columns+` FROM teams WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get team %d: %w", id, err)
	}
	return &team, nil
}

func (s *teamStore) Put(ctx context.Context, team store.Team) error {
	if _, err := sqlx.NamedExecContext(ctx, duckdb.Executor(ctx, s.db), upsertQuery, team); err != nil {
		return fmt.Errorf("upsert team %d: %w", team.ID, err)
	}
	return nil
}

func (s *teamStore) BulkPut(ctx context.Context, teams []store.Team) error {
	if len(teams) == 0 {
		return nil
	}
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		for _, team := range teams {
			if err := s.Put(ctx, team); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *teamStore) List(ctx context.Context) ([]store.Team, error) {
	teams := make([]store.Team, 0)
	if err := sqlx.SelectContext(ctx, duckdb.Executor(ctx, s.db), &teams, `SELECT `+columns+` FROM teams ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (s *teamStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &count, `SELECT COUNT(*) FROM teams`); err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return count, nil
}
