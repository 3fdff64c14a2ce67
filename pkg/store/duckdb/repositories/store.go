package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb"
)

type Store interface {
	Get(ctx context.Context, id int64) (*store.Repository, error)
	Put(ctx context.Context, repo store.Repository) error
	BulkPut(ctx context.Context, repos []store.Repository) error
	List(ctx context.Context, filter store.RepositoryFilter) ([]store.Repository, error)
	Count(ctx context.Context) (int, error)
	Pods(ctx context.Context) ([]string, error)
	EnvironmentTypes(ctx context.Context) ([]string, error)
}

const columns = `id, name, full_name, description, html_url, pod, environment_type, custom_properties, last_fetched`

const upsertQuery = `
	INSERT OR REPLACE INTO repositories (` + columns + `)
	VALUES (:id, :name, :full_name, :description, :html_url, :pod, :environment_type, :custom_properties, :last_fetched)`

type repositoryStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &repositoryStore{db: db}, nil
}

func (s *repositoryStore) Get(ctx context.Context, id int64) (*store.Repository, error) {
	var repo store.Repository
	err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &repo,
		`SELECT `+columns+` FROM repositories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("repository %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get repository %d: %w", id, err)
	}
	return &repo, nil
}

func (s *repositoryStore) Put(ctx context.Context, repo store.Repository) error {
	if _, err := sqlx.NamedExecContext(ctx, duckdb.Executor(ctx, s.db), upsertQuery, repo); err != nil {
		return fmt.Errorf("upsert repository %d: %w", repo.ID, err)
	}
	return nil
}

func (s *repositoryStore) BulkPut(ctx context.Context, repos []store.Repository) error {
	if len(repos) == 0 {
		return nil
	}
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		for _, repo := range repos {
			if err := s.Put(ctx, repo); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *repositoryStore) List(ctx context.Context, filter store.RepositoryFilter) ([]store.Repository, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Pod != "" {
		conditions = append(conditions, "pod = ?")
		args = append(args, filter.Pod)
	}
	if filter.EnvironmentType != "" {
		conditions = append(conditions, "environment_type = ?")
		args = append(args, filter.EnvironmentType)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		conditions = append(conditions,
			"(contains(lower(name), ?) OR contains(lower(full_name), ?) OR contains(lower(coalesce(description, '')), ?))")
		args = append(args, term, term, term)
	}

	query := `SELECT ` + columns + ` FROM repositories`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	repos := make([]store.Repository, 0)
	if err := sqlx.SelectContext(ctx, duckdb.Executor(ctx, s.db), &repos, query, args...); err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	return repos, nil
}

func (s *repositoryStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &count, `SELECT COUNT(*) FROM repositories`); err != nil {
		return 0, fmt.Errorf("count repositories: %w", err)
	}
	return count, nil
}

func (s *repositoryStore) Pods(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "pod")
}

func (s *repositoryStore) EnvironmentTypes(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "environment_type")
}

func (s *repositoryStore) distinct(ctx context.Context, column string) ([]string, error) {
	values := make([]string, 0)
	query := fmt.Sprintf(`SELECT DISTINCT %[1]s FROM repositories WHERE %[1]s IS NOT NULL ORDER BY %[1]s`, column)
	if err := sqlx.SelectContext(ctx, duckdb.Executor(ctx, s.db), &values, query); err != nil {
		return nil, fmt.Errorf("list distinct %s: %w", column, err)
	}
	return values, nil
}
