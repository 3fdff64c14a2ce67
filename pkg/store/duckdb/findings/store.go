package findings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb"
)

type Store interface {
	Get(ctx context.Context, id string) (*store.SecurityFinding, error)
	Put(ctx context.Context, finding store.SecurityFinding) error
	BulkPut(ctx context.Context, findings []store.SecurityFinding) error
	List(ctx context.Context, filter store.FindingFilter) ([]store.SecurityFinding, error)
	Count(ctx context.Context) (int, error)
	UpdateOwner(ctx context.Context, id string, owner string) error
	// CountOldHighCritical counts findings of a repository with severity high or critical
	// (any case) created strictly before the given time.
	CountOldHighCritical(ctx context.Context, repositoryID int64, before time.Time) (int, error)
}

const columns = `id, repository_id, repository_name, tool, severity, title, description, html_url,
	created_at, directory_path, owner, last_fetched`

const upsertQuery = `
	INSERT OR REPLACE INTO security_findings (` + columns + `)
	VALUES (:id, :repository_id, :repository_name, :tool, :severity, :title, :description, :html_url,
		:created_at, :directory_path, :owner, :last_fetched)`

type findingStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &findingStore{db: db}, nil
}

func (s *findingStore) Get(ctx context.Context, id string) (*store.SecurityFinding, error) {
	var finding store.SecurityFinding
	err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &finding,
		`SELECT `+columns+` FROM security_findings WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("finding %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get finding %s: %w", id, err)
	}
	return &finding, nil
}

func (s *findingStore) Put(ctx context.Context, finding store.SecurityFinding) error {
	if _, err := sqlx.NamedExecContext(ctx, duckdb.Executor(ctx, s.db), upsertQuery, finding); err != nil {
		return fmt.Errorf("upsert finding %s: %w", finding.ID, err)
	}
	return nil
}

func (s *findingStore) BulkPut(ctx context.Context, findings []store.SecurityFinding) error {
	if len(findings) == 0 {
		return nil
	}
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		for _, finding := range findings {
			if err := s.Put(ctx, finding); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *findingStore) List(ctx context.Context, filter store.FindingFilter) ([]store.SecurityFinding, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.RepositoryID != nil {
		conditions = append(conditions, "repository_id = ?")
		args = append(args, *filter.RepositoryID)
	}
	if filter.RepositoryName != "" {
		conditions = append(conditions, "repository_name = ?")
		args = append(args, filter.RepositoryName)
	}
	if filter.Tool != "" {
		conditions = append(conditions, "tool = ?")
		args = append(args, filter.Tool)
	}
	if filter.Severity != "" {
		conditions = append(conditions, "lower(severity) = ?")
		args = append(args, strings.ToLower(filter.Severity))
	}
	if filter.HasOwner != nil {
		if *filter.HasOwner {
			conditions = append(conditions, "owner IS NOT NULL")
		} else {
			conditions = append(conditions, "owner IS NULL")
		}
	}

	query := `SELECT ` + columns + ` FROM security_findings`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	findings := make([]store.SecurityFinding, 0)
	if err := sqlx.SelectContext(ctx, duckdb.Executor(ctx, s.db), &findings, query, args...); err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	return findings, nil
}

func (s *findingStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &count, `SELECT COUNT(*) FROM security_findings`); err != nil {
		return 0, fmt.Errorf("count findings: %w", err)
	}
	return count, nil
}

func (s *findingStore) UpdateOwner(ctx context.Context, id string, owner string) error {
	res, err := duckdb.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE security_findings SET owner = ? WHERE id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("update owner of finding %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finding %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *findingStore) CountOldHighCritical(ctx context.Context, repositoryID int64, before time.Time) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &count, `
		SELECT COUNT(*) FROM security_findings
		WHERE repository_id = ?
			AND lower(severity) IN ('high', 'critical')
			AND created_at < ?`,
		repositoryID, before)
	if err != nil {
		return 0, fmt.Errorf("count old high/critical findings of repository %d: %w", repositoryID, err)
	}
	return count, nil
}
