package ownership

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
	Get(ctx context.Context, repositoryID int64, pattern string) (*store.OwnershipRule, error)
	// ReplaceForRepository swaps the whole rule set of a repository. An empty slice
	// clears the rules left by a previous run.
	ReplaceForRepository(ctx context.Context, repositoryID int64, rules []store.OwnershipRule) error
	Put(ctx context.Context, rule store.OwnershipRule) error
	List(ctx context.Context) ([]store.OwnershipRule, error)
	ListByRepository(ctx context.Context, repositoryID int64) ([]store.OwnershipRule, error)
	Count(ctx context.Context) (int, error)
}

const columns = `repository_id, repository_name, pattern, owner, last_fetched`

type ownershipStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &ownershipStore{db: db}, nil
}

func (s *ownershipStore) Get(ctx context.Context, repositoryID int64, pattern string) (*store.OwnershipRule, error) {
	var rule store.OwnershipRule
	err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &rule,
		`SELECT `+columns+` FROM ownership_rules WHERE repository_id = ? AND pattern = ?`,
		repositoryID, pattern)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule %q of repository %d: %w", pattern, repositoryID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get rule %q of repository %d: %w", pattern, repositoryID, err)
	}
	return &rule, nil
}

func (s *ownershipStore) ReplaceForRepository(ctx context.Context, repositoryID int64, rules []store.OwnershipRule) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		exec := duckdb.Executor(ctx, s.db)
		if _, err := exec.ExecContext(ctx, `DELETE FROM ownership_rules WHERE repository_id = ?`, repositoryID); err != nil {
			return fmt.Errorf("clear rules of repository %d: %w", repositoryID, err)
		}
		for _, rule := range rules {
			rule.RepositoryID = repositoryID
			if err := s.insert(ctx, rule); err != nil {
				return err
			}
		}
		return nil
	})
}

// Put upserts a single rule on its (repository_id, pattern) key.
func (s *ownershipStore) Put(ctx context.Context, rule store.OwnershipRule) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		_, err := duckdb.Executor(ctx, s.db).ExecContext(ctx,
			`DELETE FROM ownership_rules WHERE repository_id = ? AND pattern = ?`,
			rule.RepositoryID, rule.Pattern)
		if err != nil {
			return fmt.Errorf("replace rule %q of repository %d: %w", rule.Pattern, rule.RepositoryID, err)
		}
		return s.insert(ctx, rule)
	})
}

func (s *ownershipStore) insert(ctx context.Context, rule store.OwnershipRule) error {
	_, err := sqlx.NamedExecContext(ctx, duckdb.Executor(ctx, s.db), `
		INSERT INTO ownership_rules (`+columns+`)
		VALUES (:repository_id, :repository_name, :pattern, :owner, :last_fetched)`, rule)
	if err != nil {
		return fmt.Errorf("insert rule %q of repository %d: %w", rule.Pattern, rule.RepositoryID, err)
	}
	return nil
}

func (s *ownershipStore) List(ctx context.Context) ([]store.OwnershipRule, error) {
	rules := make([]store.OwnershipRule, 0)
	err := sqlx.SelectContext(ctx, duckdb.Executor(ctx, s.db), &rules,
		`SELECT `+columns+` FROM ownership_rules ORDER BY repository_id, pattern`)
	if err != nil {
		return nil, fmt.Errorf("list ownership rules: %w", err)
	}
	return rules, nil
}

func (s *ownershipStore) ListByRepository(ctx context.Context, repositoryID int64) ([]store.OwnershipRule, error) {
	rules := make([]store.OwnershipRule, 0)
	err := sqlx.SelectContext(ctx, duckdb.Executor(ctx, s.db), &rules,
		`SELECT `+columns+` FROM ownership_rules WHERE repository_id = ? ORDER BY pattern`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list rules of repository %d: %w", repositoryID, err)
	}
	return rules, nil
}

func (s *ownershipStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &count, `SELECT COUNT(*) FROM ownership_rules`); err != nil {
		return 0, fmt.Errorf("count ownership rules: %w", err)
	}
	return count, nil
}
