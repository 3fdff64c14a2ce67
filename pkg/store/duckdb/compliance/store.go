package compliance

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
	Get(ctx context.Context, repositoryID int64) (*store.ComplianceCheck, error)
	Put(ctx context.Context, check store.ComplianceCheck) error
	BulkPut(ctx context.Context, checks []store.ComplianceCheck) error
	// List returns non-compliant repositories first, then orders by repository name.
	List(ctx context.Context) ([]store.ComplianceCheck, error)
	Count(ctx context.Context) (int, error)
}

const columns = `repository_id, repository_name, valid_codeowners, old_high_critical_findings,
	direct_user_access, admin_owner_access, last_checked`

const compliantExpr = `(valid_codeowners AND NOT old_high_critical_findings
	AND NOT direct_user_access AND NOT admin_owner_access)`

type complianceStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &complianceStore{db: db}, nil
}

func (s *complianceStore) Get(ctx context.Context, repositoryID int64) (*store.ComplianceCheck, error) {
	var check store.ComplianceCheck
	err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &check,
		`SELECT `+columns+` FROM compliance_checks WHERE repository_id = ?`, repositoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("compliance of repository %d: %w", repositoryID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get compliance of repository %d: %w", repositoryID, err)
	}
	return &check, nil
}

func (s *complianceStore) Put(ctx context.Context, check store.ComplianceCheck) error {
	_, err := sqlx.NamedExecContext(ctx, duckdb.Executor(ctx, s.db), `
		INSERT OR REPLACE INTO compliance_checks (`+columns+`)
		VALUES (:repository_id, :repository_name, :valid_codeowners, :old_high_critical_findings,
			:direct_user_access, :admin_owner_access, :last_checked)`, check)
	if err != nil {
		return fmt.Errorf("upsert compliance of repository %d: %w", check.RepositoryID, err)
	}
	return nil
}

func (s *complianceStore) BulkPut(ctx context.Context, checks []store.ComplianceCheck) error {
	if len(checks) == 0 {
		return nil
	}
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		for _, check := range checks {
			if err := s.Put(ctx, check); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *complianceStore) List(ctx context.Context) ([]store.ComplianceCheck, error) {
	checks := make([]store.ComplianceCheck, 0)
	err := sqlx.SelectContext(ctx, duckdb.Executor(ctx, s.db), &checks,
		`SELECT `+columns+` FROM compliance_checks ORDER BY `+compliantExpr+`, repository_name`)
	if err != nil {
		return nil, fmt.Errorf("list compliance checks: %w", err)
	}
	return checks, nil
}

func (s *complianceStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, duckdb.Executor(ctx, s.db), &count, `SELECT COUNT(*) FROM compliance_checks`); err != nil {
		return 0, fmt.Errorf("count compliance checks: %w", err)
	}
	return count, nil
}
