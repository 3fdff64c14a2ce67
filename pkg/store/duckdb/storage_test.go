package duckdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_CreatesSchema(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "duckdb-test-*")
	require.NoError(t, err)

	defer func() {
		err := os.RemoveAll(tmpDir)
		if err != nil {
			t.Errorf("failed to cleanup test directory: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	for _, table := range []string{
		"repositories", "teams", "security_findings",
		"ownership_rules", "compliance_checks", "metrics_summary",
	} {
		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		require.NoError(t, err, table)
		assert.Equal(t, 0, count, table)
	}
}

func TestInTransaction(t *testing.T) {
	db, err := NewDB(Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	insert := `INSERT INTO teams (id, name, slug, html_url, last_fetched) VALUES (?, ?, ?, ?, now())`

	t.Run("commit", func(t *testing.T) {
		err := InTransaction(ctx, db, func(ctx context.Context) error {
			require.NotNil(t, GetTransaction(ctx))
			_, err := Executor(ctx, db).ExecContext(ctx, insert, 1, "core", "core", "https://example.com/core")
			return err
		})
		require.NoError(t, err)

		var count int
		require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM teams"))
		assert.Equal(t, 1, count)
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := InTransaction(ctx, db, func(ctx context.Context) error {
			_, err := Executor(ctx, db).ExecContext(ctx, insert, 2, "infra", "infra", "https://example.com/infra")
			require.NoError(t, err)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var count int
		require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM teams WHERE id = 2"))
		assert.Equal(t, 0, count)
	})

	t.Run("nested reuses outer transaction", func(t *testing.T) {
		err := InTransaction(ctx, db, func(outer context.Context) error {
			return InTransaction(outer, db, func(inner context.Context) error {
				assert.Same(t, GetTransaction(outer), GetTransaction(inner))
				return nil
			})
		})
		require.NoError(t, err)
	})
}
