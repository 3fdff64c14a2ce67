package inventory

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/compliance"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/findings"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/ownership"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/repositories"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/teams"
)

var fetched = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func nullString(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func setupExplorer(t *testing.T) (Explorer, Stores) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	var stores Stores
	stores.Repositories, err = repositories.NewStore(db)
	require.NoError(t, err)
	stores.Teams, err = teams.NewStore(db)
	require.NoError(t, err)
	stores.Findings, err = findings.NewStore(db)
	require.NoError(t, err)
	stores.Ownership, err = ownership.NewStore(db)
	require.NoError(t, err)
	stores.Compliance, err = compliance.NewStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, stores.Repositories.BulkPut(ctx, []store.Repository{
		{
			ID: 1, Name: "billing", FullName: "acme/billing", HTMLURL: "https://github.com/acme/billing",
			Pod: nullString("payments"), EnvironmentType: nullString("Production"),
			CustomProperties: `{"environmentType":"Production","pod":"payments"}`, LastFetched: fetched,
		},
		{
			ID: 2, Name: "docs", FullName: "acme/docs", HTMLURL: "https://github.com/acme/docs",
			CustomProperties: `{}`, LastFetched: fetched,
		},
	}))
	require.NoError(t, stores.Teams.Put(ctx, store.Team{
		ID: 7, Name: "Payments", Slug: "payments", HTMLURL: "https://github.com/orgs/acme/teams/payments", LastFetched: fetched,
	}))
	require.NoError(t, stores.Findings.BulkPut(ctx, []store.SecurityFinding{
		{
			ID: "code_1_1", RepositoryID: 1, RepositoryName: "acme/billing", Tool: "code_scanning", Severity: "high",
			Title: "SQL injection", HTMLURL: "https://github.com/acme/billing/security/code-scanning/1",
			CreatedAt: fetched, DirectoryPath: "src/db.go", Owner: nullString("@acme/payments"), LastFetched: fetched,
		},
		{
			ID: "secret_1_2", RepositoryID: 1, RepositoryName: "acme/billing", Tool: "secret_scanning", Severity: "critical",
			Title: "Exposed github_token", HTMLURL: "https://github.com/acme/billing/security/secret-scanning/2",
			CreatedAt: fetched.Add(time.Hour), LastFetched: fetched,
		},
	}))
	require.NoError(t, stores.Ownership.ReplaceForRepository(ctx, 1, []store.OwnershipRule{
		{RepositoryID: 1, RepositoryName: "acme/billing", Pattern: "*", Owner: "@acme/payments", LastFetched: fetched},
		{RepositoryID: 1, RepositoryName: "acme/billing", Pattern: "/docs/", Owner: "@acme/writers", LastFetched: fetched},
	}))
	require.NoError(t, stores.Compliance.Put(ctx, store.ComplianceCheck{
		RepositoryID: 1, RepositoryName: "acme/billing", ValidCodeowners: true, LastChecked: fetched,
	}))

	return NewExplorer(nil, stores), stores
}

func TestExplorer_ListRepositories(t *testing.T) {
	explorer, _ := setupExplorer(t)
	ctx := context.Background()

	all, err := explorer.ListRepositories(ctx, domain.RepositoryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	prod, err := explorer.ListRepositories(ctx, domain.RepositoryFilter{EnvironmentType: "Production"})
	require.NoError(t, err)
	require.Len(t, prod, 1)
	assert.Equal(t, "acme/billing", prod[0].FullName)
	assert.True(t, prod[0].IsProduction())
	assert.Equal(t, "payments", prod[0].CustomProperties.Pod())

	pods, err := explorer.Pods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"payments"}, pods)
}

func TestExplorer_GetRepository(t *testing.T) {
	explorer, _ := setupExplorer(t)

	repo, err := explorer.GetRepository(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "acme/docs", repo.FullName)

	_, err = explorer.GetRepository(context.Background(), 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExplorer_ListFindings(t *testing.T) {
	explorer, _ := setupExplorer(t)
	ctx := context.Background()

	withOwner, err := explorer.ListFindings(ctx, domain.FindingFilter{OwnerStatus: domain.OwnerStatusWith})
	require.NoError(t, err)
	require.Len(t, withOwner, 1)
	assert.Equal(t, "code_1_1", withOwner[0].ID)
	assert.Equal(t, "@acme/payments", *withOwner[0].Owner)

	secrets, err := explorer.ListFindings(ctx, domain.FindingFilter{Tool: domain.ToolSecretScanning})
	require.NoError(t, err)
	require.Len(t, secrets, 1)
	assert.False(t, secrets[0].HasOwner())
}

func TestExplorer_OwnershipTeamsAndCompliance(t *testing.T) {
	explorer, _ := setupExplorer(t)
	ctx := context.Background()

	rules, err := explorer.ListOwnershipRules(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "*", rules[0].Pattern)

	empty, err := explorer.ListOwnershipRules(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)

	teamList, err := explorer.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teamList, 1)
	assert.Equal(t, "payments", teamList[0].Slug)

	checks, err := explorer.ListCompliance(ctx)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.True(t, checks[0].Compliant())

	profiles, err := explorer.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
