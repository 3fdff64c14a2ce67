package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/services/compliance"
	"github.com/de-tools/repo-atlas/pkg/services/fetch"
	"github.com/de-tools/repo-atlas/pkg/services/metrics"
	"github.com/de-tools/repo-atlas/pkg/services/ownership"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb"
	compliancestore "github.com/de-tools/repo-atlas/pkg/store/duckdb/compliance"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/findings"
	metricsstore "github.com/de-tools/repo-atlas/pkg/store/duckdb/metrics"
	ownershipstore "github.com/de-tools/repo-atlas/pkg/store/duckdb/ownership"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/repositories"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/teams"
	"github.com/de-tools/repo-atlas/pkg/store/github"
	"github.com/de-tools/repo-atlas/pkg/store/github/githubmock"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type fixture struct {
	db     *sqlx.DB
	source *githubmock.Source
	stores metrics.Stores
	rules  ownershipstore.Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	fx := &fixture{db: db, source: new(githubmock.Source)}
	fx.stores.Repositories, err = repositories.NewStore(db)
	require.NoError(t, err)
	fx.stores.Teams, err = teams.NewStore(db)
	require.NoError(t, err)
	fx.stores.Findings, err = findings.NewStore(db)
	require.NoError(t, err)
	fx.stores.Compliance, err = compliancestore.NewStore(db)
	require.NoError(t, err)
	fx.stores.Metrics, err = metricsstore.NewStore(db)
	require.NoError(t, err)
	fx.rules, err = ownershipstore.NewStore(db)
	require.NoError(t, err)
	return fx
}

func (fx *fixture) services() Services {
	fetchOpts := fetch.Options{Concurrency: 2, Now: clock}
	return Services{
		Repositories: fetch.NewRepositoryFetcher(fx.source, fx.stores.Repositories, fetchOpts),
		Teams:        fetch.NewTeamFetcher(fx.source, fx.stores.Teams, fetchOpts),
		Findings:     fetch.NewFindingFetcher(fx.source, fx.stores.Repositories, fx.stores.Findings, fetchOpts),
		Ownership:    fetch.NewOwnershipFetcher(fx.source, fx.stores.Repositories, fx.rules, fetchOpts),
		Resolver:     ownership.NewResolver(fx.stores.Findings, fx.rules),
		Compliance: compliance.NewEvaluator(fx.source, fx.stores.Repositories, fx.stores.Findings,
			fx.stores.Compliance, compliance.Options{Now: clock}),
		Metrics: metrics.NewSummarizer(fx.source, fx.stores, metrics.Options{Now: clock}),
	}
}

func (fx *fixture) mockOrganization() {
	fx.source.On("Organization").Return("acme")
	fx.source.On("ListRepositories", mock.Anything).Return([]domain.RemoteRepository{
		{ID: 1, Owner: "acme", Name: "billing", FullName: "acme/billing", HTMLURL: "https://github.com/acme/billing"},
		{ID: 2, Owner: "acme", Name: "sandbox", FullName: "acme/sandbox", HTMLURL: "https://github.com/acme/sandbox"},
	}, nil)
	fx.source.On("GetCustomProperties", mock.Anything, "acme", "billing").
		Return(domain.CustomProperties{"environmentType": "Production", "pod": "payments"}, nil)
	fx.source.On("GetCustomProperties", mock.Anything, "acme", "sandbox").
		Return(domain.CustomProperties{}, nil)
	fx.source.On("ListTeams", mock.Anything, "acme").Return([]domain.Team{{ID: 7, Name: "Core", Slug: "core"}}, nil)
}

func (fx *fixture) mockSecurityData() {
	fx.source.On("ListCodeScanningAlerts", mock.Anything, "acme", "billing").Return([]domain.CodeScanningAlert{
		{Number: 1, Severity: "high", Description: "SQL injection", CreatedAt: now.Add(-45 * 24 * time.Hour), Path: "src/api/db.go"},
	}, nil)
	fx.source.On("ListCodeScanningAlerts", mock.Anything, "acme", "sandbox").Return([]domain.CodeScanningAlert{}, nil)
	fx.source.On("ListSecretScanningAlerts", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.SecretScanningAlert{}, nil)
	fx.source.On("ListDependabotAlerts", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.DependabotAlert{}, nil)
	fx.source.On("GetFileContent", mock.Anything, "acme", "billing", "CODEOWNERS").
		Return("* @acme/core\nsrc/api/* @acme/api\n", nil)
	fx.source.On("GetFileContent", mock.Anything, "acme", "sandbox", mock.Anything).
		Return("", github.ErrFileNotFound)
	fx.source.On("ListCollaborators", mock.Anything, "acme", "billing").Return([]domain.Collaborator{}, nil)
	fx.source.On("CountCommitsSince", mock.Anything, "acme", mock.Anything, mock.Anything).Return(4, nil)
}

func TestRunner_FullSync(t *testing.T) {
	fx := setupFixture(t)
	fx.mockOrganization()
	fx.mockSecurityData()
	ctx := context.Background()

	var progress []string
	runner := NewRunner(fx.db, FullSyncStages(fx.services()), WithClock(clock), WithProgress(func(s domain.StageReport) {
		progress = append(progress, s.Name)
	}))

	report, err := runner.Run(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusFinished, report.Status)
	assert.Equal(t, []string{
		"repositories", "teams", "findings", "ownership_rules",
		"ownership_resolution", "compliance", "metrics",
	}, progress)
	assert.Equal(t, 1, report.Stage(StageOwnershipResolution).Batch.Processed)

	finding, err := fx.stores.Findings.Get(ctx, "code_1_1")
	require.NoError(t, err)
	assert.True(t, finding.Owner.Valid)
	assert.Equal(t, "@acme/api", finding.Owner.String)

	check, err := fx.stores.Compliance.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, check.ValidCodeowners)
	assert.True(t, check.OldHighCriticalFindings)

	_, err = fx.stores.Compliance.Get(ctx, 2)
	assert.ErrorIs(t, err, store.ErrNotFound)

	summary, err := fx.stores.Metrics.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RepositoryCount)
	assert.Equal(t, 1, summary.TeamCount)
	assert.Equal(t, 8, summary.CommitCount)
	assert.True(t, summary.LastFetched.Equal(now))
}

func TestRunner_TeamStageFailureSkipsMetrics(t *testing.T) {
	fx := setupFixture(t)
	fx.source.On("Organization").Return("acme")
	fx.source.On("ListRepositories", mock.Anything).Return([]domain.RemoteRepository{}, nil)
	fx.source.On("ListTeams", mock.Anything, "acme").Return(nil, errors.New("403 forbidden"))

	report, err := NewRunner(fx.db, FullSyncStages(fx.services()), WithClock(clock)).Run(context.Background(), "run-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teams stage")
	assert.Equal(t, domain.SyncStatusFailed, report.Status)
	require.Len(t, report.Stages, 2)
	require.NotNil(t, report.Stages[1].Error)

	_, err = fx.stores.Metrics.Get(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
	fx.source.AssertNotCalled(t, "ListCodeScanningAlerts", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunner_FindingStageFailureLeavesCacheUntouched(t *testing.T) {
	fx := setupFixture(t)
	ctx := context.Background()

	previous := store.MetricsSummary{ID: 1, RepositoryCount: 1, LastFetched: now.Add(-48 * time.Hour)}
	require.NoError(t, fx.stores.Metrics.Put(ctx, previous))

	stages := []Stage{
		{Name: "repositories", Run: func(ctx context.Context) (*domain.BatchReport, error) {
			return nil, fx.stores.Repositories.Put(ctx, store.Repository{
				ID: 1, Name: "billing", FullName: "acme/billing", HTMLURL: "u", CustomProperties: "{}", LastFetched: now,
			})
		}},
		{Name: "teams", Run: func(ctx context.Context) (*domain.BatchReport, error) {
			return nil, fx.stores.Teams.Put(ctx, store.Team{ID: 1, Name: "Core", Slug: "core", HTMLURL: "u", LastFetched: now})
		}},
		{Name: "findings", Run: func(ctx context.Context) (*domain.BatchReport, error) {
			err := fx.stores.Findings.Put(ctx, store.SecurityFinding{
				ID: "code_1_1", RepositoryID: 1, RepositoryName: "acme/billing", Tool: "code_scanning",
				Severity: "high", CreatedAt: now, LastFetched: now,
			})
			require.NoError(t, err)
			return nil, errors.New("disk quota exceeded")
		}},
		{Name: "metrics", Run: func(ctx context.Context) (*domain.BatchReport, error) {
			t.Fatal("metrics stage must not run")
			return nil, nil
		}},
	}

	report, err := NewRunner(fx.db, stages, WithClock(clock)).Run(ctx, "run-3")
	require.Error(t, err)
	assert.EqualError(t, err, "findings stage: disk quota exceeded")
	assert.Equal(t, domain.SyncStatusFailed, report.Status)

	repoCount, err := fx.stores.Repositories.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repoCount)
	teamCount, err := fx.stores.Teams.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, teamCount)

	findingCount, err := fx.stores.Findings.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, findingCount, "partial writes of the failed stage are rolled back")

	summary, err := fx.stores.Metrics.Get(ctx)
	require.NoError(t, err)
	assert.True(t, summary.LastFetched.Equal(previous.LastFetched))
}
