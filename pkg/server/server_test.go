package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/repo-atlas/pkg/models/api"
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/services/compliance"
	"github.com/de-tools/repo-atlas/pkg/services/fetch"
	"github.com/de-tools/repo-atlas/pkg/services/inventory"
	"github.com/de-tools/repo-atlas/pkg/services/metrics"
	"github.com/de-tools/repo-atlas/pkg/services/ownership"
	"github.com/de-tools/repo-atlas/pkg/services/workflow"
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

func mockSource() *githubmock.Source {
	source := new(githubmock.Source)
	source.On("Organization").Return("acme")
	source.On("ListRepositories", mock.Anything).Return([]domain.RemoteRepository{
		{ID: 1, Owner: "acme", Name: "billing", FullName: "acme/billing", HTMLURL: "https://github.com/acme/billing"},
		{ID: 2, Owner: "acme", Name: "sandbox", FullName: "acme/sandbox", HTMLURL: "https://github.com/acme/sandbox"},
	}, nil)
	source.On("GetCustomProperties", mock.Anything, "acme", "billing").
		Return(domain.CustomProperties{"environmentType": "Production", "pod": "payments"}, nil)
	source.On("GetCustomProperties", mock.Anything, "acme", "sandbox").
		Return(domain.CustomProperties{}, nil)
	source.On("ListTeams", mock.Anything, "acme").Return([]domain.Team{{ID: 7, Name: "Core", Slug: "core"}}, nil)
	source.On("ListCodeScanningAlerts", mock.Anything, "acme", "billing").Return([]domain.CodeScanningAlert{
		{Number: 1, Severity: "high", Description: "SQL injection", CreatedAt: now.Add(-45 * 24 * time.Hour), Path: "src/api/db.go"},
	}, nil)
	source.On("ListCodeScanningAlerts", mock.Anything, "acme", "sandbox").Return([]domain.CodeScanningAlert{}, nil)
	source.On("ListSecretScanningAlerts", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.SecretScanningAlert{}, nil)
	source.On("ListDependabotAlerts", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.DependabotAlert{}, nil)
	source.On("GetFileContent", mock.Anything, "acme", "billing", "CODEOWNERS").
		Return("* @acme/core\nsrc/api/* @acme/api\n", nil)
	source.On("GetFileContent", mock.Anything, "acme", "sandbox", mock.Anything).
		Return("", github.ErrFileNotFound)
	source.On("ListCollaborators", mock.Anything, "acme", "billing").Return([]domain.Collaborator{}, nil)
	source.On("CountCommitsSince", mock.Anything, "acme", mock.Anything, mock.Anything).Return(3, nil)
	return source
}

func setupServer(t *testing.T) (*httptest.Server, *workflow.DefaultController) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	var stores metrics.Stores
	stores.Repositories, err = repositories.NewStore(db)
	require.NoError(t, err)
	stores.Teams, err = teams.NewStore(db)
	require.NoError(t, err)
	stores.Findings, err = findings.NewStore(db)
	require.NoError(t, err)
	stores.Compliance, err = compliancestore.NewStore(db)
	require.NoError(t, err)
	stores.Metrics, err = metricsstore.NewStore(db)
	require.NoError(t, err)
	rules, err := ownershipstore.NewStore(db)
	require.NoError(t, err)

	source := mockSource()
	fetchOpts := fetch.Options{Concurrency: 2, Now: clock}
	summarizer := metrics.NewSummarizer(source, stores, metrics.Options{Now: clock})
	services := workflow.Services{
		Repositories: fetch.NewRepositoryFetcher(source, stores.Repositories, fetchOpts),
		Teams:        fetch.NewTeamFetcher(source, stores.Teams, fetchOpts),
		Findings:     fetch.NewFindingFetcher(source, stores.Repositories, stores.Findings, fetchOpts),
		Ownership:    fetch.NewOwnershipFetcher(source, stores.Repositories, rules, fetchOpts),
		Resolver:     ownership.NewResolver(stores.Findings, rules),
		Compliance: compliance.NewEvaluator(source, stores.Repositories, stores.Findings,
			stores.Compliance, compliance.Options{Now: clock}),
		Metrics: summarizer,
	}
	runner := workflow.NewRunner(db, workflow.FullSyncStages(services), workflow.WithClock(clock))
	controller := workflow.NewController(runner, workflow.NewLocalLocker(), summarizer)

	explorer := inventory.NewExplorer(nil, inventory.Stores{
		Repositories: stores.Repositories,
		Teams:        stores.Teams,
		Findings:     stores.Findings,
		Ownership:    rules,
		Compliance:   stores.Compliance,
	})

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Explorer:   explorer,
			Controller: controller,
			Dashboard:  summarizer,
			Logger:     zerolog.New(zerolog.NewTestWriter(t)),
		},
	}
	testServer := httptest.NewServer(ConfigureRouter(config))
	t.Cleanup(testServer.Close)
	return testServer, controller
}

func TestWebAPI_BeforeFirstSync(t *testing.T) {
	testServer, _ := setupServer(t)

	resp, err := http.Get(testServer.URL + "/api/v1/status")
	require.NoError(t, err)
	status := readBody[api.Status](t, resp)
	assert.True(t, status.Stale)
	assert.False(t, status.InProgress)
	assert.Nil(t, status.Summary)

	resp, err = http.Get(testServer.URL + "/api/v1/sync/report")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(testServer.URL + "/api/v1/repositories")
	require.NoError(t, err)
	assert.Empty(t, readBody[[]api.Repository](t, resp))
}

func TestWebAPI_Endpoints(t *testing.T) {
	testServer, controller := setupServer(t)

	resp, err := http.Post(testServer.URL+"/api/v1/sync", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	controller.Wait()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "Health",
			path:           "/health",
			expectedStatus: http.StatusOK,
			expected:       map[string]string{"status": "ok"},
			parseResponse:  unmarshalResponse[map[string]string](),
		},
		{
			name:           "Status",
			path:           "/api/v1/status",
			expectedStatus: http.StatusOK,
			expected: api.Status{
				Summary: &api.MetricsSummary{RepositoryCount: 2, TeamCount: 1, CommitCount: 6, LastFetched: now},
			},
			parseResponse: unmarshalResponse[api.Status](),
		},
		{
			name:           "Filters",
			path:           "/api/v1/repositories/filters",
			expectedStatus: http.StatusOK,
			expected:       api.Filters{Pods: []string{"payments"}, EnvironmentTypes: []string{"Production"}},
			parseResponse:  unmarshalResponse[api.Filters](),
		},
		{
			name:           "RepositoryOwnership",
			path:           "/api/v1/repositories/1/ownership",
			expectedStatus: http.StatusOK,
			expected: []api.OwnershipRule{
				{Pattern: "*", Owner: "@acme/core"},
				{Pattern: "src/api/*", Owner: "@acme/api"},
			},
			parseResponse: func(data []byte) (interface{}, error) {
				var res api.RepositoryOwnership
				err := json.Unmarshal(data, &res)
				return res.Rules, err
			},
		},
		{
			name:           "RepositoryOwnership_Unknown",
			path:           "/api/v1/repositories/99/ownership",
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: "repository 99 not found"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:           "FindingsWithoutOwner",
			path:           "/api/v1/findings?owner=without-owner",
			expectedStatus: http.StatusOK,
			expected:       []api.Finding{},
			parseResponse:  unmarshalResponse[[]api.Finding](),
		},
		{
			name:           "FindingStats",
			path:           "/api/v1/findings/stats",
			expectedStatus: http.StatusOK,
			expected: api.Dashboard{
				Summary:    &api.MetricsSummary{RepositoryCount: 2, TeamCount: 1, CommitCount: 6, LastFetched: now},
				Severity:   api.SeverityStats{High: 1},
				Compliance: api.ComplianceStats{NonCompliant: 1},
			},
			parseResponse: unmarshalResponse[api.Dashboard](),
		},
		{
			name:           "Compliance",
			path:           "/api/v1/compliance",
			expectedStatus: http.StatusOK,
			expected: []api.ComplianceCheck{{
				RepositoryID:            1,
				RepositoryName:          "acme/billing",
				ValidCodeowners:         true,
				OldHighCriticalFindings: true,
				LastChecked:             now,
			}},
			parseResponse: unmarshalResponse[[]api.ComplianceCheck](),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}

	t.Run("OwnedFinding", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/v1/findings?tool=code_scanning")
		require.NoError(t, err)
		list := readBody[[]api.Finding](t, resp)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].Owner)
		assert.Equal(t, "@acme/api", *list[0].Owner)
	})

	t.Run("SyncReport", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/v1/sync/report")
		require.NoError(t, err)
		report := readBody[api.SyncReport](t, resp)
		assert.Equal(t, "finished", report.Status)
		assert.Len(t, report.Stages, 7)
	})
}

func readBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var res T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
