package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/services/metrics"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb"
	metricsstore "github.com/de-tools/repo-atlas/pkg/store/duckdb/metrics"
)

type mockStaleness struct {
	mock.Mock
}

func (m *mockStaleness) IsStale(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func TestController_StartRejectsConcurrentSync(t *testing.T) {
	fx := setupFixture(t)
	entered := make(chan struct{})
	unblock := make(chan struct{})
	var enterOnce sync.Once
	var runs atomic.Int32

	runner := NewRunner(fx.db, []Stage{{Name: "slow", Run: func(ctx context.Context) (*domain.BatchReport, error) {
		runs.Add(1)
		enterOnce.Do(func() { close(entered) })
		<-unblock
		return domain.NewBatchReport("slow"), nil
	}}}, WithClock(clock))
	ctrl := NewController(runner, nil, new(mockStaleness))
	ctrl.newID = func() string { return "run-42" }
	ctx := context.Background()

	require.NoError(t, ctrl.Start(ctx))
	<-entered
	assert.True(t, ctrl.InProgress())

	assert.ErrorIs(t, ctrl.Start(ctx), ErrSyncInProgress)
	_, err := ctrl.RunFullSync(ctx)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(unblock)
	ctrl.Wait()

	assert.False(t, ctrl.InProgress())
	report := ctrl.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, "run-42", report.ID)
	assert.Equal(t, domain.SyncStatusFinished, report.Status)

	report, err = ctrl.RunFullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusFinished, report.Status)
	assert.Equal(t, int32(2), runs.Load())
}

func TestController_RunFullSyncRecordsFailure(t *testing.T) {
	fx := setupFixture(t)
	runner := NewRunner(fx.db, []Stage{{Name: "repositories", Run: func(ctx context.Context) (*domain.BatchReport, error) {
		return nil, errors.New("401 bad credentials")
	}}}, WithClock(clock))
	ctrl := NewController(runner, NewLocalLocker(), new(mockStaleness))

	report, err := ctrl.RunFullSync(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.SyncStatusFailed, report.Status)
	assert.Same(t, report, ctrl.LastReport())
	assert.False(t, ctrl.InProgress())
}

func TestController_IsStale(t *testing.T) {
	tests := []struct {
		name        string
		lastFetched *time.Time
		expected    bool
	}{
		{name: "no summary", expected: true},
		{name: "25 hours old", lastFetched: timePtr(now.Add(-25 * time.Hour)), expected: true},
		{name: "1 hour old", lastFetched: timePtr(now.Add(-time.Hour)), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
			require.NoError(t, err)
			defer db.Close()

			metricStore, err := metricsstore.NewStore(db)
			require.NoError(t, err)
			if tt.lastFetched != nil {
				require.NoError(t, metricStore.Put(context.Background(), store.MetricsSummary{
					ID: domain.MetricsSummaryID, LastFetched: *tt.lastFetched,
				}))
			}

			summarizer := metrics.NewSummarizer(nil, metrics.Stores{Metrics: metricStore}, metrics.Options{Now: clock})
			ctrl := NewController(NewRunner(db, nil), nil, summarizer)

			stale, err := ctrl.IsStale(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stale)
			assert.Nil(t, ctrl.LastReport(), "checking staleness never syncs")
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.TryLock(ctx)
	require.NoError(t, err)

	_, err = l.TryLock(ctx)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	release()
	release()

	release, err = l.TryLock(ctx)
	require.NoError(t, err)
	release()
}
