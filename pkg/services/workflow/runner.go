package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb"
)

// Stage is one step of a sync. Run reports per-item outcomes in the batch report
// and returns an error only when the whole step failed.
type Stage struct {
	Name string
	Run  func(ctx context.Context) (*domain.BatchReport, error)
}

type Runner struct {
	db       *sqlx.DB
	stages   []Stage
	now      func() time.Time
	progress func(domain.StageReport)
}

type RunnerOption func(*Runner)

func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// WithProgress registers a callback invoked after every finished stage.
func WithProgress(fn func(domain.StageReport)) RunnerOption {
	return func(r *Runner) {
		r.progress = fn
	}
}

func NewRunner(db *sqlx.DB, stages []Stage, opts ...RunnerOption) *Runner {
	r := &Runner{db: db, stages: stages, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the stages in order. Each stage runs in its own transaction, so a
// failing stage leaves the cache as the previous stage left it. The first failure
// stops the run and is returned wrapped with the stage name.
func (r *Runner) Run(ctx context.Context, runID string) (*domain.SyncReport, error) {
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	report := &domain.SyncReport{
		ID:        runID,
		Status:    domain.SyncStatusRunning,
		StartedAt: r.now(),
		Stages:    make([]domain.StageReport, 0, len(r.stages)),
	}

	for _, stage := range r.stages {
		stageLogger := logger.With().Str("stage", stage.Name).Logger()
		stageLogger.Info().Msg("stage started")

		stageReport := domain.StageReport{Name: stage.Name, StartedAt: r.now()}
		err := duckdb.InTransaction(stageLogger.WithContext(ctx), r.db, func(ctx context.Context) error {
			batch, err := stage.Run(ctx)
			stageReport.Batch = batch
			return err
		})
		stageReport.FinishedAt = r.now()

		if err != nil {
			err = fmt.Errorf("%s stage: %w", stage.Name, err)
			msg := err.Error()
			stageReport.Error = &msg
			report.Stages = append(report.Stages, stageReport)
			r.notify(stageReport)

			report.Status = domain.SyncStatusFailed
			report.Error = &msg
			report.FinishedAt = r.now()
			stageLogger.Error().Err(err).Msg("stage failed, sync aborted")
			return report, err
		}

		report.Stages = append(report.Stages, stageReport)
		r.notify(stageReport)

		skipped := 0
		if stageReport.Batch != nil {
			skipped = len(stageReport.Batch.Skipped())
		}
		stageLogger.Info().
			Dur("elapsed", stageReport.FinishedAt.Sub(stageReport.StartedAt)).
			Int("skipped", skipped).
			Msg("stage finished")
	}

	report.Status = domain.SyncStatusFinished
	report.FinishedAt = r.now()
	logger.Info().Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).Msg("sync finished")
	return report, nil
}

func (r *Runner) notify(stage domain.StageReport) {
	if r.progress != nil {
		r.progress(stage)
	}
}
