package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/services/workflow"
)

// SyncTrigger is the part of the sync controller the scheduler drives.
type SyncTrigger interface {
	IsStale(ctx context.Context) (bool, error)
	Start(ctx context.Context) error
}

// Scheduler periodically checks the cache and starts a background sync when the
// data is stale.
type Scheduler struct {
	cron    *cron.Cron
	trigger SyncTrigger
	entry   cron.EntryID
}

func New(trigger SyncTrigger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		))),
		trigger: trigger,
	}
}

// Start registers the staleness check on schedule and starts the cron loop. The
// check also runs once immediately. ctx supplies the logger and must outlive the
// scheduler.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	entry, err := s.cron.AddFunc(schedule, func() {
		s.Check(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	s.entry = entry

	s.cron.Start()
	zerolog.Ctx(ctx).Info().Str("schedule", schedule).Msg("scheduler started")

	go s.Check(ctx)
	return nil
}

// Stop stops the cron loop; the returned context is done once running checks return.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Check starts a sync when the cache is stale. It reports whether a sync was started.
func (s *Scheduler) Check(ctx context.Context) bool {
	logger := zerolog.Ctx(ctx)

	stale, err := s.trigger.IsStale(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("staleness check failed")
		return false
	}
	if !stale {
		logger.Debug().Msg("cache is fresh")
		return false
	}

	if err := s.trigger.Start(ctx); err != nil {
		if errors.Is(err, workflow.ErrSyncInProgress) {
			logger.Debug().Msg("sync already running")
		} else {
			logger.Error().Err(err).Msg("failed to start sync")
		}
		return false
	}
	logger.Info().Msg("cache is stale, sync started")
	return true
}
