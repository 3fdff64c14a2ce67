package workflow

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

type Controller interface {
	// RunFullSync runs every stage and blocks until the sync finished or failed.
	RunFullSync(ctx context.Context) (*domain.SyncReport, error)
	// Start runs a full sync in the background.
	Start(ctx context.Context) error
	IsStale(ctx context.Context) (bool, error)
	InProgress() bool
	// LastReport returns the report of the most recent sync of this process, or nil.
	LastReport() *domain.SyncReport
}

type StalenessChecker interface {
	IsStale(ctx context.Context) (bool, error)
}

type DefaultController struct {
	runner    *Runner
	locker    Locker
	staleness StalenessChecker
	newID     func() string

	mu         sync.RWMutex
	last       *domain.SyncReport
	inProgress atomic.Bool
	wg         sync.WaitGroup
}

func NewController(runner *Runner, locker Locker, staleness StalenessChecker) *DefaultController {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &DefaultController{
		runner:    runner,
		locker:    locker,
		staleness: staleness,
		newID:     uuid.NewString,
	}
}

func (ctrl *DefaultController) RunFullSync(ctx context.Context) (*domain.SyncReport, error) {
	release, err := ctrl.locker.TryLock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return ctrl.run(ctx)
}

// Start takes the sync lock before returning, so a concurrent request fails
// with ErrSyncInProgress immediately. The sync outlives the caller's context.
func (ctrl *DefaultController) Start(ctx context.Context) error {
	release, err := ctrl.locker.TryLock(ctx)
	if err != nil {
		return err
	}

	ctrl.wg.Add(1)
	go func() {
		defer ctrl.wg.Done()
		defer release()

		if _, err := ctrl.run(context.WithoutCancel(ctx)); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("background sync failed")
		}
	}()
	return nil
}

func (ctrl *DefaultController) run(ctx context.Context) (*domain.SyncReport, error) {
	ctrl.inProgress.Store(true)
	defer ctrl.inProgress.Store(false)

	report, err := ctrl.runner.Run(ctx, ctrl.newID())

	ctrl.mu.Lock()
	ctrl.last = report
	ctrl.mu.Unlock()

	return report, err
}

func (ctrl *DefaultController) IsStale(ctx context.Context) (bool, error) {
	return ctrl.staleness.IsStale(ctx)
}

func (ctrl *DefaultController) InProgress() bool {
	return ctrl.inProgress.Load()
}

func (ctrl *DefaultController) LastReport() *domain.SyncReport {
	ctrl.mu.RLock()
	defer ctrl.mu.RUnlock()
	return ctrl.last
}

// Wait blocks until background syncs started with Start have returned.
func (ctrl *DefaultController) Wait() {
	ctrl.wg.Wait()
}
