// Package app wires the cache, the remote source and the sync services from
// runtime settings. Both the CLI and the web server start from here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/services/compliance"
	"github.com/de-tools/repo-atlas/pkg/services/config"
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
)

type App struct {
	DB         *sqlx.DB
	Registry   config.Registry
	Source     github.Source
	Explorer   inventory.Explorer
	Summarizer *metrics.Summarizer
	Controller *workflow.DefaultController

	closers []func() error
}

type Options struct {
	// Source replaces the GitHub client built from the selected profile.
	Source github.Source
}

func New(ctx context.Context, settings *config.Settings, opts Options) (*App, error) {
	logger := zerolog.Ctx(ctx)
	a := &App{}

	registry, err := config.NewRegistry(settings.ProfilesPath)
	if err != nil && opts.Source == nil {
		return nil, err
	}
	a.Registry = registry

	a.Source = opts.Source
	if a.Source == nil {
		cfg, err := registry.GetConfig(ctx, settings.Profile)
		if err != nil {
			return nil, err
		}
		client, err := github.NewClient(ctx, *cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client: %w", err)
		}
		a.Source = client
		logger.Info().
			Str("profile", settings.Profile).
			Str("org", cfg.Organization).
			Str("auth", string(cfg.Type())).
			Msg("GitHub source configured")
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: settings.DbPath})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)

	var stores metrics.Stores
	var rules ownershipstore.Store
	if err := a.initStores(db, &stores, &rules); err != nil {
		a.Close()
		return nil, err
	}

	locker, err := newLocker(settings.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closer, ok := locker.(interface{ Close() error }); ok {
		a.closers = append(a.closers, closer.Close)
	}

	fetchOpts := fetch.Options{Concurrency: settings.Concurrency}
	a.Summarizer = metrics.NewSummarizer(a.Source, stores, metrics.Options{
		CommitWindow:    settings.CommitWindow,
		CommitRepoLimit: settings.CommitRepoLimit,
		StalenessWindow: settings.StalenessWindow,
	})
	services := workflow.Services{
		Repositories: fetch.NewRepositoryFetcher(a.Source, stores.Repositories, fetchOpts),
		Teams:        fetch.NewTeamFetcher(a.Source, stores.Teams, fetchOpts),
		Findings:     fetch.NewFindingFetcher(a.Source, stores.Repositories, stores.Findings, fetchOpts),
		Ownership:    fetch.NewOwnershipFetcher(a.Source, stores.Repositories, rules, fetchOpts),
		Resolver:     ownership.NewResolver(stores.Findings, rules),
		Compliance: compliance.NewEvaluator(a.Source, stores.Repositories, stores.Findings, stores.Compliance,
			compliance.Options{FindingAge: settings.FindingAge, Concurrency: settings.Concurrency}),
		Metrics: a.Summarizer,
	}

	runner := workflow.NewRunner(db, workflow.FullSyncStages(services))
	a.Controller = workflow.NewController(runner, locker, a.Summarizer)

	a.Explorer = inventory.NewExplorer(registry, inventory.Stores{
		Repositories: stores.Repositories,
		Teams:        stores.Teams,
		Findings:     stores.Findings,
		Ownership:    rules,
		Compliance:   stores.Compliance,
	})
	return a, nil
}

func (a *App) initStores(db *sqlx.DB, stores *metrics.Stores, rules *ownershipstore.Store) error {
	var err error
	if stores.Repositories, err = repositories.NewStore(db); err != nil {
		return fmt.Errorf("failed to create repository store: %w", err)
	}
	if stores.Teams, err = teams.NewStore(db); err != nil {
		return fmt.Errorf("failed to create team store: %w", err)
	}
	if stores.Findings, err = findings.NewStore(db); err != nil {
		return fmt.Errorf("failed to create finding store: %w", err)
	}
	if stores.Compliance, err = compliancestore.NewStore(db); err != nil {
		return fmt.Errorf("failed to create compliance store: %w", err)
	}
	if stores.Metrics, err = metricsstore.NewStore(db); err != nil {
		return fmt.Errorf("failed to create metrics store: %w", err)
	}
	if *rules, err = ownershipstore.NewStore(db); err != nil {
		return fmt.Errorf("failed to create ownership store: %w", err)
	}
	return nil
}

// newLocker returns a Redis-backed lock when an address is configured, so several
// processes sharing one cache file never sync at once.
func newLocker(cfg config.RedisSettings) (workflow.Locker, error) {
	if cfg.Addr == "" {
		return workflow.NewLocalLocker(), nil
	}
	locker, err := workflow.NewRedisLocker(workflow.RedisConfig{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, err
	}
	return locker, nil
}

func (a *App) RateUsage() *domain.RateUsage {
	return a.Source.RateUsage()
}

// Close waits for background syncs, then releases the lock client and the cache.
func (a *App) Close() error {
	if a.Controller != nil {
		a.Controller.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
