package fetch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/adapters"
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/repositories"
	"github.com/de-tools/repo-atlas/pkg/store/github"
)

const StageRepositories = "repositories"

type RepositoryFetcher struct {
	source github.Source
	store  repositories.Store
	opts   Options
}

func NewRepositoryFetcher(source github.Source, store repositories.Store, opts Options) *RepositoryFetcher {
	return &RepositoryFetcher{source: source, store: store, opts: opts.withDefaults()}
}

// Fetch lists the repositories visible to the credentials, attaches their custom
// properties and upserts them. A repository whose properties cannot be read is
// cached with no properties.
func (f *RepositoryFetcher) Fetch(ctx context.Context) ([]domain.Repository, *domain.BatchReport, error) {
	logger := zerolog.Ctx(ctx).With().Str("stage", StageRepositories).Logger()
	report := domain.NewBatchReport(StageRepositories)

	remote, err := f.source.ListRepositories(ctx)
	if err != nil {
		return nil, report, err
	}

	type result struct {
		props domain.CustomProperties
		err   error
	}
	results := make([]result, len(remote))
	forEach(ctx, len(remote), f.opts.Concurrency, func(ctx context.Context, i int) {
		props, err := f.source.GetCustomProperties(ctx, remote[i].Owner, remote[i].Name)
		results[i] = result{props: props, err: err}
	})

	now := f.opts.Now()
	repos := make([]domain.Repository, 0, len(remote))
	rows := make([]store.Repository, 0, len(remote))
	for i, r := range remote {
		props := results[i].props
		if err := results[i].err; err != nil {
			logger.Warn().Err(err).Str("repository", r.FullName).Msg("custom properties unavailable")
			report.Skip(r.FullName, "custom_properties", err)
			props = domain.CustomProperties{}
		} else {
			report.OK(r.FullName, "custom_properties")
		}
		if props == nil {
			props = domain.CustomProperties{}
		}

		repo := domain.Repository{
			ID:               r.ID,
			Name:             r.Name,
			FullName:         r.FullName,
			Description:      r.Description,
			HTMLURL:          r.HTMLURL,
			CustomProperties: props,
			LastFetched:      now,
		}
		row, err := adapters.MapDomainRepositoryToStore(repo)
		if err != nil {
			return nil, report, fmt.Errorf("map repository %s: %w", r.FullName, err)
		}
		repos = append(repos, repo)
		rows = append(rows, row)
	}
	report.Processed = len(repos)

	if err := f.store.BulkPut(ctx, rows); err != nil {
		return nil, report, fmt.Errorf("store repositories: %w", err)
	}

	logger.Info().Int("repositories", len(repos)).Int("skipped", len(report.Skipped())).Msg("repositories fetched")
	return repos, report, nil
}
