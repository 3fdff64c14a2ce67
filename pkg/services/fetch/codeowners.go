package fetch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/adapters"
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/services/ownership"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/repositories"
	ownershipstore "github.com/de-tools/repo-atlas/pkg/store/duckdb/ownership"
	"github.com/de-tools/repo-atlas/pkg/store/github"
)

const StageOwnershipRules = "ownership_rules"

type OwnershipFetcher struct {
	source       github.Source
	repositories repositories.Store
	store        ownershipstore.Store
	opts         Options
}

func NewOwnershipFetcher(
	source github.Source,
	repositoryStore repositories.Store,
	ruleStore ownershipstore.Store,
	opts Options,
) *OwnershipFetcher {
	return &OwnershipFetcher{
		source:       source,
		repositories: repositoryStore,
		store:        ruleStore,
		opts:         opts.withDefaults(),
	}
}

// Fetch reads the ownership file of every cached repository and rebuilds its rule
// set. A repository without an ownership file ends up with no rules.
func (f *OwnershipFetcher) Fetch(ctx context.Context) ([]domain.OwnershipRule, *domain.BatchReport, error) {
	logger := zerolog.Ctx(ctx).With().Str("stage", StageOwnershipRules).Logger()
	report := domain.NewBatchReport(StageOwnershipRules)

	rows, err := f.repositories.List(ctx, store.RepositoryFilter{})
	if err != nil {
		return nil, report, fmt.Errorf("read repositories: %w", err)
	}
	repos := adapters.MapStoreRepositoriesToDomain(rows)

	files := make([]*domain.OwnershipFile, len(repos))
	forEach(ctx, len(repos), f.opts.Concurrency, func(ctx context.Context, i int) {
		owner, name := repos[i].OwnerAndName()
		file, err := ownership.Locate(ctx, f.source, owner, name)
		if err == nil {
			files[i] = file
		}
	})

	now := f.opts.Now()
	perRepository := make([][]store.OwnershipRule, len(repos))
	var all []domain.OwnershipRule
	for i, repo := range repos {
		if files[i] == nil {
			logger.Debug().Str("repository", repo.FullName).Msg("no ownership file")
			report.SkipWithReason(repo.FullName, "codeowners", ownership.ErrNoOwnershipFile.Error())
			continue
		}
		report.OK(repo.FullName, files[i].Path)

		for _, rule := range ownership.Parse(files[i].Content) {
			r := domain.OwnershipRule{
				RepositoryID:   repo.ID,
				RepositoryName: repo.FullName,
				Pattern:        rule.Pattern,
				Owner:          rule.Owner,
				LastFetched:    now,
			}
			all = append(all, r)
			perRepository[i] = append(perRepository[i], adapters.MapDomainOwnershipRuleToStore(r))
		}
	}
	report.Processed = len(all)

	if err := f.replaceAll(ctx, repos, perRepository); err != nil {
		return nil, report, fmt.Errorf("store ownership rules: %w", err)
	}

	logger.Info().Int("rules", len(all)).Int("repositories", len(repos)).Msg("ownership rules fetched")
	return all, report, nil
}

func (f *OwnershipFetcher) replaceAll(ctx context.Context, repos []domain.Repository, rules [][]store.OwnershipRule) error {
	for i, repo := range repos {
		if err := f.store.ReplaceForRepository(ctx, repo.ID, rules[i]); err != nil {
			return fmt.Errorf("%s: %w", repo.FullName, err)
		}
	}
	return nil
}
