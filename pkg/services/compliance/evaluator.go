package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/repo-atlas/pkg/adapters"
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/services/ownership"
	compliancestore "github.com/de-tools/repo-atlas/pkg/store/duckdb/compliance"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/findings"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/repositories"
	"github.com/de-tools/repo-atlas/pkg/store/github"
)

const (
	StageCompliance = "compliance"

	DefaultFindingAge  = 30 * 24 * time.Hour
	DefaultConcurrency = 4
)

type Options struct {
	// FindingAge is how old a high or critical finding must be to break compliance.
	FindingAge  time.Duration
	Concurrency int
	Now         func() time.Time
}

type Evaluator struct {
	source       github.Source
	repositories repositories.Store
	findings     findings.Store
	checks       compliancestore.Store
	opts         Options
}

func NewEvaluator(
	source github.Source,
	repositoryStore repositories.Store,
	findingStore findings.Store,
	checkStore compliancestore.Store,
	opts Options,
) *Evaluator {
	if opts.FindingAge <= 0 {
		opts.FindingAge = DefaultFindingAge
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Evaluator{
		source:       source,
		repositories: repositoryStore,
		findings:     findingStore,
		checks:       checkStore,
		opts:         opts,
	}
}

// remoteFacets are the facets read from the remote source, with the error of each call.
type remoteFacets struct {
	validCodeowners  bool
	directUserAccess bool
	adminOwnerAccess bool
	ownershipErr     error
	collaboratorsErr error
}

// Evaluate computes and stores a compliance record for every production
// repository. A facet that cannot be determined is recorded as false.
func (e *Evaluator) Evaluate(ctx context.Context) ([]domain.ComplianceCheck, *domain.BatchReport, error) {
	logger := zerolog.Ctx(ctx).With().Str("stage", StageCompliance).Logger()
	report := domain.NewBatchReport(StageCompliance)

	rows, err := e.repositories.List(ctx, store.RepositoryFilter{})
	if err != nil {
		return nil, report, fmt.Errorf("read repositories: %w", err)
	}

	var production []domain.Repository
	for _, repo := range adapters.MapStoreRepositoriesToDomain(rows) {
		if repo.IsProduction() {
			production = append(production, repo)
		}
	}

	facets := make([]remoteFacets, len(production))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i := range production {
		g.Go(func() error {
			facets[i] = e.remoteFacets(gctx, production[i])
			return nil
		})
	}
	_ = g.Wait()

	now := e.opts.Now()
	cutoff := now.Add(-e.opts.FindingAge)
	checks := make([]domain.ComplianceCheck, 0, len(production))
	for i, repo := range production {
		f := facets[i]
		repoLogger := logger.With().Str("repository", repo.FullName).Logger()

		if f.ownershipErr != nil {
			repoLogger.Debug().Err(f.ownershipErr).Msg("ownership file unavailable")
			report.Skip(repo.FullName, "valid_codeowners", f.ownershipErr)
		}
		if f.collaboratorsErr != nil {
			repoLogger.Warn().Err(f.collaboratorsErr).Msg("collaborators unavailable, access facets default to false")
			report.Skip(repo.FullName, "collaborators", f.collaboratorsErr)
		}

		oldFindings := false
		count, err := e.findings.CountOldHighCritical(ctx, repo.ID, cutoff)
		if err != nil {
			repoLogger.Warn().Err(err).Msg("finding age check failed, facet defaults to false")
			report.Skip(repo.FullName, "old_high_critical_findings", err)
		} else {
			oldFindings = count > 0
		}

		check := domain.ComplianceCheck{
			RepositoryID:            repo.ID,
			RepositoryName:          repo.FullName,
			ValidCodeowners:         f.validCodeowners,
			OldHighCriticalFindings: oldFindings,
			DirectUserAccess:        f.directUserAccess,
			AdminOwnerAccess:        f.adminOwnerAccess,
			LastChecked:             now,
		}
		checks = append(checks, check)
		report.OK(repo.FullName, "compliance")
	}
	report.Processed = len(checks)

	storeRows := make([]store.ComplianceCheck, 0, len(checks))
	for _, check := range checks {
		storeRows = append(storeRows, adapters.MapDomainComplianceCheckToStore(check))
	}
	if err := e.checks.BulkPut(ctx, storeRows); err != nil {
		return nil, report, fmt.Errorf("store compliance checks: %w", err)
	}

	logger.Info().Int("repositories", len(checks)).Msg("compliance evaluated")
	return checks, report, nil
}

func (e *Evaluator) remoteFacets(ctx context.Context, repo domain.Repository) remoteFacets {
	var f remoteFacets
	owner, name := repo.OwnerAndName()

	file, err := ownership.Locate(ctx, e.source, owner, name)
	if err != nil {
		f.ownershipErr = err
	} else {
		f.validCodeowners = ownership.HasCatchAll(file.Content)
	}

	collaborators, err := e.source.ListCollaborators(ctx, owner, name)
	if err != nil {
		f.collaboratorsErr = err
		return f
	}
	f.directUserAccess = len(collaborators) > 0
	for _, c := range collaborators {
		if c.HasElevatedAccess() {
			f.adminOwnerAccess = true
			break
		}
	}
	return f
}
