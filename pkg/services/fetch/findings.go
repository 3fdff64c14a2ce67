package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/adapters"
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/findings"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/repositories"
	"github.com/de-tools/repo-atlas/pkg/store/github"
)

const (
	StageFindings = "findings"

	SeverityUnknown        = "unknown"
	SecretScanningSeverity = "critical"
)

type FindingFetcher struct {
	source       github.Source
	repositories repositories.Store
	store        findings.Store
	opts         Options
}

func NewFindingFetcher(
	source github.Source,
	repositoryStore repositories.Store,
	findingStore findings.Store,
	opts Options,
) *FindingFetcher {
	return &FindingFetcher{
		source:       source,
		repositories: repositoryStore,
		store:        findingStore,
		opts:         opts.withDefaults(),
	}
}

type slice struct {
	repo domain.Repository
	tool domain.Tool
}

type sliceResult struct {
	findings []domain.SecurityFinding
	err      error
}

// Fetch lists the alerts of every tool for every cached repository. A failed
// (repository, tool) slice contributes no findings and is reported as skipped.
func (f *FindingFetcher) Fetch(ctx context.Context) ([]domain.SecurityFinding, *domain.BatchReport, error) {
	logger := zerolog.Ctx(ctx).With().Str("stage", StageFindings).Logger()
	report := domain.NewBatchReport(StageFindings)

	rows, err := f.repositories.List(ctx, store.RepositoryFilter{})
	if err != nil {
		return nil, report, fmt.Errorf("read repositories: %w", err)
	}
	repos := adapters.MapStoreRepositoriesToDomain(rows)

	slices := make([]slice, 0, len(repos)*len(domain.Tools))
	for _, repo := range repos {
		for _, tool := range domain.Tools {
			slices = append(slices, slice{repo: repo, tool: tool})
		}
	}

	now := f.opts.Now()
	results := make([]sliceResult, len(slices))
	forEach(ctx, len(slices), f.opts.Concurrency, func(ctx context.Context, i int) {
		list, err := f.fetchSlice(ctx, slices[i], now)
		results[i] = sliceResult{findings: list, err: err}
	})

	var all []domain.SecurityFinding
	for i, s := range slices {
		if err := results[i].err; err != nil {
			logger.Warn().Err(err).
				Str("repository", s.repo.FullName).
				Str("tool", string(s.tool)).
				Msg("alert listing failed, skipping")
			report.Skip(s.repo.FullName, string(s.tool), err)
			continue
		}
		report.OK(s.repo.FullName, string(s.tool))
		all = append(all, results[i].findings...)
	}
	report.Processed = len(all)

	storeRows := make([]store.SecurityFinding, 0, len(all))
	for _, finding := range all {
		storeRows = append(storeRows, adapters.MapDomainFindingToStore(finding))
	}
	if err := f.store.BulkPut(ctx, storeRows); err != nil {
		return nil, report, fmt.Errorf("store findings: %w", err)
	}

	logger.Info().Int("findings", len(all)).Int("skipped", len(report.Skipped())).Msg("findings fetched")
	return all, report, nil
}

func (f *FindingFetcher) fetchSlice(ctx context.Context, s slice, now time.Time) ([]domain.SecurityFinding, error) {
	owner, name := s.repo.OwnerAndName()

	switch s.tool {
	case domain.ToolCodeScanning:
		alerts, err := f.source.ListCodeScanningAlerts(ctx, owner, name)
		if err != nil {
			return nil, err
		}
		return mapCodeScanningFindings(s.repo, alerts, now), nil
	case domain.ToolSecretScanning:
		alerts, err := f.source.ListSecretScanningAlerts(ctx, owner, name)
		if err != nil {
			return nil, err
		}
		return mapSecretScanningFindings(s.repo, alerts, now), nil
	case domain.ToolDependabot:
		alerts, err := f.source.ListDependabotAlerts(ctx, owner, name)
		if err != nil {
			return nil, err
		}
		return mapDependabotFindings(s.repo, alerts, now), nil
	}
	return nil, fmt.Errorf("unsupported tool %q", s.tool)
}

func mapCodeScanningFindings(repo domain.Repository, alerts []domain.CodeScanningAlert, now time.Time) []domain.SecurityFinding {
	res := make([]domain.SecurityFinding, 0, len(alerts))
	for _, a := range alerts {
		severity := a.Severity
		if severity == "" {
			severity = SeverityUnknown
		}
		res = append(res, domain.SecurityFinding{
			ID:             domain.FindingID(domain.ToolCodeScanning, repo.ID, a.Number),
			RepositoryID:   repo.ID,
			RepositoryName: repo.FullName,
			Tool:           domain.ToolCodeScanning,
			Severity:       severity,
			Title:          a.Description,
			Description:    a.Message,
			HTMLURL:        a.HTMLURL,
			CreatedAt:      a.CreatedAt,
			DirectoryPath:  a.Path,
			LastFetched:    now,
		})
	}
	return res
}

func mapSecretScanningFindings(repo domain.Repository, alerts []domain.SecretScanningAlert, now time.Time) []domain.SecurityFinding {
	res := make([]domain.SecurityFinding, 0, len(alerts))
	for _, a := range alerts {
		res = append(res, domain.SecurityFinding{
			ID:             domain.FindingID(domain.ToolSecretScanning, repo.ID, a.Number),
			RepositoryID:   repo.ID,
			RepositoryName: repo.FullName,
			Tool:           domain.ToolSecretScanning,
			Severity:       SecretScanningSeverity,
			Title:          "Exposed " + a.SecretType,
			Description:    "Secret detected in " + a.SecretType,
			HTMLURL:        a.HTMLURL,
			CreatedAt:      a.CreatedAt,
			LastFetched:    now,
		})
	}
	return res
}

func mapDependabotFindings(repo domain.Repository, alerts []domain.DependabotAlert, now time.Time) []domain.SecurityFinding {
	res := make([]domain.SecurityFinding, 0, len(alerts))
	for _, a := range alerts {
		res = append(res, domain.SecurityFinding{
			ID:             domain.FindingID(domain.ToolDependabot, repo.ID, a.Number),
			RepositoryID:   repo.ID,
			RepositoryName: repo.FullName,
			Tool:           domain.ToolDependabot,
			Severity:       a.Severity,
			Title:          a.Summary,
			Description:    a.Description,
			HTMLURL:        a.HTMLURL,
			CreatedAt:      a.CreatedAt,
			DirectoryPath:  a.ManifestPath,
			LastFetched:    now,
		})
	}
	return res
}
