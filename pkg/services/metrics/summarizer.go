package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/adapters"
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
	compliancestore "github.com/de-tools/repo-atlas/pkg/store/duckdb/compliance"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/findings"
	metricsstore "github.com/de-tools/repo-atlas/pkg/store/duckdb/metrics"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/repositories"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/teams"
	"github.com/de-tools/repo-atlas/pkg/store/github"
)

const (
	StageMetrics = "metrics"

	DefaultCommitWindow    = 30 * 24 * time.Hour
	DefaultCommitRepoLimit = 5
	DefaultStalenessWindow = 24 * time.Hour
)

type Options struct {
	CommitWindow time.Duration
	// CommitRepoLimit caps how many repositories, in id order, have their commits counted.
	CommitRepoLimit int
	StalenessWindow time.Duration
	Now             func() time.Time
}

type Stores struct {
	Repositories repositories.Store
	Teams        teams.Store
	Findings     findings.Store
	Compliance   compliancestore.Store
	Metrics      metricsstore.Store
}

type Summarizer struct {
	source github.Source
	stores Stores
	opts   Options
}

func NewSummarizer(source github.Source, stores Stores, opts Options) *Summarizer {
	if opts.CommitWindow <= 0 {
		opts.CommitWindow = DefaultCommitWindow
	}
	if opts.CommitRepoLimit <= 0 {
		opts.CommitRepoLimit = DefaultCommitRepoLimit
	}
	if opts.StalenessWindow <= 0 {
		opts.StalenessWindow = DefaultStalenessWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Summarizer{source: source, stores: stores, opts: opts}
}

// Summarize counts the cached repositories and teams, the recent commits of the
// first repositories, and overwrites the summary record. Its last_fetched marks
// the completion of a sync.
func (s *Summarizer) Summarize(ctx context.Context) (*domain.MetricsSummary, *domain.BatchReport, error) {
	logger := zerolog.Ctx(ctx).With().Str("stage", StageMetrics).Logger()
	report := domain.NewBatchReport(StageMetrics)

	repoCount, err := s.stores.Repositories.Count(ctx)
	if err != nil {
		return nil, report, err
	}
	teamCount, err := s.stores.Teams.Count(ctx)
	if err != nil {
		return nil, report, err
	}

	rows, err := s.stores.Repositories.List(ctx, store.RepositoryFilter{})
	if err != nil {
		return nil, report, fmt.Errorf("read repositories: %w", err)
	}
	if len(rows) > s.opts.CommitRepoLimit {
		rows = rows[:s.opts.CommitRepoLimit]
	}

	since := s.opts.Now().Add(-s.opts.CommitWindow)
	commits := 0
	for _, repo := range adapters.MapStoreRepositoriesToDomain(rows) {
		owner, name := repo.OwnerAndName()
		n, err := s.source.CountCommitsSince(ctx, owner, name, since)
		if err != nil {
			logger.Warn().Err(err).Str("repository", repo.FullName).Msg("commit count unavailable")
			report.Skip(repo.FullName, "commits", err)
			continue
		}
		report.OK(repo.FullName, "commits")
		commits += n
	}
	report.Processed = len(rows)

	summary := domain.MetricsSummary{
		RepositoryCount: repoCount,
		TeamCount:       teamCount,
		CommitCount:     commits,
		LastFetched:     s.opts.Now(),
	}
	if err := s.stores.Metrics.Put(ctx, adapters.MapDomainMetricsSummaryToStore(summary)); err != nil {
		return nil, report, err
	}

	logger.Info().
		Int("repositories", repoCount).
		Int("teams", teamCount).
		Int("commits", commits).
		Msg("metrics summary written")
	return &summary, report, nil
}

// Summary returns the stored summary, or nil when no sync has completed yet.
func (s *Summarizer) Summary(ctx context.Context) (*domain.MetricsSummary, error) {
	row, err := s.stores.Metrics.Get(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	summary := adapters.MapStoreMetricsSummaryToDomain(*row)
	return &summary, nil
}

// IsStale is true when no summary exists or the last sync completed longer
// than the staleness window ago. It never triggers a sync.
func (s *Summarizer) IsStale(ctx context.Context) (bool, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return false, err
	}
	if summary == nil {
		return true, nil
	}
	return s.opts.Now().Sub(summary.LastFetched) > s.opts.StalenessWindow, nil
}

// Dashboard aggregates the cached findings and compliance records.
func (s *Summarizer) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	stale, err := s.IsStale(ctx)
	if err != nil {
		return nil, err
	}

	findingRows, err := s.stores.Findings.List(ctx, store.FindingFilter{})
	if err != nil {
		return nil, err
	}
	checkRows, err := s.stores.Compliance.List(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Dashboard{
		Summary:    summary,
		Stale:      stale,
		Severity:   SeverityStats(adapters.MapStoreFindingsToDomain(findingRows)),
		Compliance: ComplianceStats(adapters.MapStoreComplianceChecksToDomain(checkRows)),
	}, nil
}

// SeverityStats buckets findings: high counts high and critical, low counts low
// and note. Other severities are not counted.
func SeverityStats(list []domain.SecurityFinding) domain.SeverityStats {
	var stats domain.SeverityStats
	for _, f := range list {
		switch domain.ParseSeverity(f.Severity) {
		case domain.SeverityHigh:
			stats.High++
		case domain.SeverityMedium:
			stats.Medium++
		case domain.SeverityLow:
			stats.Low++
		}
	}
	return stats
}

func ComplianceStats(checks []domain.ComplianceCheck) domain.ComplianceStats {
	var stats domain.ComplianceStats
	for _, c := range checks {
		if c.Compliant() {
			stats.Compliant++
		} else {
			stats.NonCompliant++
		}
	}
	return stats
}
