package workflow

import (
	"context"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/services/compliance"
	"github.com/de-tools/repo-atlas/pkg/services/fetch"
	"github.com/de-tools/repo-atlas/pkg/services/metrics"
	"github.com/de-tools/repo-atlas/pkg/services/ownership"
)

const StageOwnershipResolution = "ownership_resolution"

type Services struct {
	Repositories *fetch.RepositoryFetcher
	Teams        *fetch.TeamFetcher
	Findings     *fetch.FindingFetcher
	Ownership    *fetch.OwnershipFetcher
	Resolver     *ownership.Resolver
	Compliance   *compliance.Evaluator
	Metrics      *metrics.Summarizer
}

// FullSyncStages lists the stages of a full sync in execution order. Later
// stages read what earlier ones cached, and the metrics summary comes last so it
// is only written when everything before it succeeded.
func FullSyncStages(s Services) []Stage {
	return []Stage{
		{Name: fetch.StageRepositories, Run: func(ctx context.Context) (*domain.BatchReport, error) {
			_, report, err := s.Repositories.Fetch(ctx)
			return report, err
		}},
		{Name: fetch.StageTeams, Run: func(ctx context.Context) (*domain.BatchReport, error) {
			_, report, err := s.Teams.Fetch(ctx)
			return report, err
		}},
		{Name: fetch.StageFindings, Run: func(ctx context.Context) (*domain.BatchReport, error) {
			_, report, err := s.Findings.Fetch(ctx)
			return report, err
		}},
		{Name: fetch.StageOwnershipRules, Run: func(ctx context.Context) (*domain.BatchReport, error) {
			_, report, err := s.Ownership.Fetch(ctx)
			return report, err
		}},
		{Name: StageOwnershipResolution, Run: func(ctx context.Context) (*domain.BatchReport, error) {
			report := domain.NewBatchReport(StageOwnershipResolution)
			updated, err := s.Resolver.AssignOwners(ctx)
			report.Processed = updated
			return report, err
		}},
		{Name: compliance.StageCompliance, Run: func(ctx context.Context) (*domain.BatchReport, error) {
			_, report, err := s.Compliance.Evaluate(ctx)
			return report, err
		}},
		{Name: metrics.StageMetrics, Run: func(ctx context.Context) (*domain.BatchReport, error) {
			_, report, err := s.Metrics.Summarize(ctx)
			return report, err
		}},
	}
}
