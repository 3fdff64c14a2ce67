package adapters

import (
	"github.com/de-tools/repo-atlas/pkg/models/api"
	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

func MapRepositoryDomainToApi(r domain.Repository) api.Repository {
	props := make(map[string]string, len(r.CustomProperties))
	for k, v := range r.CustomProperties {
		props[k] = v
	}
	return api.Repository{
		ID:               r.ID,
		Name:             r.Name,
		FullName:         r.FullName,
		Description:      r.Description,
		HTMLURL:          r.HTMLURL,
		Pod:              r.CustomProperties.Pod(),
		EnvironmentType:  r.CustomProperties.EnvironmentType(),
		CustomProperties: props,
		LastFetched:      r.LastFetched,
	}
}

func MapTeamDomainToApi(t domain.Team) api.Team {
	return api.Team{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		HTMLURL:     t.HTMLURL,
		LastFetched: t.LastFetched,
	}
}

func MapFindingDomainToApi(f domain.SecurityFinding) api.Finding {
	return api.Finding{
		ID:             f.ID,
		RepositoryID:   f.RepositoryID,
		RepositoryName: f.RepositoryName,
		Tool:           string(f.Tool),
		Severity:       f.Severity,
		Title:          f.Title,
		Description:    f.Description,
		HTMLURL:        f.HTMLURL,
		CreatedAt:      f.CreatedAt,
		DirectoryPath:  f.DirectoryPath,
		Owner:          f.Owner,
		LastFetched:    f.LastFetched,
	}
}

func MapOwnershipRuleDomainToApi(r domain.OwnershipRule) api.OwnershipRule {
	return api.OwnershipRule{Pattern: r.Pattern, Owner: r.Owner}
}

func MapComplianceCheckDomainToApi(c domain.ComplianceCheck) api.ComplianceCheck {
	return api.ComplianceCheck{
		RepositoryID:            c.RepositoryID,
		RepositoryName:          c.RepositoryName,
		ValidCodeowners:         c.ValidCodeowners,
		OldHighCriticalFindings: c.OldHighCriticalFindings,
		DirectUserAccess:        c.DirectUserAccess,
		AdminOwnerAccess:        c.AdminOwnerAccess,
		Compliant:               c.Compliant(),
		LastChecked:             c.LastChecked,
	}
}

func MapMetricsSummaryDomainToApi(m *domain.MetricsSummary) *api.MetricsSummary {
	if m == nil {
		return nil
	}
	return &api.MetricsSummary{
		RepositoryCount: m.RepositoryCount,
		TeamCount:       m.TeamCount,
		CommitCount:     m.CommitCount,
		LastFetched:     m.LastFetched,
	}
}

func MapRateUsageDomainToApi(r *domain.RateUsage) *api.RateUsage {
	if r == nil {
		return nil
	}
	return &api.RateUsage{Limit: r.Limit, Remaining: r.Remaining, Reset: r.Reset}
}

func MapSyncReportDomainToApi(r domain.SyncReport) api.SyncReport {
	res := api.SyncReport{
		ID:         r.ID,
		Status:     string(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Stages:     make([]api.StageReport, 0, len(r.Stages)),
		Error:      r.Error,
	}
	for _, s := range r.Stages {
		stage := api.StageReport{
			Name:       s.Name,
			StartedAt:  s.StartedAt,
			FinishedAt: s.FinishedAt,
			Skipped:    []api.ItemResult{},
			Error:      s.Error,
		}
		if s.Batch != nil {
			stage.Processed = s.Batch.Processed
			for _, item := range s.Batch.Skipped() {
				stage.Skipped = append(stage.Skipped, api.ItemResult{
					Repository: item.Repository,
					Item:       item.Item,
					Status:     string(item.Status),
					Reason:     item.Reason,
				})
			}
		}
		res.Stages = append(res.Stages, stage)
	}
	return res
}

func MapDashboardDomainToApi(d domain.Dashboard) api.Dashboard {
	return api.Dashboard{
		Summary: MapMetricsSummaryDomainToApi(d.Summary),
		Stale:   d.Stale,
		Severity: api.SeverityStats{
			High:   d.Severity.High,
			Medium: d.Severity.Medium,
			Low:    d.Severity.Low,
		},
		Compliance: api.ComplianceStats{
			Compliant:    d.Compliance.Compliant,
			NonCompliant: d.Compliance.NonCompliant,
		},
	}
}
