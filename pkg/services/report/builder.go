// Package report turns cached inventory into rendering-agnostic documents for the
// terminal and the file exporters.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/services/inventory"
)

const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusFailed  = "failed"
)

type Dashboard interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
}

type Builder struct {
	explorer  inventory.Explorer
	dashboard Dashboard
	now       func() time.Time
}

func NewBuilder(explorer inventory.Explorer, dashboard Dashboard, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{explorer: explorer, dashboard: dashboard, now: now}
}

func (b *Builder) newReport(title string, sections ...domain.ReportSection) *domain.Report {
	return &domain.Report{Title: title, GeneratedAt: b.now(), Sections: sections}
}

func (b *Builder) Status(ctx context.Context, inProgress bool) (*domain.Report, error) {
	dashboard, err := b.dashboard.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return b.newReport("Sync status", StatusSection(*dashboard, inProgress)), nil
}

func (b *Builder) Repositories(ctx context.Context, filter domain.RepositoryFilter) (*domain.Report, error) {
	repos, err := b.explorer.ListRepositories(ctx, filter)
	if err != nil {
		return nil, err
	}
	return b.newReport("Repositories", RepositoriesSection(repos)), nil
}

func (b *Builder) Teams(ctx context.Context) (*domain.Report, error) {
	teams, err := b.explorer.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	return b.newReport("Teams", TeamsSection(teams)), nil
}

func (b *Builder) Findings(ctx context.Context, filter domain.FindingFilter) (*domain.Report, error) {
	list, err := b.explorer.ListFindings(ctx, filter)
	if err != nil {
		return nil, err
	}
	return b.newReport("Security findings", FindingsSection(list)), nil
}

func (b *Builder) Ownership(ctx context.Context, repositoryID int64) (*domain.Report, error) {
	repo, err := b.explorer.GetRepository(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	rules, err := b.explorer.ListOwnershipRules(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	return b.newReport(fmt.Sprintf("Ownership of %s", repo.FullName), OwnershipSection(*repo, rules)), nil
}

func (b *Builder) Compliance(ctx context.Context) (*domain.Report, error) {
	checks, err := b.explorer.ListCompliance(ctx)
	if err != nil {
		return nil, err
	}
	return b.newReport("Compliance", ComplianceSection(checks)), nil
}

// Full collects every section into one document, the shape used by export.
func (b *Builder) Full(ctx context.Context) (*domain.Report, error) {
	dashboard, err := b.dashboard.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	repos, err := b.explorer.ListRepositories(ctx, domain.RepositoryFilter{})
	if err != nil {
		return nil, err
	}
	teams, err := b.explorer.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	list, err := b.explorer.ListFindings(ctx, domain.FindingFilter{})
	if err != nil {
		return nil, err
	}
	checks, err := b.explorer.ListCompliance(ctx)
	if err != nil {
		return nil, err
	}

	return b.newReport("Repository atlas",
		StatusSection(*dashboard, false),
		ComplianceSection(checks),
		FindingsSection(list),
		RepositoriesSection(repos),
		TeamsSection(teams),
	), nil
}

func (b *Builder) Sync(report *domain.SyncReport) *domain.Report {
	return b.newReport(fmt.Sprintf("Sync %s", report.ID), SyncSection(report))
}

func StatusSection(d domain.Dashboard, inProgress bool) domain.ReportSection {
	section := domain.ReportSection{
		Title: "Status",
		Summary: map[string]interface{}{
			"stale":       d.Stale,
			"in_progress": inProgress,
		},
	}
	if d.Summary == nil {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        "last sync",
			Value:       "never",
			Status:      StatusWarning,
			Description: "no sync has completed yet",
		})
		return section
	}

	syncStatus := StatusOK
	if d.Stale {
		syncStatus = StatusWarning
	}
	section.Details = append(section.Details,
		domain.ReportDetail{Name: "last sync", Value: d.Summary.LastFetched.Format(time.RFC3339), Status: syncStatus},
		domain.ReportDetail{Name: "repositories", Value: d.Summary.RepositoryCount},
		domain.ReportDetail{Name: "teams", Value: d.Summary.TeamCount},
		domain.ReportDetail{Name: "recent commits", Value: d.Summary.CommitCount},
		domain.ReportDetail{Name: "high severity findings", Value: d.Severity.High, Status: countStatus(d.Severity.High)},
		domain.ReportDetail{Name: "medium severity findings", Value: d.Severity.Medium},
		domain.ReportDetail{Name: "low severity findings", Value: d.Severity.Low},
		domain.ReportDetail{Name: "non-compliant repositories", Value: d.Compliance.NonCompliant,
			Status: countStatus(d.Compliance.NonCompliant)},
	)
	return section
}

func RepositoriesSection(repos []domain.Repository) domain.ReportSection {
	section := domain.ReportSection{
		Title:   "Repositories",
		Summary: map[string]interface{}{"total": len(repos)},
	}
	for _, r := range repos {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        r.FullName,
			Value:       r.CustomProperties.EnvironmentType(),
			Description: joinNonEmpty(r.CustomProperties.Pod(), r.Description),
		})
	}
	return section
}

func TeamsSection(teams []domain.Team) domain.ReportSection {
	section := domain.ReportSection{
		Title:   "Teams",
		Summary: map[string]interface{}{"total": len(teams)},
	}
	for _, t := range teams {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        t.Slug,
			Value:       t.Name,
			Description: t.Description,
		})
	}
	return section
}

func FindingsSection(list []domain.SecurityFinding) domain.ReportSection {
	byTool := map[string]int{}
	unowned := 0
	for _, f := range list {
		byTool[string(f.Tool)]++
		if !f.HasOwner() {
			unowned++
		}
	}

	section := domain.ReportSection{
		Title: "Security findings",
		Summary: map[string]interface{}{
			"total":   len(list),
			"unowned": unowned,
		},
	}
	for tool, n := range byTool {
		section.Summary[tool] = n
	}

	for _, f := range list {
		owner := "unowned"
		if f.Owner != nil {
			owner = *f.Owner
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        fmt.Sprintf("%s %s", f.RepositoryName, f.ID),
			Value:       f.Severity,
			Status:      severityStatus(f.Severity),
			Description: joinNonEmpty(f.Title, f.DirectoryPath, owner),
		})
	}
	return section
}

func OwnershipSection(repo domain.Repository, rules []domain.OwnershipRule) domain.ReportSection {
	section := domain.ReportSection{
		Title: repo.FullName,
		Summary: map[string]interface{}{
			"rules": len(rules),
		},
	}
	for _, r := range rules {
		section.Details = append(section.Details, domain.ReportDetail{Name: r.Pattern, Value: r.Owner})
	}
	return section
}

func ComplianceSection(checks []domain.ComplianceCheck) domain.ReportSection {
	var stats domain.ComplianceStats
	section := domain.ReportSection{Title: "Compliance"}
	for _, c := range checks {
		status := StatusOK
		if c.Compliant() {
			stats.Compliant++
		} else {
			stats.NonCompliant++
			status = StatusFailed
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        c.RepositoryName,
			Value:       c.Compliant(),
			Status:      status,
			Description: violations(c),
		})
	}
	section.Summary = map[string]interface{}{
		"compliant":     stats.Compliant,
		"non_compliant": stats.NonCompliant,
	}
	return section
}

func SyncSection(r *domain.SyncReport) domain.ReportSection {
	section := domain.ReportSection{
		Title: "Stages",
		Summary: map[string]interface{}{
			"status":  string(r.Status),
			"elapsed": r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
		},
	}
	for _, s := range r.Stages {
		detail := domain.ReportDetail{
			Name:   s.Name,
			Status: StatusOK,
		}
		if s.Batch != nil {
			detail.Value = s.Batch.Processed
			if skipped := s.Batch.Skipped(); len(skipped) > 0 {
				detail.Status = StatusWarning
				detail.Description = fmt.Sprintf("%d skipped", len(skipped))
			}
		}
		if s.Error != nil {
			detail.Status = StatusFailed
			detail.Description = *s.Error
		}
		section.Details = append(section.Details, detail)
	}
	return section
}

func violations(c domain.ComplianceCheck) string {
	var res []string
	if !c.ValidCodeowners {
		res = append(res, "no catch-all CODEOWNERS rule")
	}
	if c.OldHighCriticalFindings {
		res = append(res, "old high/critical findings")
	}
	if c.DirectUserAccess {
		res = append(res, "direct user access")
	}
	if c.AdminOwnerAccess {
		res = append(res, "admin or maintain collaborators")
	}
	sort.Strings(res)
	return joinNonEmpty(res...)
}

func severityStatus(severity string) string {
	switch domain.ParseSeverity(severity) {
	case domain.SeverityHigh:
		return StatusFailed
	case domain.SeverityMedium:
		return StatusWarning
	default:
		return StatusOK
	}
}

func countStatus(n int) string {
	if n > 0 {
		return StatusFailed
	}
	return StatusOK
}

func joinNonEmpty(parts ...string) string {
	res := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if res != "" {
			res += ", "
		}
		res += p
	}
	return res
}
