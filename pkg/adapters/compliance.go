package adapters

import (
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
)

func MapDomainComplianceCheckToStore(c domain.ComplianceCheck) store.ComplianceCheck {
	return store.ComplianceCheck{
		RepositoryID:            c.RepositoryID,
		RepositoryName:          c.RepositoryName,
		ValidCodeowners:         c.ValidCodeowners,
		OldHighCriticalFindings: c.OldHighCriticalFindings,
		DirectUserAccess:        c.DirectUserAccess,
		AdminOwnerAccess:        c.AdminOwnerAccess,
		LastChecked:             c.LastChecked,
	}
}

func MapStoreComplianceCheckToDomain(c store.ComplianceCheck) domain.ComplianceCheck {
	return domain.ComplianceCheck{
		RepositoryID:            c.RepositoryID,
		RepositoryName:          c.RepositoryName,
		ValidCodeowners:         c.ValidCodeowners,
		OldHighCriticalFindings: c.OldHighCriticalFindings,
		DirectUserAccess:        c.DirectUserAccess,
		AdminOwnerAccess:        c.AdminOwnerAccess,
		LastChecked:             c.LastChecked,
	}
}

func MapStoreComplianceChecksToDomain(rows []store.ComplianceCheck) []domain.ComplianceCheck {
	res := make([]domain.ComplianceCheck, 0, len(rows))
	for _, c := range rows {
		res = append(res, MapStoreComplianceCheckToDomain(c))
	}
	return res
}

func MapDomainMetricsSummaryToStore(m domain.MetricsSummary) store.MetricsSummary {
	return store.MetricsSummary{
		ID:              domain.MetricsSummaryID,
		RepositoryCount: m.RepositoryCount,
		TeamCount:       m.TeamCount,
		CommitCount:     m.CommitCount,
		LastFetched:     m.LastFetched,
	}
}

func MapStoreMetricsSummaryToDomain(m store.MetricsSummary) domain.MetricsSummary {
	return domain.MetricsSummary{
		RepositoryCount: m.RepositoryCount,
		TeamCount:       m.TeamCount,
		CommitCount:     m.CommitCount,
		LastFetched:     m.LastFetched,
	}
}
