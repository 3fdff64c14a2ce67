package adapters

import (
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
)

func MapDomainFindingToStore(f domain.SecurityFinding) store.SecurityFinding {
	return store.SecurityFinding{
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
		Owner:          nullableString(f.Owner),
		LastFetched:    f.LastFetched,
	}
}

func MapStoreFindingToDomain(f store.SecurityFinding) domain.SecurityFinding {
	return domain.SecurityFinding{
		ID:             f.ID,
		RepositoryID:   f.RepositoryID,
		RepositoryName: f.RepositoryName,
		Tool:           domain.Tool(f.Tool),
		Severity:       f.Severity,
		Title:          f.Title,
		Description:    f.Description,
		HTMLURL:        f.HTMLURL,
		CreatedAt:      f.CreatedAt,
		DirectoryPath:  f.DirectoryPath,
		Owner:          pointerString(f.Owner),
		LastFetched:    f.LastFetched,
	}
}

func MapStoreFindingsToDomain(rows []store.SecurityFinding) []domain.SecurityFinding {
	res := make([]domain.SecurityFinding, 0, len(rows))
	for _, f := range rows {
		res = append(res, MapStoreFindingToDomain(f))
	}
	return res
}

func MapDomainFindingFilterToStore(f domain.FindingFilter) store.FindingFilter {
	res := store.FindingFilter{
		RepositoryName: f.RepositoryName,
		Tool:           string(f.Tool),
		Severity:       f.Severity,
	}
	switch f.OwnerStatus {
	case domain.OwnerStatusWith:
		hasOwner := true
		res.HasOwner = &hasOwner
	case domain.OwnerStatusWithout:
		hasOwner := false
		res.HasOwner = &hasOwner
	}
	return res
}

func MapDomainOwnershipRuleToStore(r domain.OwnershipRule) store.OwnershipRule {
	return store.OwnershipRule{
		RepositoryID:   r.RepositoryID,
		RepositoryName: r.RepositoryName,
		Pattern:        r.Pattern,
		Owner:          r.Owner,
		LastFetched:    r.LastFetched,
	}
}

func MapStoreOwnershipRuleToDomain(r store.OwnershipRule) domain.OwnershipRule {
	return domain.OwnershipRule{
		RepositoryID:   r.RepositoryID,
		RepositoryName: r.RepositoryName,
		Pattern:        r.Pattern,
		Owner:          r.Owner,
		LastFetched:    r.LastFetched,
	}
}

func MapStoreOwnershipRulesToDomain(rows []store.OwnershipRule) []domain.OwnershipRule {
	res := make([]domain.OwnershipRule, 0, len(rows))
	for _, r := range rows {
		res = append(res, MapStoreOwnershipRuleToDomain(r))
	}
	return res
}
