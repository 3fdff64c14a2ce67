package inventory

import (
	"context"

	"github.com/de-tools/repo-atlas/pkg/adapters"
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/services/config"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/compliance"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/findings"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/ownership"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/repositories"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/teams"
)

// Explorer reads the local cache. None of its methods reach the remote source.
type Explorer interface {
	ListProfiles(ctx context.Context) ([]domain.ConfigProfile, error)
	ListRepositories(ctx context.Context, filter domain.RepositoryFilter) ([]domain.Repository, error)
	GetRepository(ctx context.Context, id int64) (*domain.Repository, error)
	Pods(ctx context.Context) ([]string, error)
	EnvironmentTypes(ctx context.Context) ([]string, error)
	ListTeams(ctx context.Context) ([]domain.Team, error)
	ListFindings(ctx context.Context, filter domain.FindingFilter) ([]domain.SecurityFinding, error)
	ListOwnershipRules(ctx context.Context, repositoryID int64) ([]domain.OwnershipRule, error)
	ListCompliance(ctx context.Context) ([]domain.ComplianceCheck, error)
}

type Stores struct {
	Repositories repositories.Store
	Teams        teams.Store
	Findings     findings.Store
	Ownership    ownership.Store
	Compliance   compliance.Store
}

type cacheExplorer struct {
	registry config.Registry
	stores   Stores
}

func NewExplorer(registry config.Registry, stores Stores) Explorer {
	return &cacheExplorer{registry: registry, stores: stores}
}

func (e *cacheExplorer) ListProfiles(ctx context.Context) ([]domain.ConfigProfile, error) {
	if e.registry == nil {
		return []domain.ConfigProfile{}, nil
	}
	return e.registry.GetProfiles(ctx)
}

func (e *cacheExplorer) ListRepositories(ctx context.Context, filter domain.RepositoryFilter) ([]domain.Repository, error) {
	rows, err := e.stores.Repositories.List(ctx, adapters.MapDomainRepositoryFilterToStore(filter))
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreRepositoriesToDomain(rows), nil
}

func (e *cacheExplorer) GetRepository(ctx context.Context, id int64) (*domain.Repository, error) {
	row, err := e.stores.Repositories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	repo := adapters.MapStoreRepositoryToDomain(*row)
	return &repo, nil
}

func (e *cacheExplorer) Pods(ctx context.Context) ([]string, error) {
	return e.stores.Repositories.Pods(ctx)
}

func (e *cacheExplorer) EnvironmentTypes(ctx context.Context) ([]string, error) {
	return e.stores.Repositories.EnvironmentTypes(ctx)
}

func (e *cacheExplorer) ListTeams(ctx context.Context) ([]domain.Team, error) {
	rows, err := e.stores.Teams.List(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]domain.Team, 0, len(rows))
	for _, row := range rows {
		res = append(res, adapters.MapStoreTeamToDomain(row))
	}
	return res, nil
}

func (e *cacheExplorer) ListFindings(ctx context.Context, filter domain.FindingFilter) ([]domain.SecurityFinding, error) {
	rows, err := e.stores.Findings.List(ctx, adapters.MapDomainFindingFilterToStore(filter))
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreFindingsToDomain(rows), nil
}

func (e *cacheExplorer) ListOwnershipRules(ctx context.Context, repositoryID int64) ([]domain.OwnershipRule, error) {
	rows, err := e.stores.Ownership.ListByRepository(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreOwnershipRulesToDomain(rows), nil
}

func (e *cacheExplorer) ListCompliance(ctx context.Context) ([]domain.ComplianceCheck, error) {
	rows, err := e.stores.Compliance.List(ctx)
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreComplianceChecksToDomain(rows), nil
}
