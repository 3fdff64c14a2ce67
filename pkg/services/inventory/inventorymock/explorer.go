// Package inventorymock provides a testify mock of the cache explorer.
package inventorymock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/services/inventory"
)

var _ inventory.Explorer = (*Explorer)(nil)

type Explorer struct {
	mock.Mock
}

func (m *Explorer) ListProfiles(ctx context.Context) ([]domain.ConfigProfile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ConfigProfile), args.Error(1)
}

func (m *Explorer) ListRepositories(ctx context.Context, filter domain.RepositoryFilter) ([]domain.Repository, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Repository), args.Error(1)
}

func (m *Explorer) GetRepository(ctx context.Context, id int64) (*domain.Repository, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Repository), args.Error(1)
}

func (m *Explorer) Pods(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *Explorer) EnvironmentTypes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *Explorer) ListTeams(ctx context.Context) ([]domain.Team, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Team), args.Error(1)
}

func (m *Explorer) ListFindings(ctx context.Context, filter domain.FindingFilter) ([]domain.SecurityFinding, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.SecurityFinding), args.Error(1)
}

func (m *Explorer) ListOwnershipRules(ctx context.Context, repositoryID int64) ([]domain.OwnershipRule, error) {
	args := m.Called(ctx, repositoryID)
	return args.Get(0).([]domain.OwnershipRule), args.Error(1)
}

func (m *Explorer) ListCompliance(ctx context.Context) ([]domain.ComplianceCheck, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ComplianceCheck), args.Error(1)
}
