// Package githubmock provides a testify mock of the remote source.
package githubmock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/store/github"
)

var _ github.Source = (*Source)(nil)

type Source struct {
	mock.Mock
}

func (m *Source) Organization() string {
	args := m.Called()
	return args.String(0)
}

func (m *Source) ListRepositories(ctx context.Context) ([]domain.RemoteRepository, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RemoteRepository), args.Error(1)
}

func (m *Source) GetCustomProperties(ctx context.Context, owner, repo string) (domain.CustomProperties, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.CustomProperties), args.Error(1)
}

func (m *Source) ListTeams(ctx context.Context, org string) ([]domain.Team, error) {
	args := m.Called(ctx, org)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Team), args.Error(1)
}

func (m *Source) ListCodeScanningAlerts(ctx context.Context, owner, repo string) ([]domain.CodeScanningAlert, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CodeScanningAlert), args.Error(1)
}

func (m *Source) ListSecretScanningAlerts(ctx context.Context, owner, repo string) ([]domain.SecretScanningAlert, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SecretScanningAlert), args.Error(1)
}

func (m *Source) ListDependabotAlerts(ctx context.Context, owner, repo string) ([]domain.DependabotAlert, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DependabotAlert), args.Error(1)
}

func (m *Source) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	args := m.Called(ctx, owner, repo, path)
	return args.String(0), args.Error(1)
}

func (m *Source) ListCollaborators(ctx context.Context, owner, repo string) ([]domain.Collaborator, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Collaborator), args.Error(1)
}

func (m *Source) CountCommitsSince(ctx context.Context, owner, repo string, since time.Time) (int, error) {
	args := m.Called(ctx, owner, repo, since)
	return args.Int(0), args.Error(1)
}

func (m *Source) RateUsage() *domain.RateUsage {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.RateUsage)
}
