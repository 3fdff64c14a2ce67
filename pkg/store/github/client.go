package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

// PerPage is the page size for every listing. Only the first page is read.
const PerPage = 100

// ErrFileNotFound is returned by GetFileContent when the path does not resolve to a file.
var ErrFileNotFound = errors.New("file not found")

// Source is the remote data source the sync stages read from.
type Source interface {
	Organization() string
	ListRepositories(ctx context.Context) ([]domain.RemoteRepository, error)
	GetCustomProperties(ctx context.Context, owner, repo string) (domain.CustomProperties, error)
	ListTeams(ctx context.Context, org string) ([]domain.Team, error)
	ListCodeScanningAlerts(ctx context.Context, owner, repo string) ([]domain.CodeScanningAlert, error)
	ListSecretScanningAlerts(ctx context.Context, owner, repo string) ([]domain.SecretScanningAlert, error)
	ListDependabotAlerts(ctx context.Context, owner, repo string) ([]domain.DependabotAlert, error)
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
	ListCollaborators(ctx context.Context, owner, repo string) ([]domain.Collaborator, error)
	CountCommitsSince(ctx context.Context, owner, repo string, since time.Time) (int, error)
	// RateUsage reports the rate limit seen on the most recent response, nil before the first call.
	RateUsage() *domain.RateUsage
}

type Client struct {
	client *gh.Client
	org    string

	mu   sync.RWMutex
	rate *domain.RateUsage
}

func NewClient(ctx context.Context, cfg domain.SourceConfig) (*Client, error) {
	httpClient, err := httpClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" {
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
		}
	}

	return &Client{client: client, org: cfg.Organization}, nil
}

// NewClientFromGitHub wraps an already configured go-github client.
func NewClientFromGitHub(client *gh.Client, org string) *Client {
	return &Client{client: client, org: org}
}

func (c *Client) Organization() string {
	return c.org
}

func (c *Client) RateUsage() *domain.RateUsage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.rate == nil {
		return nil
	}
	rate := *c.rate
	return &rate
}

func (c *Client) track(resp *gh.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = &domain.RateUsage{
		Limit:     resp.Rate.Limit,
		Remaining: resp.Rate.Remaining,
		Reset:     resp.Rate.Reset.Time,
	}
}

func (c *Client) ListRepositories(ctx context.Context) ([]domain.RemoteRepository, error) {
	repos, resp, err := c.client.Repositories.ListByAuthenticatedUser(ctx, &gh.RepositoryListByAuthenticatedUserOptions{
		ListOptions: gh.ListOptions{PerPage: PerPage},
	})
	c.track(resp)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to list repositories")
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	return mapRepositories(repos), nil
}

func (c *Client) GetCustomProperties(ctx context.Context, owner, repo string) (domain.CustomProperties, error) {
	values, resp, err := c.client.Repositories.GetAllCustomPropertyValues(ctx, owner, repo)
	c.track(resp)
	if err != nil {
		return nil, fmt.Errorf("custom properties of %s/%s: %w", owner, repo, err)
	}
	return mapCustomProperties(values), nil
}

func (c *Client) ListTeams(ctx context.Context, org string) ([]domain.Team, error) {
	teams, resp, err := c.client.Teams.ListTeams(ctx, org, &gh.ListOptions{PerPage: PerPage})
	c.track(resp)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("org", org).Msg("failed to list teams")
		return nil, fmt.Errorf("list teams of %s: %w", org, err)
	}
	return mapTeams(teams), nil
}

func (c *Client) ListCodeScanningAlerts(ctx context.Context, owner, repo string) ([]domain.CodeScanningAlert, error) {
	alerts, resp, err := c.client.CodeScanning.ListAlertsForRepo(ctx, owner, repo, &gh.AlertListOptions{
		ListOptions: gh.ListOptions{PerPage: PerPage},
	})
	c.track(resp)
	if err != nil {
		return nil, fmt.Errorf("code scanning alerts of %s/%s: %w", owner, repo, err)
	}
	return mapCodeScanningAlerts(alerts), nil
}

func (c *Client) ListSecretScanningAlerts(ctx context.Context, owner, repo string) ([]domain.SecretScanningAlert, error) {
	alerts, resp, err := c.client.SecretScanning.ListAlertsForRepo(ctx, owner, repo, &gh.SecretScanningAlertListOptions{
		ListOptions: gh.ListOptions{PerPage: PerPage},
	})
	c.track(resp)
	if err != nil {
		return nil, fmt.Errorf("secret scanning alerts of %s/%s: %w", owner, repo, err)
	}
	return mapSecretScanningAlerts(alerts), nil
}

func (c *Client) ListDependabotAlerts(ctx context.Context, owner, repo string) ([]domain.DependabotAlert, error) {
	alerts, resp, err := c.client.Dependabot.ListRepoAlerts(ctx, owner, repo, &gh.ListAlertsOptions{
		ListOptions: gh.ListOptions{PerPage: PerPage},
	})
	c.track(resp)
	if err != nil {
		return nil, fmt.Errorf("dependabot alerts of %s/%s: %w", owner, repo, err)
	}
	return mapDependabotAlerts(alerts), nil
}

// GetFileContent returns the decoded content of a file. Directories and missing
// paths yield ErrFileNotFound.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	file, _, resp, err := c.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	c.track(resp)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%s in %s/%s: %w", path, owner, repo, ErrFileNotFound)
		}
		return "", fmt.Errorf("get %s in %s/%s: %w", path, owner, repo, err)
	}
	if file == nil {
		return "", fmt.Errorf("%s in %s/%s is not a file: %w", path, owner, repo, ErrFileNotFound)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode %s in %s/%s: %w", path, owner, repo, err)
	}
	return content, nil
}

func (c *Client) ListCollaborators(ctx context.Context, owner, repo string) ([]domain.Collaborator, error) {
	users, resp, err := c.client.Repositories.ListCollaborators(ctx, owner, repo, &gh.ListCollaboratorsOptions{
		ListOptions: gh.ListOptions{PerPage: PerPage},
	})
	c.track(resp)
	if err != nil {
		return nil, fmt.Errorf("collaborators of %s/%s: %w", owner, repo, err)
	}
	return mapCollaborators(users), nil
}

// CountCommitsSince counts the commits on the first page of the listing, so the
// result is capped at PerPage.
func (c *Client) CountCommitsSince(ctx context.Context, owner, repo string, since time.Time) (int, error) {
	commits, resp, err := c.client.Repositories.ListCommits(ctx, owner, repo, &gh.CommitsListOptions{
		Since:       since,
		ListOptions: gh.ListOptions{PerPage: PerPage},
	})
	c.track(resp)
	if err != nil {
		return 0, fmt.Errorf("commits of %s/%s: %w", owner, repo, err)
	}
	return len(commits), nil
}
