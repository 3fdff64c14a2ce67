package github

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

// appJWTLifetime stays under the ten minute maximum GitHub accepts for app JWTs.
const appJWTLifetime = 9 * time.Minute

// httpClient builds an authenticated HTTP client for a profile: a static token
// for token profiles, or a refreshing installation token for app profiles.
func httpClient(ctx context.Context, cfg domain.SourceConfig) (*http.Client, error) {
	switch cfg.Type() {
	case domain.ProfileTypeApp:
		ts, err := newInstallationTokenSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, ts)), nil
	default:
		if cfg.Token == "" {
			return nil, fmt.Errorf("token is empty")
		}
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})), nil
	}
}

type installationTokenSource struct {
	ctx            context.Context
	appID          int64
	installationID int64
	signingKey     interface{}
	baseURL        string
	now            func() time.Time
}

func newInstallationTokenSource(ctx context.Context, cfg domain.SourceConfig) (*installationTokenSource, error) {
	pem, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read app private key: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parse app private key: %w", err)
	}

	return &installationTokenSource{
		ctx:            ctx,
		appID:          cfg.AppID,
		installationID: cfg.InstallationID,
		signingKey:     key,
		baseURL:        cfg.BaseURL,
		now:            time.Now,
	}, nil
}

// appJWT signs the short-lived token that authenticates as the app itself.
func (s *installationTokenSource) appJWT() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		// Backdated to tolerate clock drift between us and GitHub.
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
		Issuer:    fmt.Sprintf("%d", s.appID),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.signingKey)
}

func (s *installationTokenSource) Token() (*oauth2.Token, error) {
	signed, err := s.appJWT()
	if err != nil {
		return nil, fmt.Errorf("sign app jwt: %w", err)
	}

	appClient := gh.NewClient(oauth2.NewClient(s.ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: signed})))
	if s.baseURL != "" {
		if appClient, err = appClient.WithEnterpriseURLs(s.baseURL, s.baseURL); err != nil {
			return nil, fmt.Errorf("configure enterprise url: %w", err)
		}
	}

	token, _, err := appClient.Apps.CreateInstallationToken(s.ctx, s.installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("create installation token for %d: %w", s.installationID, err)
	}

	return &oauth2.Token{
		AccessToken: token.GetToken(),
		Expiry:      token.GetExpiresAt().Time,
	}, nil
}
