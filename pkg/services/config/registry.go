package config

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

// Registry reads GitHub credential profiles from an ini file, one section per profile:
//
//	[default]
//	token = ghp_...
//	org   = acme
//
//	[acme-app]
//	app_id           = 12345
//	installation_id  = 67890
//	private_key_path = ~/.config/repo-atlas/acme.pem
//	org              = acme
type Registry interface {
	GetProfiles(ctx context.Context) ([]domain.ConfigProfile, error)
	GetConfig(ctx context.Context, profile string) (*domain.SourceConfig, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load profiles from %s: %w", path, err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]domain.ConfigProfile, error) {
	var profiles []domain.ConfigProfile
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		profileType := domain.ProfileTypeToken
		if section.HasKey("app_id") {
			profileType = domain.ProfileTypeApp
		}
		profiles = append(profiles, domain.ConfigProfile{Name: section.Name(), Type: profileType})
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetConfig(_ context.Context, profile string) (*domain.SourceConfig, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	cfg := &domain.SourceConfig{
		Token:          strings.TrimSpace(section.Key("token").String()),
		Organization:   strings.TrimSpace(section.Key("org").String()),
		BaseURL:        strings.TrimSpace(section.Key("base_url").String()),
		PrivateKeyPath: strings.TrimSpace(section.Key("private_key_path").String()),
	}

	if section.HasKey("app_id") {
		if cfg.AppID, err = section.Key("app_id").Int64(); err != nil {
			return nil, fmt.Errorf("profile %s: invalid app_id: %w", profile, err)
		}
		if cfg.InstallationID, err = section.Key("installation_id").Int64(); err != nil {
			return nil, fmt.Errorf("profile %s: invalid installation_id: %w", profile, err)
		}
		if cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("profile %s: private_key_path is required for app profiles", profile)
		}
		return cfg, nil
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("profile %s: token is required", profile)
	}
	return cfg, nil
}
