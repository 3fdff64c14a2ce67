package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "REPO_ATLAS"

type RedisSettings struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// Settings are the runtime knobs of the sync engine. Credentials live in the
// profile registry, not here.
type Settings struct {
	DbPath          string         `mapstructure:"db_path"`
	ProfilesPath    string         `mapstructure:"profiles_path"`
	Profile         string         `mapstructure:"profile"`
	StalenessWindow time.Duration  `mapstructure:"staleness_window"`
	FindingAge      time.Duration  `mapstructure:"finding_age"`
	CommitWindow    time.Duration  `mapstructure:"commit_window"`
	CommitRepoLimit int            `mapstructure:"commit_repo_limit"`
	Concurrency     int            `mapstructure:"concurrency"`
	Schedule        string         `mapstructure:"schedule"`
	Redis           RedisSettings  `mapstructure:"redis"`
	Server          ServerSettings `mapstructure:"server"`
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("db_path", "repo-atlas.db")
	v.SetDefault("profiles_path", filepath.Join(home, ".repo-atlas.cfg"))
	v.SetDefault("profile", "default")
	v.SetDefault("staleness_window", 24*time.Hour)
	v.SetDefault("finding_age", 30*24*time.Hour)
	v.SetDefault("commit_window", 30*24*time.Hour)
	v.SetDefault("commit_repo_limit", 5)
	v.SetDefault("concurrency", 4)
	v.SetDefault("schedule", "@every 1h")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
}

// LoadSettings reads settings from path, or from repo-atlas.yaml in the working
// directory when path is empty. A missing default file is not an error.
// REPO_ATLAS_* environment variables override file values.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("repo-atlas")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if settings.Concurrency < 1 {
		settings.Concurrency = 1
	}
	return &settings, nil
}
