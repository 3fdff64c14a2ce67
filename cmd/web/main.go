package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/repo-atlas/pkg/runtime/app"
	"github.com/de-tools/repo-atlas/pkg/server"
	"github.com/de-tools/repo-atlas/pkg/services/config"
	"github.com/de-tools/repo-atlas/pkg/services/scheduler"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Repo Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the settings file (default is ./repo-atlas.yaml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	a, err := app.New(ctx, settings, app.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close resources")
		}
	}()

	profiles, _ := a.Explorer.ListProfiles(ctx)
	for _, profile := range profiles {
		logger.Info().Msgf("Profile `%s` (%s) available", profile.Name, profile.Type)
	}

	if settings.Schedule != "" {
		sched := scheduler.New(a.Controller)
		if err := sched.Start(ctx, settings.Schedule); err != nil {
			return err
		}
		defer sched.Stop()
	}

	if settings.Server.Host == "" || settings.Server.Port == "" {
		return fmt.Errorf("missing server host or port")
	}

	web := server.NewWebAPI(server.Config{
		Addr: net.JoinHostPort(settings.Server.Host, settings.Server.Port),
		Dependencies: server.Dependencies{
			Explorer:   a.Explorer,
			Controller: a.Controller,
			Dashboard:  a.Summarizer,
			Rate:       a,
			Logger:     logger,
		},
	})
	return web.Start(ctx)
}
