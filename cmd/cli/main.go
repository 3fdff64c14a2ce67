package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/repo-atlas/pkg/runtime/app"
	"github.com/de-tools/repo-atlas/pkg/runtime/terminal"
	"github.com/de-tools/repo-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/repo-atlas/pkg/services/config"
	"github.com/de-tools/repo-atlas/pkg/services/report"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Factory: newServices,
		Output:  os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newServices(ctx context.Context, configPath string) (*commands.Services, func() error, error) {
	settings, err := config.LoadSettings(configPath)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(ctx, settings, app.Options{})
	if err != nil {
		return nil, nil, err
	}

	return &commands.Services{
		Controller: a.Controller,
		Reports:    report.NewBuilder(a.Explorer, a.Summarizer, nil),
	}, a.Close, nil
}
