package terminal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/repo-atlas/pkg/runtime/terminal/export"
)

// Factory builds the services behind the commands from a settings file path.
// The returned func releases them.
type Factory func(ctx context.Context, configPath string) (*commands.Services, func() error, error)

// CLI represents the command-line interface
type CLI struct {
	factory    Factory
	env        *commands.Env
	logOutput  io.Writer
	configPath string
	verbose    bool
	closer     func() error
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Factory Factory
	Output  io.Writer
	// LogOutput receives the structured logs, stderr by default.
	LogOutput io.Writer
}

func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	cli := &CLI{
		factory:   opts.Factory,
		logOutput: opts.LogOutput,
		env:       &commands.Env{Out: opts.Output},
	}
	cli.env.Render = cli.render

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.Run(context.Background(), os.Args[1:])
}

// Run executes the command line in args and releases the services afterwards.
func (cli *CLI) Run(ctx context.Context, args []string) error {
	defer cli.close()
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "repo-atlas",
		Short:             "GitHub organization inventory and compliance tool",
		SilenceUsage:      true,
		PersistentPreRunE: cli.setup,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetOut(cli.env.Out)

	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "",
		"Path to the settings file (default is ./repo-atlas.yaml)")
	cmd.PersistentFlags().StringVarP(&cli.env.Format, "format", "f", commands.FormatText,
		"Output format: text, table, json or yaml")
	cmd.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(commands.NewSyncCmd(cli.env))
	cmd.AddCommand(commands.NewStatusCmd(cli.env))
	cmd.AddCommand(commands.NewReposCmd(cli.env))
	cmd.AddCommand(commands.NewTeamsCmd(cli.env))
	cmd.AddCommand(commands.NewFindingsCmd(cli.env))
	cmd.AddCommand(commands.NewOwnersCmd(cli.env))
	cmd.AddCommand(commands.NewComplianceCmd(cli.env))
	cmd.AddCommand(commands.NewExportCmd(cli.env))

	return cmd
}

func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	level := zerolog.InfoLevel
	if cli.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cli.logOutput}).
		Level(level).
		With().
		Timestamp().
		Logger()
	ctx := logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	services, closer, err := cli.factory(ctx, cli.configPath)
	if err != nil {
		return err
	}
	cli.env.Services = services
	cli.closer = closer
	return nil
}

func (cli *CLI) render(r *domain.Report) error {
	switch cli.env.Format {
	case commands.FormatText:
		return NewReporter(cli.env.Out).Handle(r)
	case export.FormatPDF:
		return fmt.Errorf("pdf output is only available through export")
	}
	h, err := export.New(cli.env.Format, cli.env.Out)
	if err != nil {
		return err
	}
	return h.Handle(r)
}

func (cli *CLI) close() {
	if cli.closer == nil {
		return
	}
	if err := cli.closer(); err != nil {
		fmt.Fprintf(cli.logOutput, "failed to release resources: %v\n", err)
	}
	cli.closer = nil
}
