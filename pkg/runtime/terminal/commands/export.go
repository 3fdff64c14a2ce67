package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/repo-atlas/pkg/runtime/terminal/export"
)

type ExportCmd struct {
	env    *Env
	output string
}

func NewExportCmd(env *Env) *cobra.Command {
	ec := &ExportCmd{env: env}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full inventory report",
		Long:  "Writes every section in one document. --format selects table, json, yaml or pdf; text exports as json.",
		RunE:  ec.run,
	}

	cmd.Flags().StringVarP(&ec.output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	format := ec.env.Format
	if format == FormatText {
		format = export.FormatJSON
	}
	if format == export.FormatPDF && ec.output == "" {
		return fmt.Errorf("pdf export requires --output")
	}

	r, err := ec.env.Services.Reports.Full(cmd.Context())
	if err != nil {
		return err
	}

	var w io.Writer = ec.env.Out
	if ec.output != "" {
		f, err := os.Create(ec.output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", ec.output, err)
		}
		defer f.Close()
		w = f
	}

	exporter, err := export.New(format, w)
	if err != nil {
		return err
	}
	if err := exporter.Handle(r); err != nil {
		return err
	}

	if ec.output != "" {
		fmt.Fprintf(ec.env.Out, "Report written to %s\n", ec.output)
	}
	return nil
}
