package commands

import (
	"io"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/services/report"
	"github.com/de-tools/repo-atlas/pkg/services/workflow"
)

const FormatText = "text"

type Services struct {
	Controller workflow.Controller
	Reports    *report.Builder
}

// Env is shared by every command. The root command fills it before a
// subcommand runs.
type Env struct {
	Services *Services
	Out      io.Writer
	Format   string
	Render   func(r *domain.Report) error
}
