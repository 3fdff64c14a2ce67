package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/repo-atlas/pkg/services/workflow"
)

type SyncCmd struct {
	env   *Env
	force bool
}

func NewSyncCmd(env *Env) *cobra.Command {
	sc := &SyncCmd{env: env}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the organization into the local cache and evaluate compliance",
		Long: "Runs a full sync: repositories, teams, security findings, ownership rules, " +
			"owner resolution, compliance and metrics. A fresh cache is left alone unless --force is set.",
		RunE: sc.run,
	}

	cmd.Flags().BoolVar(&sc.force, "force", false, "Sync even when the cache is fresh")

	return cmd
}

func (sc *SyncCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	ctrl := sc.env.Services.Controller

	if !sc.force {
		stale, err := ctrl.IsStale(ctx)
		if err != nil {
			return fmt.Errorf("failed to check cache freshness: %w", err)
		}
		if !stale {
			fmt.Fprintln(sc.env.Out, "Cache is fresh, nothing to do. Use --force to sync anyway.")
			return nil
		}
	}

	report, err := ctrl.RunFullSync(ctx)
	if errors.Is(err, workflow.ErrSyncInProgress) {
		return fmt.Errorf("another sync holds the lock: %w", err)
	}
	if report != nil {
		if renderErr := sc.env.Render(sc.env.Services.Reports.Sync(report)); renderErr != nil {
			return renderErr
		}
	}
	return err
}
