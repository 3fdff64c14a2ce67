package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

func NewStatusCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cache freshness and the last sync summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := env.Services.Reports.Status(cmd.Context(), env.Services.Controller.InProgress())
			if err != nil {
				return err
			}
			return env.Render(r)
		},
	}
}

func NewReposCmd(env *Env) *cobra.Command {
	var filter domain.RepositoryFilter
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List cached repositories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := env.Services.Reports.Repositories(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return env.Render(r)
		},
	}

	cmd.Flags().StringVar(&filter.Pod, "pod", "", "Only repositories of this pod")
	cmd.Flags().StringVar(&filter.EnvironmentType, "environment", "", "Only repositories of this environment type")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Case-insensitive match on name or description")

	return cmd
}

func NewTeamsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List cached teams",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := env.Services.Reports.Teams(cmd.Context())
			if err != nil {
				return err
			}
			return env.Render(r)
		},
	}
}

func NewFindingsCmd(env *Env) *cobra.Command {
	var (
		tool   string
		owner  string
		filter domain.FindingFilter
	)
	cmd := &cobra.Command{
		Use:   "findings",
		Short: "List cached security findings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Tool = domain.Tool(tool)
			filter.OwnerStatus = domain.OwnerStatus(owner)
			if err := filter.Validate(); err != nil {
				return err
			}
			r, err := env.Services.Reports.Findings(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return env.Render(r)
		},
	}

	cmd.Flags().StringVar(&filter.RepositoryName, "repository", "", "Only findings of this repository (owner/name)")
	cmd.Flags().StringVar(&tool, "tool", "", "code_scanning, secret_scanning or dependabot")
	cmd.Flags().StringVar(&filter.Severity, "severity", "", "Only findings with this severity")
	cmd.Flags().StringVar(&owner, "owner", "", "with-owner or without-owner")

	return cmd
}

func NewOwnersCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "owners <repository-id>",
		Short: "Show the cached ownership rules of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid repository id %q", args[0])
			}
			r, err := env.Services.Reports.Ownership(cmd.Context(), id)
			if err != nil {
				return err
			}
			return env.Render(r)
		},
	}
}

func NewComplianceCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "compliance",
		Short: "Show the compliance records of production repositories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := env.Services.Reports.Compliance(cmd.Context())
			if err != nil {
				return err
			}
			return env.Render(r)
		},
	}
}
