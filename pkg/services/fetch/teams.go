package fetch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/adapters"
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/teams"
	"github.com/de-tools/repo-atlas/pkg/store/github"
)

const StageTeams = "teams"

type TeamFetcher struct {
	source github.Source
	store  teams.Store
	opts   Options
}

func NewTeamFetcher(source github.Source, store teams.Store, opts Options) *TeamFetcher {
	return &TeamFetcher{source: source, store: store, opts: opts.withDefaults()}
}

// Fetch lists the teams of the source organization. Any failure fails the fetch.
func (f *TeamFetcher) Fetch(ctx context.Context) ([]domain.Team, *domain.BatchReport, error) {
	report := domain.NewBatchReport(StageTeams)

	org := f.source.Organization()
	if org == "" {
		return nil, report, fmt.Errorf("organization is not configured")
	}

	list, err := f.source.ListTeams(ctx, org)
	if err != nil {
		return nil, report, err
	}

	now := f.opts.Now()
	rows := make([]store.Team, 0, len(list))
	for i := range list {
		list[i].LastFetched = now
		rows = append(rows, adapters.MapDomainTeamToStore(list[i]))
		report.OK(org, list[i].Slug)
	}
	report.Processed = len(list)

	if err := f.store.BulkPut(ctx, rows); err != nil {
		return nil, report, fmt.Errorf("store teams: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("stage", StageTeams).Str("org", org).Int("teams", len(list)).Msg("teams fetched")
	return list, report, nil
}
