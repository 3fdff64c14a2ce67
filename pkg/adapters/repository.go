package adapters

import (
	"database/sql"
	"encoding/json"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
)

func MapDomainRepositoryToStore(r domain.Repository) (store.Repository, error) {
	props := r.CustomProperties
	if props == nil {
		props = domain.CustomProperties{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return store.Repository{}, err
	}

	return store.Repository{
		ID:               r.ID,
		Name:             r.Name,
		FullName:         r.FullName,
		Description:      optionalString(r.Description),
		HTMLURL:          r.HTMLURL,
		Pod:              optionalString(props.Pod()),
		EnvironmentType:  optionalString(props.EnvironmentType()),
		CustomProperties: string(raw),
		LastFetched:      r.LastFetched,
	}, nil
}

func MapStoreRepositoryToDomain(r store.Repository) domain.Repository {
	props := domain.CustomProperties{}
	if r.CustomProperties != "" {
		_ = json.Unmarshal([]byte(r.CustomProperties), &props)
	}
	// the denormalized columns win if the JSON blob was written by an older version
	if r.Pod.Valid {
		props[domain.PropertyPod] = r.Pod.String
	}
	if r.EnvironmentType.Valid {
		props[domain.PropertyEnvironmentType] = r.EnvironmentType.String
	}

	return domain.Repository{
		ID:               r.ID,
		Name:             r.Name,
		FullName:         r.FullName,
		Description:      derefString(r.Description),
		HTMLURL:          r.HTMLURL,
		CustomProperties: props,
		LastFetched:      r.LastFetched,
	}
}

func MapStoreRepositoriesToDomain(rows []store.Repository) []domain.Repository {
	res := make([]domain.Repository, 0, len(rows))
	for _, r := range rows {
		res = append(res, MapStoreRepositoryToDomain(r))
	}
	return res
}

func MapDomainRepositoryFilterToStore(f domain.RepositoryFilter) store.RepositoryFilter {
	return store.RepositoryFilter{
		Pod:             f.Pod,
		EnvironmentType: f.EnvironmentType,
		Search:          f.Search,
	}
}

func MapDomainTeamToStore(t domain.Team) store.Team {
	return store.Team{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: optionalString(t.Description),
		HTMLURL:     t.HTMLURL,
		LastFetched: t.LastFetched,
	}
}

func MapStoreTeamToDomain(t store.Team) domain.Team {
	return domain.Team{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: derefString(t.Description),
		HTMLURL:     t.HTMLURL,
		LastFetched: t.LastFetched,
	}
}

// optionalString stores the empty string as NULL.
func optionalString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func derefString(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func pointerString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
