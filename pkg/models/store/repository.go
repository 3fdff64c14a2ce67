package store

import (
	"database/sql"
	"time"
)

type Repository struct {
	ID               int64          `db:"id"`
	Name             string         `db:"name"`
	FullName         string         `db:"full_name"`
	Description      sql.NullString `db:"description"`
	HTMLURL          string         `db:"html_url"`
	Pod              sql.NullString `db:"pod"`
	EnvironmentType  sql.NullString `db:"environment_type"`
	CustomProperties string         `db:"custom_properties"`
	LastFetched      time.Time      `db:"last_fetched"`
}

type RepositoryFilter struct {
	Pod             string
	EnvironmentType string
	Search          string
}

type Team struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Slug        string         `db:"slug"`
	Description sql.NullString `db:"description"`
	HTMLURL     string         `db:"html_url"`
	LastFetched time.Time      `db:"last_fetched"`
}
