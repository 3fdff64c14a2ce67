package store

import (
	"database/sql"
	"time"
)

type SecurityFinding struct {
	ID             string         `db:"id"`
	RepositoryID   int64          `db:"repository_id"`
	RepositoryName string         `db:"repository_name"`
	Tool           string         `db:"tool"`
	Severity       string         `db:"severity"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	HTMLURL        string         `db:"html_url"`
	CreatedAt      time.Time      `db:"created_at"`
	DirectoryPath  string         `db:"directory_path"`
	Owner          sql.NullString `db:"owner"`
	LastFetched    time.Time      `db:"last_fetched"`
}

type FindingFilter struct {
	RepositoryID   *int64
	RepositoryName string
	Tool           string
	Severity       string
	HasOwner       *bool
}

type OwnershipRule struct {
	RepositoryID   int64     `db:"repository_id"`
	RepositoryName string    `db:"repository_name"`
	Pattern        string    `db:"pattern"`
	Owner          string    `db:"owner"`
	LastFetched    time.Time `db:"last_fetched"`
}
