package store

import "time"

type ComplianceCheck struct {
	RepositoryID            int64     `db:"repository_id"`
	RepositoryName          string    `db:"repository_name"`
	ValidCodeowners         bool      `db:"valid_codeowners"`
	OldHighCriticalFindings bool      `db:"old_high_critical_findings"`
	DirectUserAccess        bool      `db:"direct_user_access"`
	AdminOwnerAccess        bool      `db:"admin_owner_access"`
	LastChecked             time.Time `db:"last_checked"`
}

type MetricsSummary struct {
	ID              int       `db:"id"`
	RepositoryCount int       `db:"repository_count"`
	TeamCount       int       `db:"team_count"`
	CommitCount     int       `db:"commit_count"`
	LastFetched     time.Time `db:"last_fetched"`
}
