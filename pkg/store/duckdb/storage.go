package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/marcboeker/go-duckdb/v2"
)

const DriverName = "duckdb"

const RepositoriesSchema = `
	CREATE TABLE IF NOT EXISTS repositories (
		id BIGINT PRIMARY KEY,
		name VARCHAR NOT NULL,
		full_name VARCHAR NOT NULL,
		description VARCHAR,
		html_url VARCHAR NOT NULL,
		pod VARCHAR,
		environment_type VARCHAR,
		custom_properties VARCHAR NOT NULL DEFAULT '{}',
		last_fetched TIMESTAMP NOT NULL
	);
`

const TeamsSchema = `
	CREATE TABLE IF NOT EXISTS teams (
		id BIGINT PRIMARY KEY,
		name VARCHAR NOT NULL,
		slug VARCHAR NOT NULL,
		description VARCHAR,
		html_url VARCHAR NOT NULL,
		last_fetched TIMESTAMP NOT NULL
	);
`

const SecurityFindingsSchema = `
	CREATE TABLE IF NOT EXISTS security_findings (
		id VARCHAR PRIMARY KEY,
		repository_id BIGINT NOT NULL,
		repository_name VARCHAR NOT NULL,
		tool VARCHAR NOT NULL,
		severity VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		description VARCHAR NOT NULL,
		html_url VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL,
		directory_path VARCHAR NOT NULL,
		owner VARCHAR,
		last_fetched TIMESTAMP NOT NULL
	);
`

// OwnershipRulesSchema has no primary key: the (repository_id, pattern) key is kept
// unique by replacing a repository's rule set as a whole inside one transaction.
const OwnershipRulesSchema = `
	CREATE TABLE IF NOT EXISTS ownership_rules (
		repository_id BIGINT NOT NULL,
		repository_name VARCHAR NOT NULL,
		pattern VARCHAR NOT NULL,
		owner VARCHAR NOT NULL,
		last_fetched TIMESTAMP NOT NULL
	);
`

const ComplianceChecksSchema = `
	CREATE TABLE IF NOT EXISTS compliance_checks (
		repository_id BIGINT PRIMARY KEY,
		repository_name VARCHAR NOT NULL,
		valid_codeowners BOOLEAN NOT NULL,
		old_high_critical_findings BOOLEAN NOT NULL,
		direct_user_access BOOLEAN NOT NULL,
		admin_owner_access BOOLEAN NOT NULL,
		last_checked TIMESTAMP NOT NULL
	);
`

const MetricsSummarySchema = `
	CREATE TABLE IF NOT EXISTS metrics_summary (
		id INTEGER PRIMARY KEY,
		repository_count INTEGER NOT NULL,
		team_count INTEGER NOT NULL,
		commit_count INTEGER NOT NULL,
		last_fetched TIMESTAMP NOT NULL
	);
`

var bootQueries = []string{
	RepositoriesSchema,
	TeamsSchema,
	SecurityFindingsSchema,
	OwnershipRulesSchema,
	ComplianceChecksSchema,
	MetricsSummarySchema,
}

type Settings struct {
	DbPath string
}

func init() {
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

func NewDB(settings Settings) (*sqlx.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return sqlx.NewDb(db, DriverName), nil
}
