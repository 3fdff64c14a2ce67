package domain

import "time"

const MetricsSummaryID = 1

type MetricsSummary struct {
	RepositoryCount int
	TeamCount       int
	CommitCount     int
	LastFetched     time.Time
}

type Dashboard struct {
	Summary    *MetricsSummary
	Stale      bool
	Severity   SeverityStats
	Compliance ComplianceStats
}

type RateUsage struct {
	Limit     int
	Remaining int
	Reset     time.Time
}
