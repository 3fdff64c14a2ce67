package api

import "time"

type MetricsSummary struct {
	RepositoryCount int       `json:"repository_count"`
	TeamCount       int       `json:"team_count"`
	CommitCount     int       `json:"commit_count"`
	LastFetched     time.Time `json:"last_fetched"`
}

type RateUsage struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

type Status struct {
	Stale      bool            `json:"stale"`
	InProgress bool            `json:"in_progress"`
	Summary    *MetricsSummary `json:"summary"`
	Rate       *RateUsage      `json:"rate,omitempty"`
}

type ItemResult struct {
	Repository string `json:"repository,omitempty"`
	Item       string `json:"item"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}

type StageReport struct {
	Name       string       `json:"name"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Processed  int          `json:"processed"`
	Skipped    []ItemResult `json:"skipped"`
	Error      *string      `json:"error,omitempty"`
}

type SyncReport struct {
	ID         string        `json:"id"`
	Status     string        `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stages     []StageReport `json:"stages"`
	Error      *string       `json:"error,omitempty"`
}

type SyncAccepted struct {
	Status string `json:"status"`
}

type SeverityStats struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type ComplianceStats struct {
	Compliant    int `json:"compliant"`
	NonCompliant int `json:"non_compliant"`
}

type Dashboard struct {
	Summary    *MetricsSummary `json:"summary"`
	Stale      bool            `json:"stale"`
	Severity   SeverityStats   `json:"severity"`
	Compliance ComplianceStats `json:"compliance"`
}

type Error struct {
	Error string `json:"error"`
}
