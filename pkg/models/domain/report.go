package domain

import "time"

// Report is a rendered-agnostic document handed to the terminal and file exporters.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Sections    []ReportSection
}

type ReportSection struct {
	Title   string
	Summary map[string]interface{}
	Details []ReportDetail
}

type ReportDetail struct {
	Name        string
	Value       interface{}
	Status      string
	Description string
}
