package domain

import (
	"fmt"
	"strings"
	"time"
)

type Tool string

const (
	ToolCodeScanning   Tool = "code_scanning"
	ToolSecretScanning Tool = "secret_scanning"
	ToolDependabot     Tool = "dependabot"
)

// Tools lists the scanning tools in the order they are fetched.
var Tools = []Tool{ToolCodeScanning, ToolSecretScanning, ToolDependabot}

func (t Tool) IDPrefix() string {
	switch t {
	case ToolCodeScanning:
		return "code"
	case ToolSecretScanning:
		return "secret"
	default:
		return string(t)
	}
}

func (t Tool) Valid() bool {
	switch t {
	case ToolCodeScanning, ToolSecretScanning, ToolDependabot:
		return true
	}
	return false
}

// FindingID builds the stable identifier of an alert, so re-fetching the same alert
// overwrites the cached record.
func FindingID(tool Tool, repositoryID int64, number int) string {
	return fmt.Sprintf("%s_%d_%d", tool.IDPrefix(), repositoryID, number)
}

type SecurityFinding struct {
	ID             string
	RepositoryID   int64
	RepositoryName string
	Tool           Tool
	Severity       string
	Title          string
	Description    string
	HTMLURL        string
	CreatedAt      time.Time
	DirectoryPath  string
	Owner          *string
	LastFetched    time.Time
}

func (f SecurityFinding) HasOwner() bool {
	return f.Owner != nil
}

type OwnerStatus string

const (
	OwnerStatusAny     OwnerStatus = ""
	OwnerStatusWith    OwnerStatus = "with-owner"
	OwnerStatusWithout OwnerStatus = "without-owner"
)

type FindingFilter struct {
	RepositoryName string
	Tool           Tool
	Severity       string
	OwnerStatus    OwnerStatus
}

func (f FindingFilter) Validate() error {
	if f.Tool != "" && !f.Tool.Valid() {
		return fmt.Errorf("unknown tool %q", f.Tool)
	}
	switch f.OwnerStatus {
	case OwnerStatusAny, OwnerStatusWith, OwnerStatusWithout:
		return nil
	default:
		return fmt.Errorf("unknown owner status %q", f.OwnerStatus)
	}
}

// Severity buckets the free-form severity strings reported by the scanning tools.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

// ParseSeverity maps a tool severity onto a bucket. Comparison is case-insensitive;
// critical counts as high and note counts as low.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low", "note":
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

type SeverityStats struct {
	High   int
	Medium int
	Low    int
}

// CodeScanningAlert, SecretScanningAlert and DependabotAlert carry the fields the
// fetchers consume from the three alert listings.
type CodeScanningAlert struct {
	Number      int
	Severity    string
	Description string
	Message     string
	HTMLURL     string
	CreatedAt   time.Time
	Path        string
}

type SecretScanningAlert struct {
	Number     int
	SecretType string
	HTMLURL    string
	CreatedAt  time.Time
}

type DependabotAlert struct {
	Number       int
	Severity     string
	Summary      string
	Description  string
	HTMLURL      string
	CreatedAt    time.Time
	ManifestPath string
}
