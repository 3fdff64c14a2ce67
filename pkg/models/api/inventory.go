package api

import "time"

type Repository struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	FullName         string            `json:"full_name"`
	Description      string            `json:"description,omitempty"`
	HTMLURL          string            `json:"html_url"`
	Pod              string            `json:"pod,omitempty"`
	EnvironmentType  string            `json:"environment_type,omitempty"`
	CustomProperties map[string]string `json:"custom_properties"`
	LastFetched      time.Time         `json:"last_fetched"`
}

type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	HTMLURL     string    `json:"html_url"`
	LastFetched time.Time `json:"last_fetched"`
}

type Finding struct {
	ID             string    `json:"id"`
	RepositoryID   int64     `json:"repository_id"`
	RepositoryName string    `json:"repository_name"`
	Tool           string    `json:"tool"`
	Severity       string    `json:"severity"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	HTMLURL        string    `json:"html_url"`
	CreatedAt      time.Time `json:"created_at"`
	DirectoryPath  string    `json:"directory_path"`
	Owner          *string   `json:"owner"`
	LastFetched    time.Time `json:"last_fetched"`
}

type OwnershipRule struct {
	Pattern string `json:"pattern"`
	Owner   string `json:"owner"`
}

type RepositoryOwnership struct {
	Repository Repository      `json:"repository"`
	Rules      []OwnershipRule `json:"rules"`
}

type ComplianceCheck struct {
	RepositoryID            int64     `json:"repository_id"`
	RepositoryName          string    `json:"repository_name"`
	ValidCodeowners         bool      `json:"valid_codeowners"`
	OldHighCriticalFindings bool      `json:"old_high_critical_findings"`
	DirectUserAccess        bool      `json:"direct_user_access"`
	AdminOwnerAccess        bool      `json:"admin_owner_access"`
	Compliant               bool      `json:"compliant"`
	LastChecked             time.Time `json:"last_checked"`
}

type Filters struct {
	Pods             []string `json:"pods"`
	EnvironmentTypes []string `json:"environment_types"`
}
