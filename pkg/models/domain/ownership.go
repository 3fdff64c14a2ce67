package domain

import "time"

// CandidateOwnershipPaths are tried in order; the first path holding a file wins.
var CandidateOwnershipPaths = []string{"CODEOWNERS", ".github/CODEOWNERS", "docs/CODEOWNERS"}

// OwnershipRule is one parsed line of a CODEOWNERS file. Rules are keyed by
// (RepositoryID, Pattern).
type OwnershipRule struct {
	RepositoryID   int64
	RepositoryName string
	Pattern        string
	Owner          string
	LastFetched    time.Time
}

type OwnershipFile struct {
	Path    string
	Content string
}
