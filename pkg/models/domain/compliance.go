package domain

import "time"

type ComplianceCheck struct {
	RepositoryID            int64
	RepositoryName          string
	ValidCodeowners         bool
	OldHighCriticalFindings bool
	DirectUserAccess        bool
	AdminOwnerAccess        bool
	LastChecked             time.Time
}

// Compliant is true when the ownership file is valid and none of the three risk facets is set.
func (c ComplianceCheck) Compliant() bool {
	return c.ValidCodeowners &&
		!c.OldHighCriticalFindings &&
		!c.DirectUserAccess &&
		!c.AdminOwnerAccess
}

type ComplianceStats struct {
	Compliant    int
	NonCompliant int
}

type Collaborator struct {
	Login       string
	Permissions map[string]bool
}

// HasElevatedAccess reports admin or maintain permission.
func (c Collaborator) HasElevatedAccess() bool {
	return c.Permissions["admin"] || c.Permissions["maintain"]
}
