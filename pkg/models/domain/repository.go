package domain

import (
	"strings"
	"time"
)

const (
	PropertyPod             = "pod"
	PropertyEnvironmentType = "environmentType"

	EnvironmentProduction = "Production"
)

// CustomProperties holds the custom property values of a repository. Only pod and
// environmentType are interpreted; every other key is carried through untouched.
type CustomProperties map[string]string

func (p CustomProperties) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p[key]
	return v, ok
}

func (p CustomProperties) Pod() string {
	v, _ := p.Get(PropertyPod)
	return v
}

func (p CustomProperties) EnvironmentType() string {
	v, _ := p.Get(PropertyEnvironmentType)
	return v
}

type Repository struct {
	ID               int64
	Name             string
	FullName         string
	Description      string
	HTMLURL          string
	CustomProperties CustomProperties
	LastFetched      time.Time
}

// IsProduction reports whether environmentType is exactly "Production".
func (r Repository) IsProduction() bool {
	return r.CustomProperties.EnvironmentType() == EnvironmentProduction
}

// OwnerAndName splits the full name into the owner login and the repository name.
func (r Repository) OwnerAndName() (string, string) {
	owner, name, found := strings.Cut(r.FullName, "/")
	if !found {
		return "", r.FullName
	}
	return owner, name
}

// RemoteRepository is a repository as listed by the remote source, before custom
// properties are attached.
type RemoteRepository struct {
	ID          int64
	Owner       string
	Name        string
	FullName    string
	Description string
	HTMLURL     string
}

type RepositoryFilter struct {
	Pod             string
	EnvironmentType string
	Search          string
}
