package github

import (
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

func mapRepositories(repos []*gh.Repository) []domain.RemoteRepository {
	res := make([]domain.RemoteRepository, 0, len(repos))
	for _, r := range repos {
		res = append(res, domain.RemoteRepository{
			ID:          r.GetID(),
			Owner:       r.GetOwner().GetLogin(),
			Name:        r.GetName(),
			FullName:    r.GetFullName(),
			Description: r.GetDescription(),
			HTMLURL:     r.GetHTMLURL(),
		})
	}
	return res
}

// mapCustomProperties flattens property values to strings. Multi-select values
// are joined with a comma and unset values are dropped.
func mapCustomProperties(values []*gh.CustomPropertyValue) domain.CustomProperties {
	props := make(domain.CustomProperties, len(values))
	for _, v := range values {
		if v == nil || v.Value == nil {
			continue
		}
		switch value := v.Value.(type) {
		case string:
			props[v.PropertyName] = value
		case []string:
			props[v.PropertyName] = strings.Join(value, ",")
		case []interface{}:
			parts := make([]string, 0, len(value))
			for _, item := range value {
				parts = append(parts, fmt.Sprint(item))
			}
			props[v.PropertyName] = strings.Join(parts, ",")
		default:
			props[v.PropertyName] = fmt.Sprint(value)
		}
	}
	return props
}

func mapTeams(teams []*gh.Team) []domain.Team {
	res := make([]domain.Team, 0, len(teams))
	for _, t := range teams {
		res = append(res, domain.Team{
			ID:          t.GetID(),
			Name:        t.GetName(),
			Slug:        t.GetSlug(),
			Description: t.GetDescription(),
			HTMLURL:     t.GetHTMLURL(),
		})
	}
	return res
}

func mapCodeScanningAlerts(alerts []*gh.Alert) []domain.CodeScanningAlert {
	res := make([]domain.CodeScanningAlert, 0, len(alerts))
	for _, a := range alerts {
		instance := a.GetMostRecentInstance()
		res = append(res, domain.CodeScanningAlert{
			Number:      a.GetNumber(),
			Severity:    a.GetRule().GetSeverity(),
			Description: a.GetRule().GetDescription(),
			Message:     instance.GetMessage().GetText(),
			HTMLURL:     a.GetHTMLURL(),
			CreatedAt:   a.GetCreatedAt().Time,
			Path:        instance.GetLocation().GetPath(),
		})
	}
	return res
}

func mapSecretScanningAlerts(alerts []*gh.SecretScanningAlert) []domain.SecretScanningAlert {
	res := make([]domain.SecretScanningAlert, 0, len(alerts))
	for _, a := range alerts {
		res = append(res, domain.SecretScanningAlert{
			Number:     a.GetNumber(),
			SecretType: a.GetSecretType(),
			HTMLURL:    a.GetHTMLURL(),
			CreatedAt:  a.GetCreatedAt().Time,
		})
	}
	return res
}

func mapDependabotAlerts(alerts []*gh.DependabotAlert) []domain.DependabotAlert {
	res := make([]domain.DependabotAlert, 0, len(alerts))
	for _, a := range alerts {
		advisory := a.GetSecurityAdvisory()
		res = append(res, domain.DependabotAlert{
			Number:       a.GetNumber(),
			Severity:     advisory.GetSeverity(),
			Summary:      advisory.GetSummary(),
			Description:  advisory.GetDescription(),
			HTMLURL:      a.GetHTMLURL(),
			CreatedAt:    a.GetCreatedAt().Time,
			ManifestPath: a.GetDependency().GetManifestPath(),
		})
	}
	return res
}

func mapCollaborators(users []*gh.User) []domain.Collaborator {
	res := make([]domain.Collaborator, 0, len(users))
	for _, u := range users {
		permissions := make(map[string]bool, len(u.Permissions))
		for k, v := range u.Permissions {
			permissions[k] = v
		}
		res = append(res, domain.Collaborator{Login: u.GetLogin(), Permissions: permissions})
	}
	return res
}
