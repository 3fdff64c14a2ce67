package ownership

import (
	"strings"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

// Match reports whether an ownership pattern covers a finding path. Only four
// forms are understood: "*", an exact path, a "dir/*" prefix and a "dir/**" prefix.
func Match(pattern, path string) bool {
	switch {
	case pattern == "*":
		return true
	case pattern == path:
		return true
	case strings.HasSuffix(pattern, "/*"):
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, "*"))
	case strings.HasSuffix(pattern, "/**"):
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, "**"))
	}
	return false
}

// BestMatch picks the matching rule with the longest pattern. On equal length
// the earliest rule wins.
func BestMatch(rules []domain.OwnershipRule, path string) (*domain.OwnershipRule, bool) {
	var best *domain.OwnershipRule
	for i := range rules {
		if !Match(rules[i].Pattern, path) {
			continue
		}
		if best == nil || len(rules[i].Pattern) > len(best.Pattern) {
			best = &rules[i]
		}
	}
	return best, best != nil
}
