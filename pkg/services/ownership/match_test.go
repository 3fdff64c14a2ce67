package ownership

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*", "src/foo.go", true},
		{"*", "", true},
		{"src/*", "src/foo.go", true},
		{"src/*", "src/nested/foo.go", true},
		{"src/*", "lib/foo.go", false},
		{"src/**", "src/a/b.go", true},
		{"src/**", "srcs/a.go", false},
		{"src/foo.go", "src/foo.go", true},
		{"src/foo.go", "src/foo.go.bak", false},
		{"src/foo.go", "lib/src/foo.go", false},
		{"*.md", "README.md", false},
		{"/docs/", "docs/guide.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.pattern, tt.path))
		})
	}
}

func TestBestMatch(t *testing.T) {
	rules := []domain.OwnershipRule{
		{Pattern: "*", Owner: "@acme/core"},
		{Pattern: "src/*", Owner: "@acme/src"},
		{Pattern: "src/api/*", Owner: "@acme/api"},
		{Pattern: "lib/*", Owner: "@acme/lib"},
		{Pattern: "src/db/*", Owner: "@acme/db"},
		{Pattern: "src/ui/*", Owner: "@acme/ui"},
	}

	tests := []struct {
		name  string
		path  string
		owner string
		found bool
	}{
		{name: "longest pattern wins", path: "src/api/handler.go", owner: "@acme/api"},
		{name: "falls back to directory", path: "src/main.go", owner: "@acme/src"},
		{name: "catch-all", path: "Makefile", owner: "@acme/core"},
		{name: "sibling directory", path: "src/db/x.go", owner: "@acme/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, ok := BestMatch(rules, tt.path)
			assert.True(t, ok)
			assert.Equal(t, tt.owner, best.Owner)
		})
	}

	_, ok := BestMatch(rules[1:2], "lib/x.go")
	assert.False(t, ok)

	_, ok = BestMatch(nil, "anything")
	assert.False(t, ok)
}

func TestBestMatch_LongerGlobThenFirstOnTie(t *testing.T) {
	rules := []domain.OwnershipRule{
		{Pattern: "a/*", Owner: "@first"},
		{Pattern: "a/**", Owner: "@second"},
		{Pattern: "b/**", Owner: "@third"},
	}
	best, ok := BestMatch(rules, "a/b/c")
	assert.True(t, ok)
	assert.Equal(t, "@second", best.Owner)

	rules = []domain.OwnershipRule{
		{Pattern: "x/**", Owner: "@one"},
		{Pattern: "x/y/", Owner: "@two"},
	}
	best, ok = BestMatch(rules, "x/y/")
	assert.True(t, ok)
	assert.Equal(t, "@one", best.Owner)
}
