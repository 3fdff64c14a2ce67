package ownership

import (
	"context"
	"errors"
	"strings"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/store/github"
)

// ErrNoOwnershipFile is returned by Locate when none of the candidate paths holds a file.
var ErrNoOwnershipFile = errors.New("no ownership file")

// FileReader is the part of the remote source needed to read ownership files.
type FileReader interface {
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
}

var _ FileReader = (github.Source)(nil)

// Locate returns the first candidate ownership file that exists. A path that
// fails for any reason is treated as absent and the next one is tried.
func Locate(ctx context.Context, reader FileReader, owner, repo string) (*domain.OwnershipFile, error) {
	for _, path := range domain.CandidateOwnershipPaths {
		content, err := reader.GetFileContent(ctx, owner, repo, path)
		if err != nil {
			continue
		}
		return &domain.OwnershipFile{Path: path, Content: content}, nil
	}
	return nil, ErrNoOwnershipFile
}

// Rule is a parsed ownership line: a pattern and its owners joined with a single space.
type Rule struct {
	Pattern string
	Owner   string
}

// Parse reads CODEOWNERS content. Blank lines, comment lines and lines without
// owners are dropped. When a pattern repeats, the last line wins but keeps the
// position of the first occurrence.
func Parse(content string) []Rule {
	var rules []Rule
	index := make(map[string]int)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		rule := Rule{Pattern: fields[0], Owner: strings.Join(fields[1:], " ")}
		if i, ok := index[rule.Pattern]; ok {
			rules[i] = rule
			continue
		}
		index[rule.Pattern] = len(rules)
		rules = append(rules, rule)
	}
	return rules
}

// HasCatchAll reports whether the content contains a "*" character anywhere.
func HasCatchAll(content string) bool {
	return strings.Contains(content, "*")
}
