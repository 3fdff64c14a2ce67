package ownership

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/repo-atlas/pkg/adapters"
	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/models/store"
	"github.com/de-tools/repo-atlas/pkg/store/duckdb/findings"
	ownershipstore "github.com/de-tools/repo-atlas/pkg/store/duckdb/ownership"
)

// Resolver derives the owner of every cached finding from the cached ownership rules.
type Resolver struct {
	findings findings.Store
	rules    ownershipstore.Store
}

func NewResolver(findingStore findings.Store, ruleStore ownershipstore.Store) *Resolver {
	return &Resolver{findings: findingStore, rules: ruleStore}
}

// AssignOwners sets the owner of each finding to the best matching rule of its
// repository. Findings without a match keep their current owner. Only changed
// owners are written, so a second run with the same tables updates nothing.
// It returns the number of findings updated.
func (r *Resolver) AssignOwners(ctx context.Context) (int, error) {
	logger := zerolog.Ctx(ctx)

	storeFindings, err := r.findings.List(ctx, store.FindingFilter{})
	if err != nil {
		return 0, fmt.Errorf("read findings: %w", err)
	}
	storeRules, err := r.rules.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("read ownership rules: %w", err)
	}

	byRepository := make(map[int64][]domain.OwnershipRule)
	for _, rule := range adapters.MapStoreOwnershipRulesToDomain(storeRules) {
		byRepository[rule.RepositoryID] = append(byRepository[rule.RepositoryID], rule)
	}

	updated := 0
	for _, finding := range adapters.MapStoreFindingsToDomain(storeFindings) {
		rules := byRepository[finding.RepositoryID]
		if len(rules) == 0 {
			continue
		}

		best, ok := BestMatch(rules, finding.DirectoryPath)
		if !ok {
			continue
		}
		if finding.Owner != nil && *finding.Owner == best.Owner {
			continue
		}

		if err := r.findings.UpdateOwner(ctx, finding.ID, best.Owner); err != nil {
			return updated, fmt.Errorf("assign owner of %s: %w", finding.ID, err)
		}
		updated++
	}

	logger.Info().
		Int("findings", len(storeFindings)).
		Int("updated", updated).
		Msg("owners assigned")
	return updated, nil
}
