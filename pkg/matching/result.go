package matching

import (
	"context"
	"sort"
	"strings"

	"github.com/timberline/cedar/pkg/legacy"
	"github.com/timberline/cedar/pkg/models"
)

// search is one gateway lookup a matcher issues: the submission field path it
// reports against, the severity flag stamped on any hit, and how to run it.
// The fuzzy flag is a per-call-site policy, deliberately independent of the
// search's own fuzziness (see the registered matcher).
type search struct {
	field string
	fuzzy bool
	run   func(ctx context.Context) ([]legacy.Client, error)
}

// fold reduces one search's candidates to at most one MatchResult. An empty
// candidate list contributes nothing; any hits are joined into a single
// comma-separated client number list.
func fold(field string, fuzzy bool, clients []legacy.Client) (models.MatchResult, bool) {
	numbers := make([]string, 0, len(clients))
	for _, client := range clients {
		if client.ClientNumber == "" {
			continue
		}
		numbers = append(numbers, client.ClientNumber)
	}

	joined := strings.Join(numbers, ",")
	if joined == "" {
		return models.MatchResult{}, false
	}

	return models.MatchResult{
		Field:           field,
		MatchingClients: joined,
		Fuzzy:           fuzzy,
	}, true
}

// reduce collapses all match results of one step into a single decision.
// Exact results sort before fuzzy ones (stable, so issue order breaks ties),
// then duplicates per field keep the first entry — an exact hit on a field
// always wins over a fuzzy hit reported for the same field. Any survivors
// mean the step fails with a ConflictError; none means the submission may
// proceed.
func reduce(results []models.MatchResult) error {
	if len(results) == 0 {
		return nil
	}

	sort.SliceStable(results, func(i, j int) bool {
		return !results[i].Fuzzy && results[j].Fuzzy
	})

	seen := make(map[string]struct{}, len(results))
	deduped := make([]models.MatchResult, 0, len(results))
	for _, result := range results {
		if _, ok := seen[result.Field]; ok {
			continue
		}
		seen[result.Field] = struct{}{}
		deduped = append(deduped, result)
	}

	return &ConflictError{Matches: deduped}
}

// runAll executes the searches in their declared order, folds each outcome,
// and reduces the whole set. Empty results are success and are suppressed;
// a transport failure from any search aborts the step unchanged — no
// partial/best-effort results.
func runAll(ctx context.Context, searches []search) error {
	results := make([]models.MatchResult, 0, len(searches))

	for _, s := range searches {
		clients, err := s.run(ctx)
		if err != nil {
			return err
		}
		if result, ok := fold(s.field, s.fuzzy, clients); ok {
			results = append(results, result)
		}
	}

	return reduce(results)
}
