package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/timberline/cedar/pkg/legacy"
	"github.com/timberline/cedar/pkg/models"
	"github.com/timberline/cedar/pkg/tracing"
)

// RegisteredMatcher handles incorporated/registered entities, including
// registered sole proprietorships. It is the richest matcher: registration
// number, client name, acronym and doing-business-as lookups, plus an
// identity search for registered sole proprietors.
//
// The fuzzy flag on each search is a severity policy, not a description of
// the lookup: registration number, full name, acronym and full DBA hits stop
// the submission outright, while the fuzzy name/DBA lookups only raise
// warnings.
type RegisteredMatcher struct {
	log     ectologger.Logger
	gateway legacy.Gateway
}

func NewRegisteredMatcher(log ectologger.Logger, gateway legacy.Gateway) *RegisteredMatcher {
	return &RegisteredMatcher{log: log, gateway: gateway}
}

func (m *RegisteredMatcher) Kind() StepKind {
	return StepKindRegistered
}

func (m *RegisteredMatcher) Match(ctx context.Context, submission *models.Submission) error {
	ctx, span := tracing.StartSpan(ctx, "matching.RegisteredMatcher.Match")
	defer span.End()

	info := submission.BusinessInformation

	m.log.WithContext(ctx).WithFields(map[string]any{
		"step":        "registered",
		"client_type": info.ClientType,
	}).Debug("Matching registered submission")

	searches := []search{
		{
			// Same incorporation on file is a hard stop.
			field: fieldRegistrationNumber,
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldRegistrationNumber, info.RegistrationNumber)
			},
		},
		{
			// Similar names only warn; companies may legitimately resemble
			// each other.
			field: fieldBusinessName,
			fuzzy: true,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchFuzzy(ctx, fuzzyKindName, registryFieldClientName, info.BusinessName)
			},
		},
		{
			// Identical name is a hard stop.
			field: fieldBusinessName,
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldClientName, info.BusinessName)
			},
		},
		{
			field: fieldAcronym,
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldAcronym, info.Acronym)
			},
		},
		{
			field: fieldDoingBusinessAs,
			fuzzy: true,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchFuzzy(ctx, fuzzyKindDBA, registryFieldDoingBusinessAs, info.DoingBusinessAs)
			},
		},
		{
			field: fieldDoingBusinessAs,
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldDoingBusinessAs, info.DoingBusinessAs)
			},
		},
	}

	// A registered sole proprietor is also a person; look for the owner in
	// the registry when enough identity data is present.
	if info.ClientType == models.ClientTypeRegisteredSoleProp &&
		!legacy.AnyBlank(info.FirstName, info.LastName, info.Birthdate) {
		searches = append(searches, search{
			field: fieldBusinessName,
			fuzzy: true,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchIndividual(ctx, info.FirstName, info.LastName, info.Birthdate, nil)
			},
		})
	}

	return runAll(ctx, searches)
}
