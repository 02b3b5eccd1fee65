package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/timberline/cedar/pkg/legacy"
	"github.com/timberline/cedar/pkg/models"
	"github.com/timberline/cedar/pkg/tracing"
)

// FirstNationsMatcher handles First Nations bands and tribal councils:
// registration-style lookups scoped to First Nations client types, with the
// band number standing in for a registration number.
type FirstNationsMatcher struct {
	log     ectologger.Logger
	gateway legacy.Gateway
}

func NewFirstNationsMatcher(log ectologger.Logger, gateway legacy.Gateway) *FirstNationsMatcher {
	return &FirstNationsMatcher{log: log, gateway: gateway}
}

func (m *FirstNationsMatcher) Kind() StepKind {
	return StepKindFirstNations
}

// firstNationTypes scopes registry searches to First Nations entities.
var firstNationTypes = []string{
	models.ClientTypeFirstNationBand,
	models.ClientTypeFirstNationTribal,
}

func (m *FirstNationsMatcher) Match(ctx context.Context, submission *models.Submission) error {
	ctx, span := tracing.StartSpan(ctx, "matching.FirstNationsMatcher.Match")
	defer span.End()

	info := submission.BusinessInformation

	m.log.WithContext(ctx).WithFields(map[string]any{
		"step":        "first_nations",
		"client_type": info.ClientType,
	}).Debug("Matching first nations submission")

	searches := []search{
		{
			field: fieldBusinessName,
			fuzzy: true,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchFuzzy(ctx, fuzzyKindName, registryFieldClientName, info.BusinessName)
			},
		},
		{
			field: fieldBusinessName,
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByFilters(ctx, map[string][]string{
					registryFieldClientName: {info.BusinessName},
					registryFieldClientType: firstNationTypes,
				})
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
			// Band number collision is a hard stop.
			field: fieldRegistrationNumber,
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByFilters(ctx, map[string][]string{
					registryFieldRegistrationNumber: {info.RegistrationNumber},
					registryFieldClientType:         firstNationTypes,
				})
			},
		},
	}

	return runAll(ctx, searches)
}
