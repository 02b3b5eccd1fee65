package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/timberline/cedar/pkg/legacy"
	"github.com/timberline/cedar/pkg/models"
	"github.com/timberline/cedar/pkg/tracing"
)

// OthersMatcher handles generic non-registered entities: government bodies,
// forest agencies and unregistered companies. Names and acronyms are the only
// usable match keys for these.
type OthersMatcher struct {
	log     ectologger.Logger
	gateway legacy.Gateway
}

func NewOthersMatcher(log ectologger.Logger, gateway legacy.Gateway) *OthersMatcher {
	return &OthersMatcher{log: log, gateway: gateway}
}

func (m *OthersMatcher) Kind() StepKind {
	return StepKindOthers
}

func (m *OthersMatcher) Match(ctx context.Context, submission *models.Submission) error {
	ctx, span := tracing.StartSpan(ctx, "matching.OthersMatcher.Match")
	defer span.End()

	info := submission.BusinessInformation

	m.log.WithContext(ctx).WithFields(map[string]any{
		"step":        "others",
		"client_type": info.ClientType,
	}).Debug("Matching other-entity submission")

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
	}

	return runAll(ctx, searches)
}
