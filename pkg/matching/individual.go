package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/timberline/cedar/pkg/legacy"
	"github.com/timberline/cedar/pkg/models"
	"github.com/timberline/cedar/pkg/tracing"
)

// IndividualMatcher handles new individuals without a registration: identity
// searches by name and birthdate plus a document lookup by identification.
type IndividualMatcher struct {
	log     ectologger.Logger
	gateway legacy.Gateway
}

func NewIndividualMatcher(log ectologger.Logger, gateway legacy.Gateway) *IndividualMatcher {
	return &IndividualMatcher{log: log, gateway: gateway}
}

func (m *IndividualMatcher) Kind() StepKind {
	return StepKindIndividual
}

func (m *IndividualMatcher) Match(ctx context.Context, submission *models.Submission) error {
	ctx, span := tracing.StartSpan(ctx, "matching.IndividualMatcher.Match")
	defer span.End()

	info := submission.BusinessInformation

	m.log.WithContext(ctx).WithFields(map[string]any{
		"step":    "individual",
		"id_type": info.IdentificationType,
	}).Debug("Matching individual submission")

	searches := []search{
		{
			// Broad identity search without the document; hits are warnings.
			field: fieldBusinessName,
			fuzzy: true,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchIndividual(ctx, info.FirstName, info.LastName, info.Birthdate, nil)
			},
		},
	}

	if !legacy.Blank(info.ClientIdentification) {
		identification := info.ClientIdentification
		searches = append(searches, search{
			// Identity narrowed by the document; an exact person hit.
			field: fieldBusinessName,
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchIndividual(ctx, info.FirstName, info.LastName, info.Birthdate, &identification)
			},
		})
	}

	searches = append(searches, search{
		field: fieldIdentification,
		fuzzy: false,
		run: func(ctx context.Context) ([]legacy.Client, error) {
			return m.gateway.SearchDocument(ctx, info.IdentificationType, info.ClientIdentification)
		},
	})

	return runAll(ctx, searches)
}
