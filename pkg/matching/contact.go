package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/timberline/cedar/pkg/legacy"
	"github.com/timberline/cedar/pkg/models"
	"github.com/timberline/cedar/pkg/tracing"
)

// ContactMatcher handles the contact step: exact email/phone/fax checks per
// contact plus a combined name-and-reachability search that only warns.
type ContactMatcher struct {
	log     ectologger.Logger
	gateway legacy.Gateway
}

func NewContactMatcher(log ectologger.Logger, gateway legacy.Gateway) *ContactMatcher {
	return &ContactMatcher{log: log, gateway: gateway}
}

func (m *ContactMatcher) Kind() StepKind {
	return StepKindContact
}

func (m *ContactMatcher) Match(ctx context.Context, submission *models.Submission) error {
	ctx, span := tracing.StartSpan(ctx, "matching.ContactMatcher.Match")
	defer span.End()

	contacts := submission.Location.Contacts
	if len(contacts) == 0 {
		return NewInvalidRequestError("contact step requires at least one contact")
	}

	// Validate every contact before issuing any search.
	for i, contact := range contacts {
		if !contact.Valid() {
			return NewInvalidRequestError("contact [%d] is missing required fields", i)
		}
	}

	m.log.WithContext(ctx).WithFields(map[string]any{
		"step":          "contact",
		"contact_count": len(contacts),
	}).Debug("Matching contact submission")

	searches := make([]search, 0, len(contacts)*5)
	for i, contact := range contacts {
		contact.Index = i
		searches = append(searches, m.contactSearches(contact)...)
	}

	return runAll(ctx, searches)
}

func (m *ContactMatcher) contactSearches(contact models.Contact) []search {
	return []search{
		{
			field: contactField(contact.Index, "email"),
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldEmail, contact.Email)
			},
		},
		{
			field: contactField(contact.Index, "businessPhoneNumber"),
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldPhone, contact.BusinessPhoneNumber)
			},
		},
		{
			field: contactField(contact.Index, "secondaryPhoneNumber"),
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldPhone, contact.SecondaryPhoneNumber)
			},
		},
		{
			field: contactField(contact.Index, "faxNumber"),
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldPhone, contact.FaxNumber)
			},
		},
		{
			// A person with the same name and reachability is only a warning;
			// the same contact may serve several clients.
			field: contactField(contact.Index, "firstName"),
			fuzzy: true,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchContact(ctx, legacy.ContactQuery{
					FirstName:            contact.FirstName,
					LastName:             contact.LastName,
					Email:                contact.Email,
					BusinessPhoneNumber:  contact.BusinessPhoneNumber,
					SecondaryPhoneNumber: contact.SecondaryPhoneNumber,
					FaxNumber:            contact.FaxNumber,
				})
			},
		},
	}
}
