package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/timberline/cedar/pkg/legacy"
	"github.com/timberline/cedar/pkg/models"
	"github.com/timberline/cedar/pkg/tracing"
)

// LocationMatcher handles the address step: for every submitted address it
// checks email, phones, fax and the full address against the registry. All
// hits are hard stops; contact data already on file means the client likely
// exists.
type LocationMatcher struct {
	log     ectologger.Logger
	gateway legacy.Gateway
}

func NewLocationMatcher(log ectologger.Logger, gateway legacy.Gateway) *LocationMatcher {
	return &LocationMatcher{log: log, gateway: gateway}
}

func (m *LocationMatcher) Kind() StepKind {
	return StepKindLocation
}

func (m *LocationMatcher) Match(ctx context.Context, submission *models.Submission) error {
	ctx, span := tracing.StartSpan(ctx, "matching.LocationMatcher.Match")
	defer span.End()

	addresses := submission.Location.Addresses
	if len(addresses) == 0 {
		return NewInvalidRequestError("location step requires at least one address")
	}

	// Validate every address before issuing any search.
	for i, address := range addresses {
		if !address.Valid() {
			return NewInvalidRequestError("address [%d] is missing required fields", i)
		}
	}

	m.log.WithContext(ctx).WithFields(map[string]any{
		"step":          "location",
		"address_count": len(addresses),
	}).Debug("Matching location submission")

	searches := make([]search, 0, len(addresses)*5)
	for i, address := range addresses {
		address.Index = i
		searches = append(searches, m.addressSearches(address)...)
	}

	return runAll(ctx, searches)
}

func (m *LocationMatcher) addressSearches(address models.Address) []search {
	return []search{
		{
			field: addressField(address.Index, "emailAddress"),
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldEmail, address.EmailAddress)
			},
		},
		{
			field: addressField(address.Index, "businessPhoneNumber"),
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldPhone, address.BusinessPhoneNumber)
			},
		},
		{
			field: addressField(address.Index, "secondaryPhoneNumber"),
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldPhone, address.SecondaryPhoneNumber)
			},
		},
		{
			field: addressField(address.Index, "faxNumber"),
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchByField(ctx, registryFieldPhone, address.FaxNumber)
			},
		},
		{
			field: addressField(address.Index, "streetAddress"),
			fuzzy: false,
			run: func(ctx context.Context) ([]legacy.Client, error) {
				return m.gateway.SearchAddress(ctx, legacy.AddressQuery{
					StreetAddress: address.StreetAddress,
					City:          address.City,
					Province:      address.Province,
					PostalCode:    address.PostalCode,
					Country:       address.Country,
				})
			},
		},
	}
}
