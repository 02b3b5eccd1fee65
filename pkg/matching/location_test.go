package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timberline/cedar/pkg/models"
)

func address(email string) models.Address {
	return models.Address{
		StreetAddress: "2975 Jutland Rd",
		City:          "Victoria",
		Province:      "BC",
		PostalCode:    "V8T5J9",
		Country:       "CA",
		EmailAddress:  email,
	}
}

func locationSubmission(addresses ...models.Address) *models.Submission {
	return &models.Submission{
		BusinessInformation: models.BusinessInformation{ClientType: models.ClientTypeCorporation},
		Location:            models.Location{Addresses: addresses},
	}
}

func TestLocationMatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("NoAddressesIsInvalidRequest", func(t *testing.T) {
		gateway := newMockGateway()
		matcher := NewLocationMatcher(testLogger(), gateway)

		err := matcher.Match(ctx, locationSubmission())
		assert.True(t, IsInvalidRequest(err))
		assert.Empty(t, gateway.calls)
	})

	t.Run("InvalidAddressRejectsBeforeAnySearch", func(t *testing.T) {
		gateway := newMockGateway()
		matcher := NewLocationMatcher(testLogger(), gateway)

		broken := address("mail@example.com")
		broken.PostalCode = ""

		err := matcher.Match(ctx, locationSubmission(address("a@example.com"), broken))
		assert.True(t, IsInvalidRequest(err))
		assert.Empty(t, gateway.calls)
	})

	t.Run("AllEmptyCompletesNormally", func(t *testing.T) {
		gateway := newMockGateway()
		matcher := NewLocationMatcher(testLogger(), gateway)

		err := matcher.Match(ctx, locationSubmission(address("a@example.com")))
		require.NoError(t, err)
	})

	t.Run("EmailMatchReportsIndexedField", func(t *testing.T) {
		gateway := newMockGateway()
		gateway.byField["email|first@example.com"] = clients("00000001")
		matcher := NewLocationMatcher(testLogger(), gateway)

		err := matcher.Match(ctx, locationSubmission(
			address("first@example.com"),
			address("second@example.com"),
		))
		conflict, ok := AsConflict(err)
		require.True(t, ok)
		require.Len(t, conflict.Matches, 1)
		assert.Equal(t, "location.addresses[0].emailAddress", conflict.Matches[0].Field)
		assert.Equal(t, "00000001", conflict.Matches[0].MatchingClients)
		assert.False(t, conflict.Matches[0].Fuzzy)
	})

	t.Run("PhoneMatchReportsPerAddressField", func(t *testing.T) {
		gateway := newMockGateway()
		gateway.byField["phone|2505551234"] = clients("00000002")

		second := address("second@example.com")
		second.BusinessPhoneNumber = "2505551234"

		matcher := NewLocationMatcher(testLogger(), gateway)
		err := matcher.Match(ctx, locationSubmission(address("first@example.com"), second))
		conflict, ok := AsConflict(err)
		require.True(t, ok)
		require.Len(t, conflict.Matches, 1)
		assert.Equal(t, "location.addresses[1].businessPhoneNumber", conflict.Matches[0].Field)
	})

	t.Run("FullAddressMatchReportsStreetAddress", func(t *testing.T) {
		gateway := newMockGateway()
		gateway.address = clients("00000005")
		matcher := NewLocationMatcher(testLogger(), gateway)

		err := matcher.Match(ctx, locationSubmission(address("a@example.com")))
		conflict, ok := AsConflict(err)
		require.True(t, ok)
		require.Len(t, conflict.Matches, 1)
		assert.Equal(t, "location.addresses[0].streetAddress", conflict.Matches[0].Field)
	})
}
