package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timberline/cedar/pkg/models"
)

func firstNationSubmission() *models.Submission {
	return &models.Submission{
		BusinessInformation: models.BusinessInformation{
			ClientType:         models.ClientTypeFirstNationBand,
			BusinessName:       "Squamish Nation",
			RegistrationNumber: "555",
			Acronym:            "SQN",
		},
	}
}

func TestFirstNationsMatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("AllSearchesEmptyCompletesNormally", func(t *testing.T) {
		gateway := newMockGateway()
		matcher := NewFirstNationsMatcher(testLogger(), gateway)

		require.NoError(t, matcher.Match(ctx, firstNationSubmission()))
		assert.Len(t, gateway.calls, 4)
	})

	t.Run("NameMatchIsScopedToFirstNationTypes", func(t *testing.T) {
		gateway := newMockGateway()
		gateway.byFilters["clientName=Squamish Nation|clientType=B+T"] = clients("00000001")
		matcher := NewFirstNationsMatcher(testLogger(), gateway)

		err := matcher.Match(ctx, firstNationSubmission())
		conflict, ok := AsConflict(err)
		require.True(t, ok)
		require.Len(t, conflict.Matches, 1)
		assert.Equal(t, "businessInformation.businessName", conflict.Matches[0].Field)
		assert.False(t, conflict.Matches[0].Fuzzy)
	})

	t.Run("BandNumberMatchIsHardStop", func(t *testing.T) {
		gateway := newMockGateway()
		gateway.byFilters["clientType=B+T|registrationNumber=555"] = clients("00000002", "00000003")
		matcher := NewFirstNationsMatcher(testLogger(), gateway)

		err := matcher.Match(ctx, firstNationSubmission())
		conflict, ok := AsConflict(err)
		require.True(t, ok)
		require.Len(t, conflict.Matches, 1)
		assert.Equal(t, "businessInformation.registrationNumber", conflict.Matches[0].Field)
		assert.Equal(t, "00000002,00000003", conflict.Matches[0].MatchingClients)
		assert.False(t, conflict.Matches[0].Fuzzy)
	})

	t.Run("FuzzyNameMatchIsWarning", func(t *testing.T) {
		gateway := newMockGateway()
		gateway.fuzzy["name|clientName|Squamish Nation"] = clients("00000004")
		matcher := NewFirstNationsMatcher(testLogger(), gateway)

		err := matcher.Match(ctx, firstNationSubmission())
		conflict, ok := AsConflict(err)
		require.True(t, ok)
		require.Len(t, conflict.Matches, 1)
		assert.True(t, conflict.Matches[0].Fuzzy)
	})

	t.Run("BlankFieldsIssueNoSearches", func(t *testing.T) {
		gateway := newMockGateway()
		matcher := NewFirstNationsMatcher(testLogger(), gateway)

		submission := &models.Submission{
			BusinessInformation: models.BusinessInformation{ClientType: models.ClientTypeFirstNationTribal},
		}
		require.NoError(t, matcher.Match(ctx, submission))
		assert.Empty(t, gateway.calls)
	})
}
