package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timberline/cedar/pkg/legacy"
	"github.com/timberline/cedar/pkg/models"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		clients  []legacy.Client
		expected string
		ok       bool
	}{
		{
			name:    "empty stream contributes nothing",
			clients: nil,
			ok:      false,
		},
		{
			name:     "single candidate",
			clients:  clients("00000001"),
			expected: "00000001",
			ok:       true,
		},
		{
			name:     "multiple candidates are comma joined",
			clients:  clients("00000001", "00000002", "00000003"),
			expected: "00000001,00000002,00000003",
			ok:       true,
		},
		{
			name:    "candidates without client numbers are dropped",
			clients: []legacy.Client{{ClientName: "no number"}},
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := fold("businessInformation.businessName", true, tt.clients)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, "businessInformation.businessName", result.Field)
				assert.Equal(t, tt.expected, result.MatchingClients)
				assert.True(t, result.Fuzzy)
			}
		})
	}
}

func TestReduce(t *testing.T) {
	t.Run("NoResultsIsSuccess", func(t *testing.T) {
		assert.NoError(t, reduce(nil))
		assert.NoError(t, reduce([]models.MatchResult{}))
	})

	t.Run("AnyResultIsConflict", func(t *testing.T) {
		err := reduce([]models.MatchResult{
			{Field: fieldBusinessName, MatchingClients: "00000001", Fuzzy: true},
		})
		conflict, ok := AsConflict(err)
		require.True(t, ok)
		require.Len(t, conflict.Matches, 1)
		assert.Equal(t, "00000001", conflict.Matches[0].MatchingClients)
	})

	t.Run("ExactWinsOverFuzzyOnSameField", func(t *testing.T) {
		err := reduce([]models.MatchResult{
			{Field: fieldBusinessName, MatchingClients: "00000001", Fuzzy: true},
			{Field: fieldBusinessName, MatchingClients: "00000002", Fuzzy: false},
		})
		conflict, ok := AsConflict(err)
		require.True(t, ok)
		require.Len(t, conflict.Matches, 1)
		assert.False(t, conflict.Matches[0].Fuzzy)
		assert.Equal(t, "00000002", conflict.Matches[0].MatchingClients)
	})

	t.Run("ExactResultsSortFirst", func(t *testing.T) {
		err := reduce([]models.MatchResult{
			{Field: fieldDoingBusinessAs, MatchingClients: "00000003", Fuzzy: true},
			{Field: fieldRegistrationNumber, MatchingClients: "00000001", Fuzzy: false},
			{Field: fieldBusinessName, MatchingClients: "00000002", Fuzzy: true},
		})
		conflict, ok := AsConflict(err)
		require.True(t, ok)
		require.Len(t, conflict.Matches, 3)
		assert.False(t, conflict.Matches[0].Fuzzy)
		assert.Equal(t, fieldRegistrationNumber, conflict.Matches[0].Field)
		// Stable sort keeps issue order among equal flags.
		assert.Equal(t, fieldDoingBusinessAs, conflict.Matches[1].Field)
		assert.Equal(t, fieldBusinessName, conflict.Matches[2].Field)
	})

	t.Run("DedupeKeepsFirstPerField", func(t *testing.T) {
		err := reduce([]models.MatchResult{
			{Field: fieldBusinessName, MatchingClients: "00000001", Fuzzy: false},
			{Field: fieldBusinessName, MatchingClients: "00000002", Fuzzy: false},
			{Field: fieldAcronym, MatchingClients: "00000003", Fuzzy: false},
		})
		conflict, ok := AsConflict(err)
		require.True(t, ok)
		require.Len(t, conflict.Matches, 2)
		assert.Equal(t, "00000001", conflict.Matches[0].MatchingClients)
	})
}

func TestRunAll(t *testing.T) {
	ctx := context.Background()

	t.Run("TransportFailurePropagates", func(t *testing.T) {
		boom := errors.New("registry unavailable")
		searches := []search{
			{
				field: fieldBusinessName,
				run: func(context.Context) ([]legacy.Client, error) {
					return nil, boom
				},
			},
		}

		err := runAll(ctx, searches)
		assert.ErrorIs(t, err, boom)
		_, isConflict := AsConflict(err)
		assert.False(t, isConflict)
	})

	t.Run("AllEmptyCompletesNormally", func(t *testing.T) {
		searches := []search{
			{field: fieldBusinessName, run: func(context.Context) ([]legacy.Client, error) { return nil, nil }},
			{field: fieldAcronym, run: func(context.Context) ([]legacy.Client, error) { return nil, nil }},
		}

		assert.NoError(t, runAll(ctx, searches))
	})
}
