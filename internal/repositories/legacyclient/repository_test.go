package legacyclient

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timberline/cedar/pkg/legacy"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// A nil DB proves the blank guards short-circuit before any query is built
// or executed; touching the database would panic.
func blankGuardRepository() *Repository {
	return NewRepository(nil, testLogger(), 25, 0.7)
}

func TestBlankGuards(t *testing.T) {
	ctx := context.Background()
	r := blankGuardRepository()

	t.Run("SearchByField", func(t *testing.T) {
		clients, err := r.SearchByField(ctx, "clientName", "   ")
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("SearchByFiltersEmptyMap", func(t *testing.T) {
		clients, err := r.SearchByFilters(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("SearchByFiltersBlankValue", func(t *testing.T) {
		clients, err := r.SearchByFilters(ctx, map[string][]string{
			"clientName": {""},
			"clientType": {"B", "T"},
		})
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("SearchByFiltersEmptyValueList", func(t *testing.T) {
		clients, err := r.SearchByFilters(ctx, map[string][]string{"clientName": {}})
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("SearchFuzzy", func(t *testing.T) {
		clients, err := r.SearchFuzzy(ctx, "name", "clientName", "")
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("SearchIndividualBlankBirthdate", func(t *testing.T) {
		clients, err := r.SearchIndividual(ctx, "Jhon", "Wick", "", nil)
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("SearchIndividualBlankIdentification", func(t *testing.T) {
		id := " "
		clients, err := r.SearchIndividual(ctx, "Jhon", "Wick", "1970-01-01", &id)
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("SearchDocument", func(t *testing.T) {
		clients, err := r.SearchDocument(ctx, "CDDL", "")
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("SearchAddress", func(t *testing.T) {
		clients, err := r.SearchAddress(ctx, legacy.AddressQuery{
			StreetAddress: "2975 Jutland Rd",
			City:          "Victoria",
			Province:      "BC",
			PostalCode:    "",
			Country:       "CA",
		})
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("SearchContactBlankName", func(t *testing.T) {
		clients, err := r.SearchContact(ctx, legacy.ContactQuery{FirstName: "Ana", Email: "a@example.com"})
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("SearchContactNoReachability", func(t *testing.T) {
		clients, err := r.SearchContact(ctx, legacy.ContactQuery{FirstName: "Ana", LastName: "Moraes"})
		require.NoError(t, err)
		assert.Empty(t, clients)
	})
}

func TestUnsearchableFieldIsRejected(t *testing.T) {
	r := blankGuardRepository()

	_, err := r.SearchByField(context.Background(), "status; DROP TABLE legacy_clients", "x")
	assert.Error(t, err)
}
