package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/timberline/cedar/pkg/legacy"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func clients(numbers ...string) []legacy.Client {
	result := make([]legacy.Client, 0, len(numbers))
	for _, n := range numbers {
		result = append(result, legacy.Client{ClientNumber: n})
	}
	return result
}

// mockGateway is a canned in-memory Gateway. Responses are keyed by the
// operation and its inputs; every executed call is recorded so tests can
// assert that blank inputs short-circuit before any search is issued.
type mockGateway struct {
	byField    map[string][]legacy.Client // "field|value"
	byFilters  map[string][]legacy.Client // sorted "field=v1+v2" joined with "|"
	fuzzy      map[string][]legacy.Client // "kind|field|value"
	individual map[string][]legacy.Client // "first|last|birthdate|id" (id empty when nil)
	document   map[string][]legacy.Client // "idType|idValue"
	address    []legacy.Client
	contact    []legacy.Client
	err        error

	calls []string
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		byField:    map[string][]legacy.Client{},
		byFilters:  map[string][]legacy.Client{},
		fuzzy:      map[string][]legacy.Client{},
		individual: map[string][]legacy.Client{},
		document:   map[string][]legacy.Client{},
	}
}

func (g *mockGateway) record(op string, parts ...string) {
	g.calls = append(g.calls, op+"("+strings.Join(parts, ",")+")")
}

func (g *mockGateway) SearchByField(_ context.Context, field, value string) ([]legacy.Client, error) {
	if legacy.Blank(value) {
		return nil, nil
	}
	g.record("SearchByField", field, value)
	if g.err != nil {
		return nil, g.err
	}
	return g.byField[field+"|"+value], nil
}

func (g *mockGateway) SearchByFilters(_ context.Context, filters map[string][]string) ([]legacy.Client, error) {
	keys := make([]string, 0, len(filters))
	for field, values := range filters {
		for _, v := range values {
			if legacy.Blank(v) {
				return nil, nil
			}
		}
		keys = append(keys, field+"="+strings.Join(filters[field], "+"))
	}
	sort.Strings(keys)
	key := strings.Join(keys, "|")
	g.record("SearchByFilters", key)
	if g.err != nil {
		return nil, g.err
	}
	return g.byFilters[key], nil
}

func (g *mockGateway) SearchFuzzy(_ context.Context, kind, field, value string) ([]legacy.Client, error) {
	if legacy.Blank(value) {
		return nil, nil
	}
	g.record("SearchFuzzy", kind, field, value)
	if g.err != nil {
		return nil, g.err
	}
	return g.fuzzy[kind+"|"+field+"|"+value], nil
}

func (g *mockGateway) SearchIndividual(_ context.Context, firstName, lastName, birthdate string, identification *string) ([]legacy.Client, error) {
	if legacy.AnyBlank(firstName, lastName, birthdate) {
		return nil, nil
	}
	id := ""
	if identification != nil {
		id = *identification
	}
	g.record("SearchIndividual", firstName, lastName, birthdate, id)
	if g.err != nil {
		return nil, g.err
	}
	return g.individual[fmt.Sprintf("%s|%s|%s|%s", firstName, lastName, birthdate, id)], nil
}

func (g *mockGateway) SearchDocument(_ context.Context, idType, idValue string) ([]legacy.Client, error) {
	if legacy.AnyBlank(idType, idValue) {
		return nil, nil
	}
	g.record("SearchDocument", idType, idValue)
	if g.err != nil {
		return nil, g.err
	}
	return g.document[idType+"|"+idValue], nil
}

func (g *mockGateway) SearchAddress(_ context.Context, query legacy.AddressQuery) ([]legacy.Client, error) {
	if legacy.AnyBlank(query.StreetAddress, query.City, query.Province, query.PostalCode, query.Country) {
		return nil, nil
	}
	g.record("SearchAddress", query.StreetAddress, query.City)
	if g.err != nil {
		return nil, g.err
	}
	return g.address, nil
}

func (g *mockGateway) SearchContact(_ context.Context, query legacy.ContactQuery) ([]legacy.Client, error) {
	if legacy.AnyBlank(query.FirstName, query.LastName) {
		return nil, nil
	}
	g.record("SearchContact", query.FirstName, query.LastName)
	if g.err != nil {
		return nil, g.err
	}
	return g.contact, nil
}
