// Package legacy defines the contract against the legacy client registry.
// Matching only ever reads from the registry; every search is side-effect
// free and must short-circuit to an empty result when a required value is
// blank, so matchers never pay for (or get false positives from) empty
// lookups.
package legacy

import (
	"context"
	"strings"
)

// Client is one candidate record from the legacy registry. Matching only
// relies on ClientNumber; the remaining columns exist for logging and review
// screens.
type Client struct {
	ClientNumber string `json:"clientNumber" db:"client_number"`
	ClientName   string `json:"clientName" db:"client_name"`
	ClientType   string `json:"clientType" db:"client_type"`
	Status       string `json:"status" db:"status"`
}

// AddressQuery is the structured input for a full address search.
type AddressQuery struct {
	StreetAddress string
	City          string
	Province      string
	PostalCode    string
	Country       string
}

// ContactQuery is the structured input for a combined contact search.
type ContactQuery struct {
	FirstName            string
	MiddleName           string
	LastName             string
	Email                string
	BusinessPhoneNumber  string
	SecondaryPhoneNumber string
	FaxNumber            string
}

// Gateway is the read-only search surface of the legacy client registry.
//
// Blank-guard rule: every operation returns an empty slice, without touching
// the registry, when any of its required values is blank. Transport failures
// are returned unchanged; callers must not swallow them.
type Gateway interface {
	// SearchByField finds clients whose field exactly equals value.
	SearchByField(ctx context.Context, field, value string) ([]Client, error)

	// SearchByFilters finds clients matching every field/values filter
	// exactly. A filter with an empty value list is a required key that is
	// absent, so the whole search short-circuits to empty.
	SearchByFilters(ctx context.Context, filters map[string][]string) ([]Client, error)

	// SearchFuzzy finds clients whose field approximately matches value.
	// Kind names the fuzzy flavor used by the registry (e.g. "name", "dba").
	SearchFuzzy(ctx context.Context, kind, field, value string) ([]Client, error)

	// SearchIndividual finds individuals by name and birthdate. When
	// identification is nil the search is broad (fuzzy on names); when
	// present it narrows to an exact identity match.
	SearchIndividual(ctx context.Context, firstName, lastName, birthdate string, identification *string) ([]Client, error)

	// SearchDocument finds clients registered with the given identification
	// document.
	SearchDocument(ctx context.Context, idType, idValue string) ([]Client, error)

	// SearchAddress finds clients registered at the full address.
	SearchAddress(ctx context.Context, query AddressQuery) ([]Client, error)

	// SearchContact finds clients with a matching contact person.
	SearchContact(ctx context.Context, query ContactQuery) ([]Client, error)
}

// Blank reports whether a required search value is effectively absent.
func Blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// AnyBlank reports whether any of the required search values is absent.
func AnyBlank(values ...string) bool {
	for _, v := range values {
		if Blank(v) {
			return true
		}
	}
	return false
}
