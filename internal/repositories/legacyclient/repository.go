// Package legacyclient implements the read-only gateway against the mirrored
// legacy client registry tables.
package legacyclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/timberline/cedar/pkg/database"
	"github.com/timberline/cedar/pkg/legacy"
	"github.com/timberline/cedar/pkg/tracing"
)

const clientColumns = "c.client_number, c.client_name, c.client_type, c.status"

// fieldColumns whitelists the registry search keys that map to a single
// clients column. Email and phone fan out across locations and contacts and
// are handled separately.
var fieldColumns = map[string]string{
	"clientName":         "client_name",
	"acronym":            "acronym",
	"registrationNumber": "registration_number",
	"doingBusinessAs":    "doing_business_as",
	"clientType":         "client_type",
}

// fuzzyColumns whitelists the fuzzy search flavors.
var fuzzyColumns = map[string]string{
	"name": "client_name",
	"dba":  "doing_business_as",
}

// Repository is the Postgres-backed legacy.Gateway. Every search honors the
// blank-guard contract: blank required values short-circuit to an empty
// result without touching the database.
type Repository struct {
	db            database.DB
	logger        ectologger.Logger
	limit         int
	minSimilarity float64
}

// NewRepository creates a legacy registry repository. Limit caps every result
// set; minSimilarity is the pg_trgm similarity floor for fuzzy searches.
func NewRepository(db database.DB, logger ectologger.Logger, limit int, minSimilarity float64) *Repository {
	if limit < 1 {
		limit = 25
	}
	return &Repository{
		db:            db,
		logger:        logger,
		limit:         limit,
		minSimilarity: minSimilarity,
	}
}

// SearchByField finds clients whose field exactly equals value, ignoring case.
func (r *Repository) SearchByField(ctx context.Context, field, value string) ([]legacy.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "legacyclient.Repository.SearchByField")
	defer span.End()

	if legacy.Blank(value) {
		return []legacy.Client{}, nil
	}

	switch field {
	case "email":
		return r.searchReachability(ctx, []string{"email_address"}, []string{"email"}, value)
	case "phone":
		phoneCols := []string{"business_phone", "secondary_phone", "fax_number"}
		return r.searchReachability(ctx, phoneCols, phoneCols, value)
	}

	column, ok := fieldColumns[field]
	if !ok {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("unsearchable registry field %q", field))
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("client_number", "client_name", "client_type", "status")
	sb.From("legacy_clients")
	sb.Where(fmt.Sprintf("upper(%s) = upper(%s)", column, sb.Var(value)))
	sb.Limit(r.limit)

	query, args := sb.Build()
	return r.selectClients(ctx, query, args, map[string]any{"field": field})
}

// SearchByFilters finds clients matching every field/values filter exactly.
func (r *Repository) SearchByFilters(ctx context.Context, filters map[string][]string) ([]legacy.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "legacyclient.Repository.SearchByFilters")
	defer span.End()

	if len(filters) == 0 {
		return []legacy.Client{}, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("client_number", "client_name", "client_type", "status")
	sb.From("legacy_clients")

	for field, values := range filters {
		column, ok := fieldColumns[field]
		if !ok {
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("unsearchable registry field %q", field))
		}
		if len(values) == 0 {
			return []legacy.Client{}, nil
		}
		ors := make([]string, 0, len(values))
		for _, v := range values {
			if legacy.Blank(v) {
				return []legacy.Client{}, nil
			}
			ors = append(ors, fmt.Sprintf("upper(%s) = upper(%s)", column, sb.Var(v)))
		}
		sb.Where(sb.Or(ors...))
	}
	sb.Limit(r.limit)

	query, args := sb.Build()
	return r.selectClients(ctx, query, args, map[string]any{"filter_count": len(filters)})
}

// SearchFuzzy finds clients whose column approximately matches value, using
// pg_trgm similarity with the configured floor. Results come back most
// similar first.
func (r *Repository) SearchFuzzy(ctx context.Context, kind, field, value string) ([]legacy.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "legacyclient.Repository.SearchFuzzy")
	defer span.End()

	if legacy.Blank(value) {
		return []legacy.Client{}, nil
	}

	column, ok := fuzzyColumns[kind]
	if !ok {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("unknown fuzzy search kind %q", kind))
	}

	query := fmt.Sprintf(`
		SELECT client_number, client_name, client_type, status
		FROM legacy_clients
		WHERE similarity(upper(%[1]s), upper($1)) >= $2
		ORDER BY similarity(upper(%[1]s), upper($1)) DESC
		LIMIT $3
	`, column)

	return r.selectClients(ctx, query, []any{value, r.minSimilarity, r.limit}, map[string]any{"kind": kind, "field": field})
}

// SearchIndividual finds individuals by name and birthdate. Without an
// identification the name comparison is fuzzy; with one the whole search is
// exact.
func (r *Repository) SearchIndividual(ctx context.Context, firstName, lastName, birthdate string, identification *string) ([]legacy.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "legacyclient.Repository.SearchIndividual")
	defer span.End()

	if legacy.AnyBlank(firstName, lastName, birthdate) {
		return []legacy.Client{}, nil
	}

	if identification != nil {
		if legacy.Blank(*identification) {
			return []legacy.Client{}, nil
		}
		query := `
			SELECT client_number, client_name, client_type, status
			FROM legacy_clients
			WHERE upper(first_name) = upper($1)
			AND upper(last_name) = upper($2)
			AND birthdate = $3
			AND upper(client_identification) = upper($4)
			LIMIT $5
		`
		return r.selectClients(ctx, query, []any{firstName, lastName, birthdate, *identification, r.limit}, nil)
	}

	query := `
		SELECT client_number, client_name, client_type, status
		FROM legacy_clients
		WHERE similarity(upper(first_name), upper($1)) >= $3
		AND similarity(upper(last_name), upper($2)) >= $3
		AND birthdate = $4
		LIMIT $5
	`
	return r.selectClients(ctx, query, []any{firstName, lastName, r.minSimilarity, birthdate, r.limit}, nil)
}

// SearchDocument finds clients registered with the given identification
// document.
func (r *Repository) SearchDocument(ctx context.Context, idType, idValue string) ([]legacy.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "legacyclient.Repository.SearchDocument")
	defer span.End()

	if legacy.AnyBlank(idType, idValue) {
		return []legacy.Client{}, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("client_number", "client_name", "client_type", "status")
	sb.From("legacy_clients")
	sb.Where(
		fmt.Sprintf("upper(identification_type) = upper(%s)", sb.Var(idType)),
		fmt.Sprintf("upper(client_identification) = upper(%s)", sb.Var(idValue)),
	)
	sb.Limit(r.limit)

	query, args := sb.Build()
	return r.selectClients(ctx, query, args, map[string]any{"id_type": idType})
}

// SearchAddress finds clients registered at the full address.
func (r *Repository) SearchAddress(ctx context.Context, q legacy.AddressQuery) ([]legacy.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "legacyclient.Repository.SearchAddress")
	defer span.End()

	if legacy.AnyBlank(q.StreetAddress, q.City, q.Province, q.PostalCode, q.Country) {
		return []legacy.Client{}, nil
	}

	query := `
		SELECT ` + clientColumns + `
		FROM legacy_clients c
		JOIN legacy_client_locations l ON l.client_number = c.client_number
		WHERE upper(l.street_address) = upper($1)
		AND upper(l.city) = upper($2)
		AND upper(l.province) = upper($3)
		AND replace(upper(l.postal_code), ' ', '') = replace(upper($4), ' ', '')
		AND upper(l.country) = upper($5)
		LIMIT $6
	`
	args := []any{q.StreetAddress, q.City, q.Province, q.PostalCode, q.Country, r.limit}
	return r.selectClients(ctx, query, args, nil)
}

// SearchContact finds clients whose registered contact person carries the
// same name and at least one matching reachability value.
func (r *Repository) SearchContact(ctx context.Context, q legacy.ContactQuery) ([]legacy.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "legacyclient.Repository.SearchContact")
	defer span.End()

	if legacy.AnyBlank(q.FirstName, q.LastName) {
		return []legacy.Client{}, nil
	}

	conds := []string{
		"upper(p.first_name) = upper($1)",
		"upper(p.last_name) = upper($2)",
	}
	args := []any{q.FirstName, q.LastName}

	reach := make([]string, 0, 4)
	addReach := func(column, value string) {
		if legacy.Blank(value) {
			return
		}
		args = append(args, value)
		reach = append(reach, fmt.Sprintf("upper(p.%s) = upper($%d)", column, len(args)))
	}
	addReach("email", q.Email)
	addReach("business_phone", q.BusinessPhoneNumber)
	addReach("secondary_phone", q.SecondaryPhoneNumber)
	addReach("fax_number", q.FaxNumber)
	if len(reach) == 0 {
		return []legacy.Client{}, nil
	}
	conds = append(conds, "("+strings.Join(reach, " OR ")+")")

	args = append(args, r.limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM legacy_clients c
		JOIN legacy_client_contacts p ON p.client_number = c.client_number
		WHERE %s
		LIMIT $%d
	`, clientColumns, strings.Join(conds, " AND "), len(args))

	return r.selectClients(ctx, query, args, nil)
}

// searchReachability matches a value against location and contact columns,
// collapsing hits from both tables to distinct clients.
func (r *Repository) searchReachability(ctx context.Context, locationCols, contactCols []string, value string) ([]legacy.Client, error) {
	locWhere := make([]string, 0, len(locationCols))
	for _, col := range locationCols {
		locWhere = append(locWhere, fmt.Sprintf("upper(%s) = upper($1)", col))
	}
	conWhere := make([]string, 0, len(contactCols))
	for _, col := range contactCols {
		conWhere = append(conWhere, fmt.Sprintf("upper(%s) = upper($1)", col))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM legacy_clients c
		WHERE c.client_number IN (
			SELECT client_number FROM legacy_client_locations WHERE %s
			UNION
			SELECT client_number FROM legacy_client_contacts WHERE %s
		)
		LIMIT $2
	`, clientColumns, strings.Join(locWhere, " OR "), strings.Join(conWhere, " OR "))

	return r.selectClients(ctx, query, []any{value, r.limit}, nil)
}

func (r *Repository) selectClients(ctx context.Context, query string, args []any, fields map[string]any) ([]legacy.Client, error) {
	var clients []legacy.Client
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(fields).Error("Legacy registry search failed")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "legacy registry search failed")
	}
	if clients == nil {
		clients = []legacy.Client{}
	}
	return clients, nil
}
