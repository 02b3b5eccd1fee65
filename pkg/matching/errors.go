package matching

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/timberline/cedar/pkg/models"
)

// ConflictError reports that one or more submission fields collided with
// existing legacy data. It is the expected "found something" outcome of
// matching, not a fault: callers surface the full match list so review
// screens can decide hard stop vs. warning per field.
type ConflictError struct {
	Matches []models.MatchResult
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("found %d matches on existing client data", len(e.Matches))
}

// ToHTTPError maps the conflict to a 409 carrying the match list.
func (e *ConflictError) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(http.StatusConflict, "match found on existing data").
		AddMetaValue("matches", e.Matches)
}

// AsConflict unwraps a ConflictError if err carries one.
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}

// NewInvalidRequestError flags structurally missing/empty submission data or
// an unrecognized step/type combination. Not retryable.
func NewInvalidRequestError(format string, args ...any) error {
	return httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

// NewNotImplementedError flags a recognized but intentionally unhandled
// step/type combination.
func NewNotImplementedError(format string, args ...any) error {
	return httperror.NewHTTPError(http.StatusNotImplemented, fmt.Sprintf(format, args...))
}

// IsInvalidRequest reports whether err is an invalid-request rejection.
func IsInvalidRequest(err error) bool {
	return httperror.IsHTTPError(err) && httperror.GetStatusCode(err) == http.StatusBadRequest
}

// IsNotImplemented reports whether err is a not-implemented rejection.
func IsNotImplemented(err error) bool {
	return httperror.IsHTTPError(err) && httperror.GetStatusCode(err) == http.StatusNotImplemented
}
