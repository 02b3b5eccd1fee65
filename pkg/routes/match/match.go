// Package match exposes the synchronous matching endpoint used by the intake
// wizard to check a submission step before it is saved.
package match

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/timberline/cedar/pkg/matching"
	"github.com/timberline/cedar/pkg/models"
	"github.com/timberline/cedar/pkg/tracing"
)

var validate = validator.New()

// Register registers matching routes
func Register(g *echo.Group) {
	g.POST("", MatchSubmission)
}

// MatchSubmission runs a submission step through the matching engine.
// Responds 204 when the submission may proceed and 409 with the match
// results when it collides with existing clients.
func MatchSubmission(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "match_handler.MatchSubmission")
	defer span.End()

	step, err := strconv.Atoi(c.QueryParam("step"))
	if err != nil || step < 1 {
		return httperror.NewHTTPError(http.StatusBadRequest, "step query parameter must be a positive integer")
	}

	var submission models.Submission
	if err := c.Bind(&submission); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(submission); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, service, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "matching service unavailable")
	}

	if err := service.MatchClients(ctx, &submission, step); err != nil {
		if conflict, ok := matching.AsConflict(err); ok {
			return conflict.ToHTTPError()
		}
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
