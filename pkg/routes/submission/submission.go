// Package submission exposes CRUD routes over persisted submissions.
package submission

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	submissionrepo "github.com/timberline/cedar/internal/repositories/submission"
	appcontext "github.com/timberline/cedar/pkg/context"
	"github.com/timberline/cedar/pkg/models"
	"github.com/timberline/cedar/pkg/tracing"
)

var validate = validator.New()

// Register registers submission routes
func Register(g *echo.Group) {
	g.POST("", CreateSubmission)
	g.GET("", ListSubmissions)
	g.GET("/:id", GetSubmission)
}

// CreateSubmission persists a new submission in status "new". Matching runs
// asynchronously off the intake topic; the response only acknowledges
// receipt.
func CreateSubmission(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "submission_handler.CreateSubmission")
	defer span.End()

	var req models.CreateSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	data, err := json.Marshal(req.Submission)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid submission payload")
	}

	ctx, repo, err := ectoinject.GetContext[*submissionrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "submission repository unavailable")
	}

	record, err := repo.Create(ctx, &models.SubmissionRecord{
		ClientType: req.Submission.BusinessInformation.ClientType,
		Data:       data,
		CreatedBy:  appcontext.GetUserID(ctx),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, record)
}

// GetSubmission retrieves a submission by ID
func GetSubmission(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "submission_handler.GetSubmission")
	defer span.End()

	id := c.Param("id")
	if id == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "submission id is required")
	}

	ctx, repo, err := ectoinject.GetContext[*submissionrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "submission repository unavailable")
	}

	record, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

// ListSubmissions lists submissions by status, defaulting to conflicts
// awaiting review.
func ListSubmissions(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "submission_handler.ListSubmissions")
	defer span.End()

	status := c.QueryParam("status")
	if status == "" {
		status = models.SubmissionStatusConflict
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, repo, err := ectoinject.GetContext[*submissionrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "submission repository unavailable")
	}

	records, err := repo.ListByStatus(ctx, status, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, records)
}
