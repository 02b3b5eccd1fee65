package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timberline/cedar/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func invokeHandler(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	Error(testLogger())(err, c)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestError(t *testing.T) {
	t.Run("ConflictSurfacesTypedMatchList", func(t *testing.T) {
		err := httperror.NewHTTPError(http.StatusConflict, "found 2 matches on existing client data").
			AddMetaValue("matches", []models.MatchResult{
				{Field: "businessInformation.businessName", MatchingClients: "00000001", Fuzzy: false},
				{Field: "location.addresses[0].postalCode", MatchingClients: "00000002,00000003", Fuzzy: true},
			})

		rec, body := invokeHandler(t, err)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, body.Message, "found 2 matches on existing client data")
		require.Len(t, body.Matches, 2)
		assert.Equal(t, "businessInformation.businessName", body.Matches[0].Field)
		assert.Equal(t, "00000001", body.Matches[0].MatchingClients)
		assert.True(t, body.Matches[1].Fuzzy)
		// the match list is promoted out of the generic meta map
		assert.NotContains(t, body.Meta, "matches")
	})

	t.Run("HTTPErrorMetaIsPassedThrough", func(t *testing.T) {
		err := httperror.NewHTTPError(http.StatusBadRequest, "step is required").
			AddMetaValue("step", "abc")

		rec, body := invokeHandler(t, err)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, body.Message, "step is required")
		assert.Equal(t, "abc", body.Meta["step"])
		assert.Empty(t, body.Matches)
	})

	t.Run("EchoErrorKeepsCodeAndMessage", func(t *testing.T) {
		rec, body := invokeHandler(t, echo.NewHTTPError(http.StatusNotFound, "Not Found"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not Found", body.Message)
	})

	t.Run("UnknownErrorIsInternal", func(t *testing.T) {
		rec, body := invokeHandler(t, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", body.Message)
	})
}
