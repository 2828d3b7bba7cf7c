package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mzansicare/booking-api/pkg/errors"
)

func TestRespondWithErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: apperrors.NotFound("appointment", nil), wantStatus: http.StatusNotFound},
		{name: "bad request", err: apperrors.BadRequest("unknown district", nil), wantStatus: http.StatusBadRequest},
		{name: "invalid date", err: apperrors.InvalidDate("bad date"), wantStatus: http.StatusBadRequest},
		{name: "invalid time", err: apperrors.InvalidTime("bad time"), wantStatus: http.StatusBadRequest},
		{name: "invalid duration", err: apperrors.InvalidDuration("bad duration"), wantStatus: http.StatusBadRequest},
		{name: "unauthorized", err: apperrors.Unauthorized(nil), wantStatus: http.StatusUnauthorized},
		{name: "forbidden", err: apperrors.Forbidden("no"), wantStatus: http.StatusForbidden},
		{name: "district denied", err: apperrors.DistrictAccessDenied("vhembe"), wantStatus: http.StatusForbidden},
		{name: "incompatible facility", err: apperrors.IncompatibleFacility("clinic"), wantStatus: http.StatusUnprocessableEntity},
		{name: "cancellation window", err: apperrors.CancellationNotAllowed("closed"), wantStatus: http.StatusUnprocessableEntity},
		{name: "invalid transition", err: apperrors.InvalidTransition("cancelled", "confirmed"), wantStatus: http.StatusUnprocessableEntity},
		{name: "double booking", err: apperrors.PatientDoubleBooking("taken"), wantStatus: http.StatusConflict},
		{name: "provider unavailable", err: apperrors.ProviderUnavailable("taken"), wantStatus: http.StatusConflict},
		{name: "persistence failure", err: apperrors.PersistenceFailure(errors.New("boom")), wantStatus: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			RespondWithError(c, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestRespondWithErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondWithError(c, errors.New("pq: connection refused"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "internal server error", body.Error.Message)
}

func TestRespondWithSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondWithSuccess(c, map[string]string{"status": "ok"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
}

func TestRespondWithCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondWithCreated(c, map[string]string{"id": "123"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}
