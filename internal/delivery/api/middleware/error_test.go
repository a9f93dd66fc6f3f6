package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"pushrelay/internal/delivery/api/response"
	domainerrors "pushrelay/internal/domain/errors"
	"pushrelay/internal/errors"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMiddleware_HandleHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails any
	}{
		{
			name:        "app error with details",
			err:         domainerrors.ErrValidationFailed.WithDetails("keys.auth is required"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "VALIDATION_FAILED",
			wantMessage: "Invalid push subscription",
			wantDetails: "keys.auth is required",
		},
		{
			name:        "wrapped app error",
			err:         errors.Wrap(domainerrors.ErrSubscriptionNotFound, "lookup"),
			wantStatus:  http.StatusNotFound,
			wantCode:    "SUBSCRIPTION_NOT_FOUND",
			wantMessage: "User not found",
		},
		{
			name:        "storage failure hides details",
			err:         domainerrors.NewDatabaseExecuteError(errors.New("connection refused"), "failed to look up subscription"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "DATABASE_EXECUTE_FAILED",
			wantMessage: "Storage failure",
		},
		{
			name:        "echo http error",
			err:         echo.ErrStatusRequestEntityTooLarge,
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantCode:    "PAYLOAD_TOO_LARGE",
			wantMessage: "Request Entity Too Large",
		},
		{
			name:        "echo http error with message",
			err:         echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "BAD_REQUEST",
			wantMessage: "Invalid JSON",
		},
		{
			name:        "unknown error",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "Internal server error, please try again later",
		},
	}

	m := NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

			m.HandleHTTPError(tt.err, c)

			require.Equal(t, tt.wantStatus, rec.Code)

			var body response.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
			assert.Equal(t, tt.wantDetails, body.Error.Details)
			assert.NotEmpty(t, body.Meta.RequestID)
		})
	}
}

func TestErrorMiddleware_SkipsCommittedResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))).HandleHTTPError(errors.New("late"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
