package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonbook/salon-api/internal/core/domain"
)

func TestHTTPErrorHandlerMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", domain.Invalid("time is required"), http.StatusBadRequest, "validation failed: time is required"},
		{"invalid status", domain.ErrInvalidStatus, http.StatusBadRequest, "validation failed: invalid reservation status"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusBadRequest, "invalid email or password"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "not authorized"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access denied, administrators only"},
		{"not found", fmt.Errorf("load: %w", domain.ErrReservationNotFound), http.StatusNotFound, "reservation not found"},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict, "email already registered"},
		{"slot full", domain.ErrSlotFull, http.StatusConflict, "this slot is already full, please choose another date or time"},
		{"slot busy", domain.ErrSlotBusy, http.StatusConflict, "this slot is being booked, please try again"},
		{"echo error", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"), http.StatusRequestEntityTooLarge, "Request Entity Too Large"},
		{"unexpected", errors.New("connection reset by peer"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			assert.Equal(t, tc.code, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

func TestHTTPErrorHandlerLogsUnexpected(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/reservations", nil), rec)

	NewHTTPErrorHandler(log)(errors.New("mongo: server selection timeout"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "mongo: server selection timeout")
	assert.NotContains(t, rec.Body.String(), "mongo")
}

func TestHTTPErrorHandlerSkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrSlotFull, c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
