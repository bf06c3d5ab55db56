package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subham7008/Quick-Serve/internal/apperr"
	"github.com/Subham7008/Quick-Serve/internal/middleware"
	"github.com/Subham7008/Quick-Serve/internal/service"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newContext(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondEnvelope(t *testing.T) {
	c, rec := newContext(http.MethodGet, "")
	require.NoError(t, respond(c, http.StatusCreated, "done", echo.Map{"id": "1"}))
	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "201", body["status"])
	assert.Equal(t, "true", body["success"])
	assert.Equal(t, "done", body["message"])
	assert.Equal(t, map[string]any{"id": "1"}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestRespondKeepsEmptyList(t *testing.T) {
	c, rec := newContext(http.MethodGet, "")
	require.NoError(t, respond(c, http.StatusOK, "ok", []any{}))
	assert.Equal(t, []any{}, decode(t, rec)["data"])
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		detail any
	}{
		{"validation", apperr.Validation("validation failed", apperr.FieldError{Field: "email", Message: "bad"}),
			http.StatusBadRequest, []any{map[string]any{"field": "email", "message": "bad"}}},
		{"conflict", apperr.Conflict("username", "taken"), http.StatusConflict, map[string]any{"field": "username"}},
		{"not found", apperr.NotFound("missing"), http.StatusNotFound, nil},
		{"forbidden", apperr.Forbidden("no"), http.StatusForbidden, nil},
		{"unauthorized", apperr.Unauthorized("who"), http.StatusUnauthorized, nil},
		{"transition", apperr.InvalidTransition("cannot"), http.StatusBadRequest, nil},
		{"otp", apperr.InvalidOTP(), http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "")
			require.NoError(t, respondError(c, quiet, tt.err))
			assert.Equal(t, tt.code, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "false", body["success"])
			assert.Equal(t, tt.detail, body["error"])
		})
	}
}

func TestRespondErrorHidesInternals(t *testing.T) {
	for _, err := range []error{errors.New("dial tcp 10.0.0.1: refused"), apperr.Internal(errors.New("secret detail"))} {
		c, rec := newContext(http.MethodGet, "")
		require.NoError(t, respondError(c, quiet, err))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal server error", decode(t, rec)["message"])
		assert.NotContains(t, rec.Body.String(), "refused")
		assert.NotContains(t, rec.Body.String(), "secret")
	}
}

func TestBindRejectsMalformedJSON(t *testing.T) {
	c, _ := newContext(http.MethodPost, "{not json")
	var dst struct{ A string }
	assert.True(t, apperr.Is(bind(c, &dst), apperr.KindValidation))
}

func TestActorRequiresIdentity(t *testing.T) {
	c, _ := newContext(http.MethodGet, "")
	_, err := actor(c)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	middleware.SetIdentity(c, service.Identity{ID: "u1"})
	id, err := actor(c)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
}

func TestHealth(t *testing.T) {
	c, rec := newContext(http.MethodGet, "")
	require.NoError(t, Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
