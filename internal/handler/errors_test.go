package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/apperror"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invalidateSpy struct{ calls int }

func (s *invalidateSpy) Invalidate() { s.calls++ }

func render(t *testing.T, route string, err error) (*httptest.ResponseRecorder, *invalidateSpy) {
	t.Helper()

	spy := &invalidateSpy{}
	w := NewErrorWriter(spy, slog.New(slog.NewTextHandler(io.Discard, nil)))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, route, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, w.writeError(c, err))
	return rec, spy
}

func TestWriteError_ForcedLogin(t *testing.T) {
	tests := []struct {
		name     string
		route    string
		err      error
		redirect bool
	}{
		{"expired on protected call", "/purchases", apperror.FromResponse(http.MethodGet, "/orders/my-orders", 401, "jwt expired"), true},
		{"session check", "/session", apperror.FromResponse(http.MethodGet, "/auth/me", 401, ""), false},
		{"profile update on /auth/me", "/profile", apperror.FromResponse(http.MethodPut, "/auth/me", 401, ""), false},
		{"login action", "/login", apperror.FromResponse(http.MethodPost, "/auth/login", 401, "Invalid credentials"), false},
		{"register action", "/register", apperror.FromResponse(http.MethodPost, "/auth/register", 401, ""), false},
		{"on login page", "/login", apperror.FromResponse(http.MethodGet, "/products", 401, ""), false},
		{"on register page", "/register", apperror.FromResponse(http.MethodGet, "/products", 401, ""), false},
		{"local auth check", "/admin", apperror.NewAuthentication("login required"), false},
		{"forbidden", "/admin", apperror.FromResponse(http.MethodGet, "/admin/logs", 403, "Forbidden"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, spy := render(t, tt.route, tt.err)

			if tt.redirect {
				assert.Equal(t, http.StatusSeeOther, rec.Code)
				assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
				assert.Equal(t, 1, spy.calls)
				return
			}
			assert.NotEqual(t, http.StatusSeeOther, rec.Code)
			assert.Zero(t, spy.calls)
		})
	}
}

func TestWriteError_SingleNotification(t *testing.T) {
	rec, _ := render(t, "/cart", apperror.NewTransport(http.MethodGet, "/products", true, errors.New("deadline")))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperror.MessageTimeout, body.Error)
}

func TestWriteError_UnknownErrorIs500(t *testing.T) {
	rec, _ := render(t, "/cart", errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperror.MessageServer, body.Error)
}
