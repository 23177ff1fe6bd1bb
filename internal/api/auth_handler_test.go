package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sageset/web/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndMe(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: adminEmail, Password: adminPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[LoginResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, adminEmail, resp.User.Email)
	assert.NotContains(t, w.Body.String(), "password")

	w = h.do(http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: adminEmail, Password: "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/api/v1/admin/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cred := decode[service.Credential](t, w)
	assert.Equal(t, adminEmail, cred.Email)
	assert.True(t, cred.Admin)
}

func TestPublicSite(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/", "/privacy", "/terms", "/support", "/account-deletion"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"), path)
		assert.Contains(t, w.Body.String(), "SageSet Fitness", path)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/pricing", nil)
	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
