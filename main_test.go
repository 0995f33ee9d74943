package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/authenticator"
	"github.com/blogem/admin-console/config"
	"github.com/blogem/admin-console/controllers"
	"github.com/blogem/admin-console/database"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/repositories"
	"github.com/blogem/admin-console/services"
)

func TestRouterWiring(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gate := access.NewGate(access.DefaultPolicy())
	srvs := services.NewServices(repositories.NewRepositories(db), services.Options{Gate: gate})
	issuer, err := authenticator.NewTokenIssuer("0123456789abcdef-test-secret", "admin-console", time.Hour)
	require.NoError(t, err)

	r, err := setupRouter(&config.Config{SessionLifetime: time.Hour}, controllers.NewControllers(srvs, gate), nil, issuer)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := issuer.Issue("deploy-bot", models.RoleViewer)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
