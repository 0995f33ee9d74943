package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/userctx"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(token string) (models.Actor, error) {
	args := m.Called(token)
	return args.Get(0).(models.Actor), args.Error(1)
}

func captureActor(got *models.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = userctx.GetActor(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireActorWithBearerToken(t *testing.T) {
	verifier := new(mockVerifier)
	verifier.On("Verify", "good-token").Return(models.Actor{ID: "bot", Role: models.RoleAdmin}, nil)

	var got models.Actor
	req := httptest.NewRequest(http.MethodPost, "/api/settings/x", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("User-Agent", "ops-cli/1.0")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()

	RequireActor(verifier)(captureActor(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.Actor{ID: "bot", Role: models.RoleAdmin, IPAddress: "203.0.113.9", UserAgent: "ops-cli/1.0"}, got)
	verifier.AssertExpectations(t)
}

func TestRequireActorRejectsBadCredentials(t *testing.T) {
	verifier := new(mockVerifier)
	verifier.On("Verify", "bad-token").Return(models.Actor{}, errors.New("invalid token"))

	for name, header := range map[string]string{
		"bad token":   "Bearer bad-token",
		"wrong style": "Basic dXNlcjpwYXNz",
	} {
		var got models.Actor
		req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		RequireActor(verifier)(captureActor(&got)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Contains(t, rec.Body.String(), "AUTH_REQUIRED", name)
	}
}

func TestGetIPAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.4:51234"
	assert.Equal(t, "192.0.2.4", getIPAddress(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", getIPAddress(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", getIPAddress(req))
}
