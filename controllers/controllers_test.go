package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/authenticator"
	"github.com/blogem/admin-console/database"
	"github.com/blogem/admin-console/middleware"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/repositories"
	"github.com/blogem/admin-console/services"
	"github.com/blogem/admin-console/userctx"
)

const seedYAML = `
settings:
  - key: scoring.enabled
    category: scoring
    value_type: boolean
    value: false
    editable: true
reports:
  - key: rpt-1
    category: spam
    status: open
    target_type: review
    target_id: rev-9
`

// withRole stands in for the identity middleware
func withRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := models.Role(r.Header.Get("X-Test-Role"))
		ctx := userctx.SetActor(r.Context(), models.Actor{ID: "user-" + string(role), Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gate := access.NewGate(access.DefaultPolicy())
	srvs := services.NewServices(repositories.NewRepositories(db), services.Options{Gate: gate})
	set, err := services.ParseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	_, err = srvs.Seed.Import(context.Background(), "seed", set)
	require.NoError(t, err)

	ctrl := NewControllers(srvs, gate)
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(withRole)
		ctrl.APIRoutes(r)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path string, role models.Role, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Role", string(role))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func errorCode(body map[string]any) string {
	detail, _ := body["error"].(map[string]any)
	code, _ := detail["code"].(string)
	return code
}

func TestUpdateValueEndpoint(t *testing.T) {
	h := setupRouter(t)

	rec, body := do(t, h, http.MethodPut, "/api/settings/scoring.enabled/value", models.RoleAdmin,
		`{"value": true, "reason": "enable new scoring", "expected_version": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	record := body["record"].(map[string]any)
	assert.Equal(t, float64(2), record["version"])
	assert.Equal(t, true, record["value"])

	rec, body = do(t, h, http.MethodPut, "/api/settings/scoring.enabled/value", models.RoleAdmin,
		`{"value": false, "reason": "revert per incident", "expected_version": 1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(body))

	rec, body = do(t, h, http.MethodPut, "/api/settings/scoring.enabled/value", models.RoleViewer,
		`{"value": false, "reason": "revert per incident"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	rec, body = do(t, h, http.MethodPut, "/api/settings/scoring.enabled/value", models.RoleAdmin,
		`{"value": "yes", "reason": "revert per incident"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))

	rec, _ = do(t, h, http.MethodGet, "/api/settings/scoring.enabled/history", models.RoleViewer, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestBodyValidation(t *testing.T) {
	h := setupRouter(t)

	rec, body := do(t, h, http.MethodPut, "/api/settings/scoring.enabled/value", models.RoleAdmin, `{"value": tru`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))

	rec, _ = do(t, h, http.MethodPut, "/api/settings/scoring.enabled/value", models.RoleAdmin,
		`{"value": true, "reason": "enable new scoring", "force": true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, body = do(t, h, http.MethodPost, "/api/reports/rpt-1/assign", models.RoleSupport,
		`{"reason": "taking this one today"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "assignee_id", body["error"].(map[string]any)["field"])

	rec, body = do(t, h, http.MethodPost, "/api/reports/rpt-1/assign", models.RoleSupport,
		`{"reason": "too short", "assignee_id": "mod-7"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "reason", body["error"].(map[string]any)["field"])

	rec, _ = do(t, h, http.MethodGet, "/api/reports?sort=rating", models.RoleViewer, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestReportEndpoints(t *testing.T) {
	h := setupRouter(t)

	rec, body := do(t, h, http.MethodPost, "/api/reports/rpt-1/resolve", models.RoleModerator,
		`{"reason": "duplicate of #1123456789", "outcome": "dismissed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "dismissed", body["record"].(map[string]any)["status"])

	rec, body = do(t, h, http.MethodPost, "/api/reports/rpt-1/status", models.RoleModerator,
		`{"reason": "reopen for another look", "status": "open"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(body))

	rec, body = do(t, h, http.MethodGet, "/api/reports/missing", models.RoleViewer, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	rec, body = do(t, h, http.MethodGet, "/api/reports?status=dismissed", models.RoleViewer, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["reports"], 1)
}

func TestAuditAndMeEndpoints(t *testing.T) {
	h := setupRouter(t)

	rec, body := do(t, h, http.MethodGet, "/api/audit", models.RoleSupport, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	rec, body = do(t, h, http.MethodGet, "/api/audit?resource_kind=setting&limit=5", models.RoleAdmin, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, body["entries"])

	rec, _ = do(t, h, http.MethodGet, "/api/audit?resource_kind=invoice", models.RoleAdmin, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/api/me", models.RoleModerator, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "moderator", body["role"])
	assert.Contains(t, body["actions"], "moderate")
	assert.NotContains(t, body["actions"], "update")
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) GetAuthURL(state string) string {
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (m *mockProvider) ExchangeCode(ctx context.Context, code string) (*authenticator.Token, error) {
	args := m.Called(ctx, code)
	token, _ := args.Get(0).(*authenticator.Token)
	return token, args.Error(1)
}

func (m *mockProvider) GetClaims(ctx context.Context, token *authenticator.Token) (authenticator.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(authenticator.Claims)
	return claims, args.Error(1)
}

func setupAuthRouter(t *testing.T, provider authenticator.Provider) http.Handler {
	t.Helper()

	sessions, err := session.Sessioner(session.Options{
		Provider:    "memory",
		CookieName:  "console_session_test",
		Gclifetime:  3600,
		Maxlifetime: 3600,
	})
	require.NoError(t, err)

	auth := NewAuthController(access.NewGate(access.DefaultPolicy()))
	r := chi.NewRouter()
	r.Use(sessions)
	r.Get("/login", auth.Login(provider))
	r.Get("/callback", auth.Callback(provider, "role"))
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireActor(nil))
		r.Get("/api/me", auth.Me)
	})
	return r
}

func login(t *testing.T, h http.Handler) (state string, cookies []*http.Cookie) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return location.Query().Get("state"), rec.Result().Cookies()
}

func callback(h http.Handler, state string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/callback?code=abc&state="+url.QueryEscape(state), nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginCallbackEstablishesSession(t *testing.T) {
	provider := new(mockProvider)
	token := &authenticator.Token{IDToken: "id-token"}
	provider.On("ExchangeCode", mock.Anything, "abc").Return(token, nil)
	provider.On("GetClaims", mock.Anything, token).
		Return(authenticator.Claims{"sub": "auth0|42", "role": "moderator", "nickname": "sam"}, nil)

	h := setupAuthRouter(t, provider)
	state, cookies := login(t, h)
	require.NotEmpty(t, state)

	rec := callback(h, state, cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var me map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "auth0|42", me["id"])
	assert.Equal(t, "moderator", me["role"])
	assert.Equal(t, "sam", me["display_name"])
	provider.AssertExpectations(t)
}

func TestCallbackRefusesIdentityWithoutRole(t *testing.T) {
	provider := new(mockProvider)
	token := &authenticator.Token{IDToken: "id-token"}
	provider.On("ExchangeCode", mock.Anything, "abc").Return(token, nil)
	provider.On("GetClaims", mock.Anything, token).
		Return(authenticator.Claims{"sub": "auth0|43", "role": "editor"}, nil)

	h := setupAuthRouter(t, provider)
	state, cookies := login(t, h)

	rec := callback(h, state, cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCallbackRejectsStateMismatch(t *testing.T) {
	h := setupAuthRouter(t, new(mockProvider))
	_, cookies := login(t, h)

	rec := callback(h, "forged-state", cookies)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
