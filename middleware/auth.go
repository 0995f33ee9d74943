package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"gitea.com/go-chi/session"

	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/userctx"
)

// Session keys written at login
const (
	SessionActorID     = "actor_id"
	SessionActorRole   = "actor_role"
	SessionDisplayName = "display_name"
)

// TokenVerifier resolves a bearer token to an actor
type TokenVerifier interface {
	Verify(token string) (models.Actor, error)
}

// RequireActor resolves the acting administrator from a bearer token or the
// login session and rejects the request with AUTH_REQUIRED when neither
// yields an authenticated actor. A nil verifier disables bearer tokens.
func RequireActor(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, name, ok := resolveActor(r, verifier)
			if !ok {
				writeAuthRequired(w)
				return
			}

			actor.IPAddress = getIPAddress(r)
			actor.UserAgent = r.UserAgent()

			ctx := userctx.SetActor(r.Context(), actor)
			ctx = userctx.SetDisplayName(ctx, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveActor(r *http.Request, verifier TokenVerifier) (models.Actor, string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || verifier == nil {
			return models.Actor{}, "", false
		}
		actor, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil || !actor.Authenticated() {
			return models.Actor{}, "", false
		}
		return actor, actor.ID, true
	}

	sess := session.GetSession(r)
	if sess == nil {
		return models.Actor{}, "", false
	}
	id, _ := sess.Get(SessionActorID).(string)
	role, _ := sess.Get(SessionActorRole).(string)
	actor := models.Actor{ID: id, Role: models.Role(role)}
	if !actor.Authenticated() {
		return models.Actor{}, "", false
	}
	name, _ := sess.Get(SessionDisplayName).(string)
	return actor, name, true
}

func writeAuthRequired(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    string(apperr.CodeAuthRequired),
			"message": "authentication required",
		},
	})
}
