package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"gitea.com/go-chi/session"

	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/authenticator"
	"github.com/blogem/admin-console/middleware"
	"github.com/blogem/admin-console/userctx"
)

type AuthController struct {
	gate *access.Gate
}

func NewAuthController(gate *access.Gate) *AuthController {
	return &AuthController{gate: gate}
}

// Login initiates the authentication process
func (ac *AuthController) Login(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := generateRandomState()
		if err != nil {
			writeError(w, r, apperr.Wrap(apperr.CodeInternal, "failed to start login", err))
			return
		}

		// Save the state in the session to validate in callback
		sess := session.GetSession(r)
		sess.Set("state", state)

		http.Redirect(w, r, auth.GetAuthURL(state), http.StatusTemporaryRedirect)
	}
}

// Callback handles the callback from the identity provider. The role is read
// from roleClaim; identities without a console role are refused.
func (ac *AuthController) Callback(auth authenticator.Provider, roleClaim string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)

		storedState, _ := sess.Get("state").(string)
		if storedState == "" || r.URL.Query().Get("state") != storedState {
			writeError(w, r, apperr.New(apperr.CodeAuthRequired, "invalid login state"))
			return
		}
		sess.Delete("state")

		token, err := auth.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			slog.Warn("authorization code exchange failed", "error", err)
			writeError(w, r, apperr.New(apperr.CodeAuthRequired, "failed to exchange authorization code"))
			return
		}

		claims, err := auth.GetClaims(r.Context(), token)
		if err != nil {
			slog.Warn("id token verification failed", "error", err)
			writeError(w, r, apperr.New(apperr.CodeAuthRequired, "failed to verify identity"))
			return
		}

		actor, err := claims.Actor(roleClaim)
		if errors.Is(err, authenticator.ErrNoRole) {
			slog.Warn("login refused", "error", err)
			writeError(w, r, apperr.New(apperr.CodeForbidden, "identity has no console role"))
			return
		}
		if err != nil {
			writeError(w, r, apperr.New(apperr.CodeAuthRequired, "identity has no subject"))
			return
		}

		sess.Set(middleware.SessionActorID, actor.ID)
		sess.Set(middleware.SessionActorRole, string(actor.Role))
		sess.Set(middleware.SessionDisplayName, claims.DisplayName())

		slog.Info("administrator logged in", "actor_id", actor.ID, "actor_role", actor.Role)
		http.Redirect(w, r, "/api/me", http.StatusSeeOther)
	}
}

// Logout clears the login session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	sess.Delete(middleware.SessionActorID)
	sess.Delete(middleware.SessionActorRole)
	sess.Delete(middleware.SessionDisplayName)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me and reports who the caller is and what they may do
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	actor := userctx.GetActor(r.Context())
	actions := ac.gate.Actions(actor.Role)
	if actions == nil {
		actions = []access.Action{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           actor.ID,
		"role":         actor.Role,
		"display_name": userctx.GetDisplayName(r.Context()),
		"actions":      actions,
	})
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
