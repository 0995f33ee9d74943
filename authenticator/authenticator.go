package authenticator

import (
	"context"
	"errors"
	"fmt"

	"github.com/blogem/admin-console/models"
)

// ErrNoRole is returned when an identity carries no console role
var ErrNoRole = errors.New("identity carries no console role")

// Token represents an authentication token
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       int64
}

// Claims represents user claims from the ID token
type Claims map[string]any

// Provider interface abstracts OAuth provider operations
type Provider interface {
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*Token, error)
	GetClaims(ctx context.Context, token *Token) (Claims, error)
}

// Actor builds the acting administrator from verified claims. The role is
// read from roleClaim, which may hold a string or a list of strings; the
// first known role in a list wins.
func (c Claims) Actor(roleClaim string) (models.Actor, error) {
	sub, _ := c["sub"].(string)
	if sub == "" {
		return models.Actor{}, errors.New("claims carry no subject")
	}

	var candidates []string
	switch v := c[roleClaim].(type) {
	case string:
		candidates = []string{v}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				candidates = append(candidates, s)
			}
		}
	}

	for _, candidate := range candidates {
		if role := models.Role(candidate); role.IsValid() {
			return models.Actor{ID: sub, Role: role}, nil
		}
	}
	return models.Actor{}, fmt.Errorf("claim %q of %s: %w", roleClaim, sub, ErrNoRole)
}

// DisplayName picks the friendliest name the claims offer
func (c Claims) DisplayName() string {
	for _, key := range []string{"nickname", "name", "email", "sub"} {
		if v, ok := c[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
