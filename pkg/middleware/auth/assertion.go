package auth

import (
	"errors"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	jwt.RegisteredClaims
	UID   string   `json:"uid"`
	Roles []string `json:"roles"`
	Role  string   `json:"role"`
}

func (m *Middleware) validateBearer(raw string) (User, error) {
	if len(m.key) == 0 {
		return User{}, errors.New("admin key not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.leeway),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	var c claims
	tok, err := jwt.NewParser(opts...).ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return m.key, nil
	})
	if err != nil || !tok.Valid {
		return User{}, errors.New("invalid token")
	}

	username := firstNonEmpty(c.UID, c.Subject)
	if username == "" {
		return User{}, errors.New("missing subject")
	}
	// Prefer a role that passes the guard when the token carries several.
	role := firstNonEmpty(c.Role, first(c.Roles...))
	if i := slices.IndexFunc(c.Roles, m.allowed); i >= 0 && !m.allowed(role) {
		role = c.Roles[i]
	}

	return User{
		Username:             username,
		AuthenticationSource: AuthenticationSource{Provider: "bearer"},
		Role:                 Role{Name: role},
	}, nil
}

func (m *Middleware) allowed(role string) bool {
	_, ok := m.roles[role]
	return ok
}
