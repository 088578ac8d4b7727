package auth

import (
	"context"

	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"go.uber.org/fx"
)

// ProvideAuthentication builds the admin guard from the manifest.
func ProvideAuthentication(cfg manifest.Config) *Middleware {
	return New(Config{
		Secret:   cfg.Admin.JWTSecret,
		Issuer:   cfg.Admin.Issuer,
		Audience: cfg.Admin.Audience,
		Roles:    cfg.Admin.Roles,
		Leeway:   cfg.Admin.Leeway(),
	})
}

var Module = fx.Options(fx.Provide(ProvideAuthentication))

func (m *Middleware) GetUser(ctx context.Context) User {
	if user, ok := ctx.Value(userCtxKey).(User); ok {
		return user
	}
	return User{}
}

func (m *Middleware) IsAdmin(ctx context.Context) bool {
	u, ok := ctx.Value(userCtxKey).(User)
	return ok && m.allowed(u.Role.Name)
}

func (m *Middleware) IsAuthenticated(ctx context.Context) bool {
	u, ok := ctx.Value(userCtxKey).(User)
	return ok && u.Username != ""
}
