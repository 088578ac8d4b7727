// Package tasks holds the gateway's built-in handlers. They are registered
// on the root registry directly rather than through a plugin.
package tasks

import (
	"context"
	"encoding/json"

	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"go.uber.org/zap"
)

type tenant struct {
	Name string `json:"name"`
}

// Register binds the built-ins to reg. log receives their output.
func Register(reg *hooks.Registry, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	reg.Register("tenant", "create")(hooks.NewHandler("create_tenant",
		func(_ context.Context, data json.RawMessage) error {
			log.Warn("tenant create received", zap.ByteString("data", data))
			return nil
		}))

	reg.Register("tenant", "create")(hooks.NewHandler("create_tenant_2",
		hooks.Typed(func(_ context.Context, t tenant) error {
			log.Error("tenant created", zap.String("tenant", t.Name))
			return nil
		})))
}
