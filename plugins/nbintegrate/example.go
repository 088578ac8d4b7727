// Package nbintegrate is a sample plugin. Link it into a binary with
// a blank import; discovery picks it up by its name prefix.
package nbintegrate

import (
	"context"

	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"go.uber.org/zap"
)

// Name is the catalog entry; its "nbintegrate_" prefix is what discovery matches.
const Name = "nbintegrate_example"

type tenant struct {
	Name string `json:"name"`
}

// New builds the plugin's task registry. Handlers log through zap.L(), which
// the host replaces with its system logger.
func New() *hooks.PluginRegistry {
	p := hooks.NewPluginRegistry("Example")
	p.Register("tenant", "created")(hooks.NewHandler("example_create_tenant",
		hooks.Typed(func(_ context.Context, t tenant) error {
			zap.L().Warn("tenant was created", zap.String("plugin", "Example"), zap.String("tenant", t.Name))
			return nil
		})))
	return p
}

func init() {
	hooks.Provide(Name, func() (any, error) { return New(), nil })
}
