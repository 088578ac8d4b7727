// Package hooks is the routing core of the gateway.
//
// Handlers are keyed by (model, event). Plugins accumulate them in a
// PluginRegistry that can never dispatch; the process-wide Registry merges
// every plugin at startup, wraps each handler as a Job bound to a Backend,
// and on Execute submits the matched jobs without waiting for them.
//
// A task name resolves to one handler across the whole registry: the same
// Handler value may sit under several keys, but a different handler reusing
// the name is refused. Remote workers rely on this to run what was matched.
//
// A plugin package typically looks like:
//
//	var Tasks = hooks.NewPluginRegistry("Example")
//
//	var CreateTenant = Tasks.Register("tenant", "created")(
//		hooks.NewHandler("example.create_tenant", createTenant),
//	)
//
//	func init() {
//		hooks.Provide("nbintegrate_example", func() (any, error) { return Tasks, nil })
//	}
package hooks
