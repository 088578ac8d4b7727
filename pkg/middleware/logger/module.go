package logger

import "go.uber.org/fx"

// Module provides the system logger and the access-log middleware built from
// the manifest's [log] section.
var Module = fx.Options(
	fx.Provide(ProvideLogger, ProvideLoggerMiddleware),
)
