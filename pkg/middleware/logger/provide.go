package logger

import (
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"go.uber.org/zap"
)

// ProvideLoggerMiddleware applies the manifest's [log] section.
func ProvideLoggerMiddleware(cfg manifest.Config) *Middleware {
	AddBodyLogPaths(cfg.Log.BodyPaths...)
	return &Middleware{bodies: cfg.Log.Bodies}
}

func ProvideLogger() *zap.Logger { return NewLog("system.log") }
