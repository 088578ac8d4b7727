// Package bundlefx groups the middleware providers every binary shares.
package bundlefx

import (
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
	"go.uber.org/fx"
)

// Module provides *auth.Middleware, *logger.Middleware, the system
// *zap.Logger and the `name:"metrics"` handler. It needs a manifest.Config.
var Module = fx.Options(
	auth.Module,
	logger.Module,
	metrics.Module,
)
