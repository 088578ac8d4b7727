// Package core mounts the gateway's HTTP surface.
package core

import (
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-hooks/pkg/transport/httpx"
	"github.com/joeydtaylor/steeze-hooks/pkg/verify"
	"go.uber.org/zap"
)

type BuildDeps struct {
	Auth     *auth.Middleware
	LogMW    *logger.Middleware
	Metrics  http.Handler
	Router   httpx.Router
	Registry *hooks.Registry
	Verifier *verify.Verifier
	Log      *zap.Logger
}

func BuildRouter(cfg manifest.Config, d BuildDeps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"), hmetrics.Collect())
	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
	}
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware(d.Auth))
	}

	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics)
	}

	// The verifier reads the body first; nothing downstream sees unverified bytes.
	wh := verify.Middleware(d.Verifier, cfg.Hooks.Header, cfg.Hooks.MaxBodyBytes, log)(
		&webhook{reg: d.Registry, keys: cfg.Envelope, log: log},
	)
	r.Post(cfg.Hooks.Path, wh)

	if cfg.Admin.Enabled && d.Auth != nil {
		r.Get("/hooks", d.Auth.Require()(listRoutes(d.Registry)))
	}
	return r.Mux()
}
