package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/steeze-hooks/pkg/backend"
	"github.com/joeydtaylor/steeze-hooks/pkg/bundlefx"
	"github.com/joeydtaylor/steeze-hooks/pkg/core"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-hooks/pkg/tasks"
	"github.com/joeydtaylor/steeze-hooks/pkg/transport/httpx"
	"github.com/joeydtaylor/steeze-hooks/pkg/verify"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service         string // for logs only
	ManifestEnv     string // e.g., HOOKS_MANIFEST
	DefaultManifest string // e.g., "manifest.toml"
	TLSCertEnv      string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv       string // SSL_SERVER_KEY
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}

func defaultConfig() Config {
	return Config{
		Service:         "hookgate",
		ManifestEnv:     "HOOKS_MANIFEST",
		DefaultManifest: "manifest.toml",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
	}
}

// Module returns the complete gateway. Plugins are linked by blank imports in
// the main package; discovery runs while the registry is constructed, so it
// has finished before the server accepts a request.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(provideManifest),
		bundlefx.Module,
		fx.Invoke(useGlobalLogger),
		fx.Provide(httpx.NewChi),
		fx.Provide(provideVerifier),
		fx.Provide(provideBackend),
		fx.Provide(ProvideRegistry),
		fx.Provide(fx.Annotate(provideRouter, fx.ResultTags(`name:"app"`))),
		fx.Invoke(registerHooks),
	)
}

// ---------- Providers ----------

func provideManifest(c Config, zl *zap.Logger) manifest.Config {
	path := envOr(c.ManifestEnv, c.DefaultManifest)
	m, err := manifest.Load(path)
	if err != nil {
		zl.Fatal("manifest load failed", zap.Error(err), zap.String("path", path))
	}
	return m
}

// useGlobalLogger hands plugins the system logger through zap.L().
func useGlobalLogger(zl *zap.Logger) { zap.ReplaceGlobals(zl) }

func provideVerifier(m manifest.Config) (*verify.Verifier, error) {
	return verify.New(m.Verifier())
}

// provideBackend picks where jobs run. Both kinds are stopped with the app.
func provideBackend(lc fx.Lifecycle, m manifest.Config, zl *zap.Logger) (hooks.Backend, error) {
	switch m.Backend.Kind {
	case manifest.BackendRelay:
		r, err := backend.NewRelay(context.Background(), m.Backend.Targets, zl)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(r.Stop))
		return r, nil
	default:
		p := backend.NewPool(backend.PoolConfig{
			Workers:    m.Backend.Workers,
			QueueSize:  m.Backend.QueueSize,
			JobTimeout: m.Backend.JobTimeout(),
		}, zl)
		lc.Append(fx.Hook{OnStart: p.Start, OnStop: p.Stop})
		return p, nil
	}
}

// ProvideRegistry builds the root registry: built-in tasks first, then every
// linked plugin under the configured prefix. The worker builds the same one
// so task names resolve identically on both sides.
func ProvideRegistry(m manifest.Config, b hooks.Backend, zl *zap.Logger) *hooks.Registry {
	reg := hooks.NewRegistry(b, hooks.WithLogger(zl))
	if m.Hooks.Builtin {
		tasks.Register(reg, zl)
	}
	hooks.Discover(reg, hooks.DefaultCatalog(), m.Hooks.PluginPrefix, zl)
	return reg
}

type routerDeps struct {
	fx.In

	Manifest manifest.Config
	AuthMW   *auth.Middleware
	LogMW    *logger.Middleware
	Metrics  http.Handler `name:"metrics"`
	R        httpx.Router
	Registry *hooks.Registry
	Verifier *verify.Verifier
	Log      *zap.Logger
}

func provideRouter(d routerDeps) http.Handler {
	h := core.BuildRouter(d.Manifest, core.BuildDeps{
		Auth:     d.AuthMW,
		LogMW:    d.LogMW,
		Metrics:  d.Metrics,
		Router:   d.R,
		Registry: d.Registry,
		Verifier: d.Verifier,
		Log:      d.Log,
	})
	_ = d.R.Walk(func(method, route string) error {
		d.Log.Info("route mounted", zap.String("method", method), zap.String("route", route))
		return nil
	})
	return h
}

// ---------- Lifecycle ----------

type serverDeps struct {
	fx.In
	Manifest manifest.Config
	Logger   *zap.Logger
	App      http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, cfg Config, d serverDeps) {
	addr := d.Manifest.Server.Listen
	cert := envOr(cfg.TLSCertEnv, d.Manifest.Server.TLSCert)
	key := envOr(cfg.TLSKeyEnv, d.Manifest.Server.TLSKey)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  d.Manifest.Server.ReadTimeout(),
		WriteTimeout: d.Manifest.Server.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", cfg.Service),
					zap.String("addr", addr),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)",
					zap.String("service", cfg.Service),
					zap.String("addr", addr),
				)
				go func() {
					srv.TLSConfig = nil
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", cfg.Service))
			return srv.Shutdown(ctx)
		},
	})
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
