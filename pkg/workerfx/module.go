// Package workerfx runs relayed jobs: a receiving relay feeding a local pool,
// resolved against the same registry the gateway builds.
package workerfx

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-hooks/pkg/backend"
	"github.com/joeydtaylor/steeze-hooks/pkg/bundlefx"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/serverfx"
	"github.com/joeydtaylor/steeze-hooks/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Service         string
	ManifestEnv     string
	DefaultManifest string
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }

func defaultConfig() Config {
	return Config{
		Service:         "hookworker",
		ManifestEnv:     "HOOKS_MANIFEST",
		DefaultManifest: "manifest.toml",
	}
}

func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(provideManifest),
		bundlefx.Module,
		fx.Invoke(func(zl *zap.Logger) { zap.ReplaceGlobals(zl) }),
		fx.Provide(providePool),
		fx.Provide(func(p *backend.Pool) hooks.Backend { return p }),
		fx.Provide(serverfx.ProvideRegistry),
		fx.Invoke(startWorker),
		fx.Invoke(serveMetrics),
	)
}

func provideManifest(c Config, zl *zap.Logger) manifest.Config {
	path := c.DefaultManifest
	if v := os.Getenv(c.ManifestEnv); v != "" {
		path = v
	}
	m, err := manifest.LoadWorker(path)
	if err != nil {
		zl.Fatal("manifest load failed", zap.Error(err), zap.String("path", path))
	}
	return m
}

func providePool(lc fx.Lifecycle, m manifest.Config, zl *zap.Logger) *backend.Pool {
	p := backend.NewPool(backend.PoolConfig{
		Workers:    m.Backend.Workers,
		QueueSize:  m.Backend.QueueSize,
		JobTimeout: m.Backend.JobTimeout(),
	}, zl)
	lc.Append(fx.Hook{OnStart: p.Start, OnStop: p.Stop})
	return p
}

// startWorker opens the receiving relay after the pool is running and closes
// it before the pool drains.
func startWorker(lc fx.Lifecycle, c Config, m manifest.Config, reg *hooks.Registry, p *backend.Pool, zl *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	var w *backend.Worker
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var err error
			w, err = backend.NewWorker(ctx, m.Worker.Address, m.Worker.Buffer, reg.Task, p, zl)
			if err != nil {
				cancel()
				return err
			}
			zl.Info("worker ready",
				zap.String("service", c.Service),
				zap.Int("tasks", reg.Len()),
			)
			return nil
		},
		OnStop: func(context.Context) error {
			if w != nil {
				w.Stop()
			}
			cancel()
			return nil
		},
	})
}

type metricsDeps struct {
	fx.In
	Manifest manifest.Config
	Metrics  http.Handler `name:"metrics"`
	Log      *zap.Logger
}

func serveMetrics(lc fx.Lifecycle, d metricsDeps) {
	addr := d.Manifest.Worker.MetricsListen
	if addr == "" {
		return
	}
	r := httpx.NewChi()
	r.Use(chimd.Heartbeat("/ping"))
	r.Get("/metrics", d.Metrics)
	srv := &http.Server{Addr: addr, Handler: r.Mux(), ReadTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.Log.Info("metrics listening", zap.String("addr", addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					d.Log.Error("metrics server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: srv.Shutdown,
	})
}
