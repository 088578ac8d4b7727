package backend

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeydtaylor/electrician/pkg/builder"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
	"go.uber.org/zap"
)

var ErrUnknownTask = errors.New("backend: unknown task")

// TaskResolver maps a task name from the wire back to a handler.
// (*hooks.Registry).Task satisfies it.
type TaskResolver func(name string) (hooks.Handler, bool)

// Worker receives relayed jobs and runs them on a local Pool.
type Worker struct {
	log     *zap.Logger
	resolve TaskResolver
	pool    *Pool
	addr    string
	stop    func()
}

// NewWorker starts a ReceivingRelay on addr. Each received message is
// decoded, resolved by task name, and queued on pool.
func NewWorker(ctx context.Context, addr string, buffer int, resolve TaskResolver, pool *Pool, log *zap.Logger) (*Worker, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("worker: address required")
	}
	if buffer <= 0 {
		buffer = 1024
	}
	env, err := loadLinkEnv(true)
	if err != nil {
		return nil, err
	}

	w := newWorker(resolve, pool, log)
	w.addr = addr

	blog := builder.NewLogger(builder.LoggerWithDevelopment(true))
	wire := builder.NewWire[[]byte](
		ctx,
		builder.WireWithLogger[[]byte](blog),
		builder.WireWithTransformer[[]byte](func(b []byte) ([]byte, error) {
			if err := w.accept(ctx, b); err != nil {
				return b, err
			}
			return b, nil
		}),
	)

	tlsSrv := builder.NewTlsServerConfig(
		env.useTLS,
		env.tlsCrt, env.tlsKey, env.tlsCA, env.tlsName,
		tls.VersionTLS13, tls.VersionTLS13,
	)

	var rxStart func(context.Context) error
	var rxStop func()
	if env.jwks != "" {
		oauth := builder.NewReceivingRelayMergeOAuth2Options(
			builder.NewReceivingRelayOAuth2JWTOptions(env.issuer, env.jwks, env.audience, env.scopes, 300),
			nil,
		)
		rx := builder.NewReceivingRelay[[]byte](
			ctx,
			builder.ReceivingRelayWithAddress[[]byte](addr),
			builder.ReceivingRelayWithBufferSize[[]byte](uint32(buffer)),
			builder.ReceivingRelayWithLogger[[]byte](blog),
			builder.ReceivingRelayWithOutput(wire),
			builder.ReceivingRelayWithTLSConfig[[]byte](tlsSrv),
			builder.ReceivingRelayWithDecryptionKey[[]byte](env.aesKey),
			builder.ReceivingRelayWithAuthenticationOptions[[]byte](builder.NewReceivingRelayAuthenticationOptionsOAuth2(oauth)),
		)
		rxStart, rxStop = rx.Start, rx.Stop
	} else {
		rx := builder.NewReceivingRelay[[]byte](
			ctx,
			builder.ReceivingRelayWithAddress[[]byte](addr),
			builder.ReceivingRelayWithBufferSize[[]byte](uint32(buffer)),
			builder.ReceivingRelayWithLogger[[]byte](blog),
			builder.ReceivingRelayWithOutput(wire),
			builder.ReceivingRelayWithTLSConfig[[]byte](tlsSrv),
			builder.ReceivingRelayWithDecryptionKey[[]byte](env.aesKey),
		)
		rxStart, rxStop = rx.Start, rx.Stop
	}

	if err := wire.Start(ctx); err != nil {
		return nil, fmt.Errorf("worker wire start: %w", err)
	}
	if err := rxStart(ctx); err != nil {
		wire.Stop()
		return nil, fmt.Errorf("worker receiver start: %w", err)
	}
	w.stop = func() {
		rxStop()
		wire.Stop()
	}
	w.log.Info("job worker listening",
		zap.String("address", addr),
		zap.Bool("tls", env.useTLS),
		zap.Bool("aesgcm", env.aesKey != ""),
		zap.Bool("oauth", env.jwks != ""),
	)
	return w, nil
}

func newWorker(resolve TaskResolver, pool *Pool, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{log: log, resolve: resolve, pool: pool, stop: func() {}}
}

func (w *Worker) accept(ctx context.Context, b []byte) error {
	m, err := decodeMessage(b)
	if err != nil {
		w.log.Error("job message rejected", zap.Int("bytes", len(b)), zap.Error(err))
		return err
	}
	h, ok := w.resolve(m.Task)
	if !ok {
		metrics.ObserveJobRejected(m.Task)
		w.log.Error("job names an unknown task", zap.String("jobId", m.ID), zap.String("task", m.Task))
		return fmt.Errorf("%w: %q", ErrUnknownTask, m.Task)
	}
	local, err := w.pool.Submit(ctx, h, m.Payload)
	if err != nil {
		w.log.Error("job could not be queued",
			zap.String("jobId", m.ID),
			zap.String("task", m.Task),
			zap.Error(err),
		)
		return err
	}
	w.log.Debug("job received",
		zap.String("jobId", m.ID),
		zap.String("localId", local.ID),
		zap.String("task", m.Task),
		zap.Duration("transit", time.Since(m.SubmittedAt)),
	)
	return nil
}

func (w *Worker) Stop() {
	w.stop()
	w.log.Info("job worker stopped", zap.String("address", w.addr))
}
