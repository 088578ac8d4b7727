package backend

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/joeydtaylor/electrician/pkg/builder"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
	"go.uber.org/zap"
)

// Relay forwards jobs to remote workers over an Electrician ForwardRelay.
// Builder internals are captured by closures, never stored on the struct.
type Relay struct {
	log     *zap.Logger
	targets []string
	send    func(context.Context, []byte) error
	stop    func()
}

// NewRelay starts a byte wire feeding a ForwardRelay to targets. Transport
// options (TLS, snappy, AES-GCM, static headers, OAuth2 client credentials)
// come from the ELECTRICIAN_* and OAUTH_* environment.
func NewRelay(ctx context.Context, targets []string, log *zap.Logger) (*Relay, error) {
	if len(targets) == 0 {
		return nil, errors.New("relay: at least one target is required")
	}
	env, err := loadLinkEnv(false)
	if err != nil {
		return nil, err
	}

	blog := builder.NewLogger(builder.LoggerWithDevelopment(true))
	wire := builder.NewWire[[]byte](ctx, builder.WireWithLogger[[]byte](blog))

	perf := builder.NewPerformanceOptions(env.useSnappy, builder.COMPRESS_SNAPPY)
	sec := builder.NewSecurityOptions(env.aesKey != "", builder.ENCRYPTION_AES_GCM)
	tlsCfg := builder.NewTlsClientConfig(
		env.useTLS,
		env.tlsCrt, env.tlsKey, env.tlsCA,
		tls.VersionTLS13, tls.VersionTLS13,
	)

	var relayStart func(context.Context) error
	var relayStop func()
	if env.oauthEnabled() {
		authOpts := builder.NewForwardRelayAuthenticationOptionsOAuth2(nil)
		if env.jwks != "" {
			authOpts = builder.NewForwardRelayAuthenticationOptionsOAuth2(
				builder.NewForwardRelayOAuth2JWTOptions(env.issuer, env.jwks, env.audience, env.scopes, 300),
			)
		}
		authHTTP := &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion:         tls.VersionTLS13,
					MaxVersion:         tls.VersionTLS13,
					InsecureSkipVerify: env.tlsInsecure, // dev only
				},
			},
		}
		ts := builder.NewForwardRelayRefreshingClientCredentialsSource(
			env.issuer, env.clientID, env.clientSecret, env.scopes, env.leeway, authHTTP,
		)
		f := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](blog),
			builder.ForwardRelayWithTarget[[]byte](targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, env.aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](env.staticHeaders),
			builder.ForwardRelayWithAuthenticationOptions[[]byte](authOpts),
			builder.ForwardRelayWithOAuthBearer[[]byte](ts),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart, relayStop = f.Start, f.Stop
	} else {
		f := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](blog),
			builder.ForwardRelayWithTarget[[]byte](targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, env.aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](env.staticHeaders),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart, relayStop = f.Start, f.Stop
	}

	if err := wire.Start(ctx); err != nil {
		return nil, fmt.Errorf("relay wire start: %w", err)
	}
	if err := relayStart(ctx); err != nil {
		wire.Stop()
		return nil, fmt.Errorf("relay start: %w", err)
	}

	r := newRelay(func(ctx context.Context, b []byte) error { return wire.Submit(ctx, b) }, log)
	r.targets = targets
	r.stop = func() {
		relayStop()
		wire.Stop()
	}
	r.log.Info("job relay started",
		zap.Strings("targets", targets),
		zap.Bool("tls", env.useTLS),
		zap.Bool("snappy", env.useSnappy),
		zap.Bool("aesgcm", env.aesKey != ""),
		zap.Bool("oauth", env.oauthEnabled()),
	)
	return r, nil
}

func newRelay(send func(context.Context, []byte) error, log *zap.Logger) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{log: log, send: send, stop: func() {}}
}

// Submit encodes the job and hands it to the wire. A nil error means the
// message was accepted locally, not that a worker has it.
func (r *Relay) Submit(ctx context.Context, h hooks.Handler, payload []byte) (hooks.Handle, error) {
	m := Message{
		ID:          uuid.NewString(),
		Task:        h.Name,
		Payload:     payload,
		SubmittedAt: time.Now().UTC(),
	}
	b, err := encodeMessage(m)
	if err != nil {
		return hooks.Handle{}, fmt.Errorf("relay: encode job: %w", err)
	}
	if err := r.send(ctx, b); err != nil {
		return hooks.Handle{}, fmt.Errorf("relay: submit: %w", err)
	}
	metrics.ObserveJobForwarded(h.Name)
	r.log.Debug("job forwarded", zap.String("jobId", m.ID), zap.String("task", m.Task))
	return hooks.Handle{ID: m.ID, Task: m.Task, Backend: "relay"}, nil
}

func (r *Relay) Stop() {
	r.stop()
	r.log.Info("job relay stopped", zap.Strings("targets", r.targets))
}

var _ hooks.Backend = (*Relay)(nil)
