package manifest

import (
	"time"

	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/verify"
)

// Config is the top-level manifest shared by the gateway and the worker.
type Config struct {
	Server   Server             `toml:"server"`
	Hooks    Hooks              `toml:"hooks"`
	Envelope hooks.EnvelopeKeys `toml:"envelope"`
	Backend  Backend            `toml:"backend"`
	Worker   Worker             `toml:"worker"`
	Admin    Admin              `toml:"admin"`
	Log      Log                `toml:"log"`
}

type Server struct {
	Listen         string `toml:"listen"`
	TLSCert        string `toml:"tls_cert"`
	TLSKey         string `toml:"tls_key"`
	ReadTimeoutMS  int    `toml:"read_timeout_ms"`
	WriteTimeoutMS int    `toml:"write_timeout_ms"`
}

type Hooks struct {
	Path         string `toml:"path"`
	Secret       string `toml:"secret"`
	Encoding     string `toml:"encoding"`
	Digest       string `toml:"digestmod"`
	Header       string `toml:"header"`
	PluginPrefix string `toml:"plugin_prefix"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
	Builtin      bool   `toml:"builtin_tasks"`
}

// BackendKind selects where matched jobs run.
type BackendKind string

const (
	BackendInproc BackendKind = "inproc"
	BackendRelay  BackendKind = "relay"
)

type Backend struct {
	Kind         BackendKind `toml:"kind"`
	Targets      []string    `toml:"targets"`
	Workers      int         `toml:"workers"`
	QueueSize    int         `toml:"queue_size"`
	JobTimeoutMS int         `toml:"job_timeout_ms"`
}

type Worker struct {
	Address       string `toml:"address"`
	Buffer        int    `toml:"buffer"`
	MetricsListen string `toml:"metrics_listen"` // empty disables /metrics on the worker
}

type Admin struct {
	Enabled   bool     `toml:"enabled"`
	JWTSecret string   `toml:"jwt_secret"`
	Issuer    string   `toml:"issuer"`
	Audience  string   `toml:"audience"`
	Roles     []string `toml:"roles"`
	LeewaySec int      `toml:"leeway_sec"`
}

type Log struct {
	Bodies    bool     `toml:"bodies"`
	BodyPaths []string `toml:"body_paths"`
}

// Default returns a manifest that only lacks a secret.
func Default() Config {
	return Config{
		Server: Server{
			Listen:         ":4000",
			ReadTimeoutMS:  15_000,
			WriteTimeoutMS: 30_000,
		},
		Hooks: Hooks{
			Path:         "/webhook",
			Encoding:     "utf-8",
			Digest:       "sha512",
			Header:       verify.DefaultHeader,
			PluginPrefix: "nbintegrate_",
			MaxBodyBytes: 1 << 20,
			Builtin:      true,
		},
		Envelope: hooks.DefaultEnvelopeKeys(),
		Backend: Backend{
			Kind:      BackendInproc,
			Workers:   4,
			QueueSize: 1024,
		},
		Worker: Worker{Address: ":50051", Buffer: 1024},
		Admin:  Admin{Roles: []string{"admin"}, LeewaySec: 30},
	}
}

func (c Config) Verifier() verify.Config {
	return verify.Config{Secret: c.Hooks.Secret, Encoding: c.Hooks.Encoding, Digest: c.Hooks.Digest}
}

func (b Backend) JobTimeout() time.Duration {
	return time.Duration(b.JobTimeoutMS) * time.Millisecond
}

func (s Server) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMS) * time.Millisecond
}

func (s Server) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMS) * time.Millisecond
}

func (a Admin) Leeway() time.Duration {
	return time.Duration(a.LeewaySec) * time.Second
}
