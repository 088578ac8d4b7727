// Package manifest loads the TOML manifest and its environment overrides.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Env keys that override the manifest. Secrets and broker targets usually
// arrive this way.
const (
	EnvSecret       = "WEBHOOK_SECRET"
	EnvEncoding     = "WEBHOOK_ENCODING"
	EnvDigest       = "WEBHOOK_DIGESTMOD"
	EnvPluginPrefix = "WEBHOOK_PLUGIN_PREFIX"
	EnvTargets      = "ELECTRICIAN_TARGET"
	EnvAdminSecret  = "ADMIN_JWT_SECRET"
	EnvListen       = "SERVER_LISTEN_ADDRESS"
	EnvWorkerAddr   = "WORKER_LISTEN_ADDRESS"
)

// Load reads path over Default, applies env overrides and validates for the
// gateway. A missing file is fine when the environment supplies everything.
func Load(path string) (Config, error) {
	cfg, err := read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	return cfg, nil
}

// LoadWorker is Load with the remote worker's validation.
func LoadWorker(path string) (Config, error) {
	cfg, err := read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ValidateWorker(); err != nil {
		return Config{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	return cfg, nil
}

func read(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Parse(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("manifest %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, err
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

// Parse decodes TOML into cfg, keeping values the document leaves out.
func Parse(b []byte, cfg *Config) error {
	return toml.NewDecoder(bytes.NewReader(b)).DisallowUnknownFields().Decode(cfg)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(k string, dst *string) {
		if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvSecret, &c.Hooks.Secret)
	str(EnvEncoding, &c.Hooks.Encoding)
	str(EnvDigest, &c.Hooks.Digest)
	str(EnvPluginPrefix, &c.Hooks.PluginPrefix)
	str(EnvAdminSecret, &c.Admin.JWTSecret)
	str(EnvListen, &c.Server.Listen)
	str(EnvWorkerAddr, &c.Worker.Address)

	if v, ok := lookup(EnvTargets); ok && strings.TrimSpace(v) != "" {
		c.Backend.Targets = splitCSV(v)
		if c.Backend.Kind == "" || c.Backend.Kind == BackendInproc {
			c.Backend.Kind = BackendRelay
		}
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if x := strings.TrimSpace(p); x != "" {
			out = append(out, x)
		}
	}
	return out
}
