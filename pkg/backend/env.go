package backend

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"
)

// linkEnv holds the transport settings shared by the relay and the worker.
// They stay in the environment so key material never lands in the manifest.
type linkEnv struct {
	useTLS      bool
	tlsCrt      string
	tlsKey      string
	tlsCA       string
	tlsName     string
	tlsInsecure bool

	useSnappy bool
	aesKey    string // string([]byte(32)) for builder API

	staticHeaders map[string]string

	issuer       string
	jwks         string
	clientID     string
	clientSecret string
	scopes       []string
	audience     []string
	leeway       time.Duration
}

func (e linkEnv) oauthEnabled() bool {
	return e.issuer != "" && e.clientID != "" && e.clientSecret != ""
}

func loadLinkEnv(server bool) (linkEnv, error) {
	e := linkEnv{
		useTLS:        strings.EqualFold(os.Getenv("ELECTRICIAN_TLS_ENABLE"), "true"),
		tlsCrt:        envOr("ELECTRICIAN_TLS_CLIENT_CRT", "keys/tls/client.crt"),
		tlsKey:        envOr("ELECTRICIAN_TLS_CLIENT_KEY", "keys/tls/client.key"),
		tlsCA:         envOr("ELECTRICIAN_TLS_CA", "keys/tls/ca.crt"),
		tlsInsecure:   strings.EqualFold(os.Getenv("ELECTRICIAN_TLS_INSECURE"), "true"),
		useSnappy:     strings.EqualFold(os.Getenv("ELECTRICIAN_COMPRESS"), "snappy"),
		staticHeaders: parseKV(os.Getenv("ELECTRICIAN_STATIC_HEADERS")),

		issuer:       strings.TrimSpace(os.Getenv("OAUTH_ISSUER_BASE")),
		jwks:         strings.TrimSpace(os.Getenv("OAUTH_JWKS_URL")),
		clientID:     strings.TrimSpace(os.Getenv("OAUTH_CLIENT_ID")),
		clientSecret: strings.TrimSpace(os.Getenv("OAUTH_CLIENT_SECRET")),
		scopes:       splitCSV(os.Getenv("OAUTH_SCOPES")),
		audience:     splitCSV(os.Getenv("OAUTH_REQUIRED_AUD")),
		leeway:       parseDur(envOr("OAUTH_REFRESH_LEEWAY", "20s")),
	}
	if server {
		e.useTLS = strings.EqualFold(os.Getenv("ELECTRICIAN_RX_TLS_ENABLE"), "true")
		e.tlsCrt = envOr("ELECTRICIAN_RX_TLS_SERVER_CRT", "keys/tls/server.crt")
		e.tlsKey = envOr("ELECTRICIAN_RX_TLS_SERVER_KEY", "keys/tls/server.key")
		e.tlsCA = envOr("ELECTRICIAN_RX_TLS_CA", "keys/tls/ca.crt")
		e.tlsName = os.Getenv("ELECTRICIAN_RX_TLS_SERVER_NAME")
	}

	encrypt := strings.EqualFold(os.Getenv("ELECTRICIAN_ENCRYPT"), "aesgcm")
	if k := strings.TrimSpace(os.Getenv("ELECTRICIAN_AES256_KEY_HEX")); k != "" || encrypt {
		raw, err := hex.DecodeString(k)
		if err != nil || len(raw) != 32 {
			return e, fmt.Errorf("ELECTRICIAN_AES256_KEY_HEX must be 64 hex chars (32 bytes)")
		}
		e.aesKey = string(raw)
	}
	return e, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if x := strings.TrimSpace(p); x != "" {
			out = append(out, x)
		}
	}
	return out
}

func parseKV(s string) map[string]string {
	if s == "" {
		return nil
	}
	out := map[string]string{}
	for _, kv := range strings.Split(s, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		p := strings.SplitN(kv, "=", 2)
		if len(p) == 2 {
			out[strings.TrimSpace(p[0])] = strings.TrimSpace(p[1])
		}
	}
	return out
}

func parseDur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	if d == 0 {
		d = 20 * time.Second
	}
	return d
}
