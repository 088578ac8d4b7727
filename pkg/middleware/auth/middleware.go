// Package auth guards the admin surface with HS256 bearer tokens.
package auth

import (
	"strings"
	"time"
)

type Config struct {
	Secret   string
	Issuer   string
	Audience string
	Roles    []string // any of these may pass Require()
	Leeway   time.Duration
}

type Middleware struct {
	key      []byte
	issuer   string
	audience string
	roles    map[string]struct{}
	leeway   time.Duration
}

// New returns a Middleware. An empty secret yields one that rejects every token.
func New(cfg Config) *Middleware {
	m := &Middleware{
		key:      []byte(cfg.Secret),
		issuer:   strings.TrimSpace(cfg.Issuer),
		audience: strings.TrimSpace(cfg.Audience),
		roles:    map[string]struct{}{},
		leeway:   cfg.Leeway,
	}
	for _, r := range cfg.Roles {
		if r = strings.TrimSpace(r); r != "" {
			m.roles[r] = struct{}{}
		}
	}
	return m
}
