// Package verify authenticates webhook bodies with a keyed hash before the
// gateway interprets them.
package verify

import (
	"crypto/hmac"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
)

const DefaultHeader = "X-Hook-Signature"

// Config mirrors the sender's webhook settings.
type Config struct {
	Secret   string // shared secret
	Encoding string // text encoding of Secret; default utf-8
	Digest   string // hashlib-style name; default sha512
}

// Verifier recomputes the sender's tag over a raw body.
type Verifier struct {
	key    []byte
	digest func() hash.Hash
	name   string
}

func New(cfg Config) (*Verifier, error) {
	name := cfg.Digest
	if name == "" {
		name = "sha512"
	}
	digest, err := digestFor(name)
	if err != nil {
		return nil, err
	}
	enc, err := encoderFor(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	key, err := enc(cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("verify: encode secret: %w", err)
	}
	return &Verifier{key: key, digest: digest, name: name}, nil
}

// Sign returns the lowercase hex tag for body.
func (v *Verifier) Sign(body []byte) string {
	m := hmac.New(v.digest, v.key)
	m.Write(body)
	return hex.EncodeToString(m.Sum(nil))
}

// Verify reports whether tag is exactly the hex tag of body. The comparison is
// on the hex text, as the sender produces it.
func (v *Verifier) Verify(body []byte, tag string) bool {
	if tag == "" {
		return false
	}
	want := v.Sign(body)
	return subtle.ConstantTimeCompare([]byte(want), []byte(tag)) == 1
}

// Digest is the configured digest name.
func (v *Verifier) Digest() string { return v.name }
