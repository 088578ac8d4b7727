package verify

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	ErrUnknownDigest   = errors.New("verify: unknown digest")
	ErrUnknownEncoding = errors.New("verify: unknown text encoding")
)

// Digest names follow hashlib so existing sender configs carry over.
var digests = map[string]func() hash.Hash{
	"md5":        md5.New,
	"sha1":       sha1.New,
	"sha224":     sha256.New224,
	"sha256":     sha256.New,
	"sha384":     sha512.New384,
	"sha512":     sha512.New,
	"sha512_224": sha512.New512_224,
	"sha512_256": sha512.New512_256,
	"sha3_224":   sha3.New224,
	"sha3_256":   sha3.New256,
	"sha3_384":   sha3.New384,
	"sha3_512":   sha3.New512,
	"blake2b": func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	},
	"blake2s": func() hash.Hash {
		h, _ := blake2s.New256(nil)
		return h
	},
}

func digestFor(name string) (func() hash.Hash, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	if fn, ok := digests[key]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, name)
}

// aliases covers the spellings IANA does not register.
var aliases = map[string]string{
	"utf8":    "utf-8",
	"latin-1": "iso-8859-1",
	"latin_1": "iso-8859-1",
	"ascii":   "us-ascii",
}

// secretEncoder turns the configured secret into key bytes.
type secretEncoder func(string) ([]byte, error)

func encoderFor(name string) (secretEncoder, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "utf-8"
	}
	if a, ok := aliases[key]; ok {
		key = a
	}
	switch key {
	case "utf-8":
		return fromEncoding(unicode.UTF8), nil
	case "us-ascii":
		return encodeASCII, nil
	}
	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: %q is registered but unsupported", ErrUnknownEncoding, name)
	}
	return fromEncoding(enc), nil
}

func fromEncoding(enc encoding.Encoding) secretEncoder {
	return func(s string) ([]byte, error) {
		return enc.NewEncoder().Bytes([]byte(s))
	}
}

func encodeASCII(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return nil, fmt.Errorf("verify: secret is not ascii at byte %d", i)
		}
	}
	return []byte(s), nil
}
