package verify

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = `{"model":"tenant","event":"created","data":{"name":"acme"}}`

func reference(secret, b string) string {
	m := hmac.New(sha512.New, []byte(secret))
	m.Write([]byte(b))
	return hex.EncodeToString(m.Sum(nil))
}

func TestVerify_AcceptsOnlyTheExactTag(t *testing.T) {
	v, err := New(Config{Secret: "s", Encoding: "utf-8", Digest: "sha512"})
	require.NoError(t, err)

	tag := reference("s", body)
	assert.Equal(t, tag, v.Sign([]byte(body)))
	assert.True(t, v.Verify([]byte(body), tag))
	assert.False(t, v.Verify([]byte(body), ""))
	assert.False(t, v.Verify([]byte(body), strings.ToUpper(tag)))
}

func TestVerify_RejectsSingleBitMutations(t *testing.T) {
	v, err := New(Config{Secret: "s"})
	require.NoError(t, err)
	tag := v.Sign([]byte(body))

	for i := 0; i < len(body); i++ {
		for bit := 0; bit < 8; bit++ {
			b := []byte(body)
			b[i] ^= 1 << bit
			require.False(t, v.Verify(b, tag), "body byte %d bit %d", i, bit)
		}
	}
	for i := 0; i < len(tag); i++ {
		for bit := 0; bit < 8; bit++ {
			b := []byte(tag)
			b[i] ^= 1 << bit
			require.False(t, v.Verify([]byte(body), string(b)), "tag byte %d bit %d", i, bit)
		}
	}
}

func TestNew_DigestsAndEncodings(t *testing.T) {
	v, err := New(Config{Secret: "s", Digest: "SHA256"})
	require.NoError(t, err)
	m := hmac.New(sha256.New, []byte("s"))
	m.Write([]byte(body))
	assert.Equal(t, hex.EncodeToString(m.Sum(nil)), v.Sign([]byte(body)))

	for _, d := range []string{"md5", "sha1", "sha224", "sha384", "sha512-256", "sha3_256", "blake2b", "blake2s"} {
		_, err := New(Config{Secret: "s", Digest: d})
		assert.NoError(t, err, d)
	}
	_, err = New(Config{Secret: "s", Digest: "whirlpool"})
	assert.ErrorIs(t, err, ErrUnknownDigest)

	// latin-1 encodes é as a single byte, utf-8 as two.
	l1, err := New(Config{Secret: "é", Encoding: "latin-1"})
	require.NoError(t, err)
	u8, err := New(Config{Secret: "é", Encoding: "utf8"})
	require.NoError(t, err)
	assert.Equal(t, reference("\xe9", body), l1.Sign([]byte(body)))
	assert.Equal(t, reference("é", body), u8.Sign([]byte(body)))

	_, err = New(Config{Secret: "é", Encoding: "ascii"})
	assert.Error(t, err)
	_, err = New(Config{Secret: "s", Encoding: "klingon"})
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestMiddleware(t *testing.T) {
	v, err := New(Config{Secret: "s"})
	require.NoError(t, err)

	var reached int
	var seen string
	h := Middleware(v, "", 1<<10, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached++
		b, _ := io.ReadAll(r.Body)
		seen = string(b)
		w.WriteHeader(http.StatusOK)
	}))

	do := func(b, tag string) int {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(b))
		if tag != "" {
			req.Header.Set(DefaultHeader, tag)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, do(body, ""))
	assert.Equal(t, http.StatusForbidden, do(body, reference("wrong", body)))
	assert.Equal(t, 0, reached)

	assert.Equal(t, http.StatusOK, do(body, v.Sign([]byte(body))))
	assert.Equal(t, 1, reached)
	assert.Equal(t, body, seen)

	big := strings.Repeat("x", 2<<10)
	assert.Equal(t, http.StatusRequestEntityTooLarge, do(big, v.Sign([]byte(big))))
	assert.Equal(t, 1, reached)
}
