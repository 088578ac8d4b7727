package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, key string, c jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func guarded(m *Middleware) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(m.GetUser(r.Context()).Username))
	})
	return m.Middleware()(m.Require()(ok))
}

func call(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/hooks", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequire(t *testing.T) {
	m := New(Config{Secret: "k", Issuer: "hooks", Audience: "admin-api", Roles: []string{"admin"}})
	h := guarded(m)
	now := time.Now()
	base := func(extra jwt.MapClaims) jwt.MapClaims {
		c := jwt.MapClaims{
			"sub": "ops",
			"iss": "hooks",
			"aud": "admin-api",
			"iat": now.Unix(),
			"exp": now.Add(time.Minute).Unix(),
		}
		for k, v := range extra {
			c[k] = v
		}
		return c
	}

	rec := call(h, sign(t, "k", base(jwt.MapClaims{"role": "admin"})))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops", rec.Body.String())

	assert.Equal(t, http.StatusOK, call(h, sign(t, "k", base(jwt.MapClaims{"roles": []string{"viewer", "admin"}}))).Code)
	assert.Equal(t, http.StatusForbidden, call(h, sign(t, "k", base(jwt.MapClaims{"role": "viewer"}))).Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, sign(t, "other", base(jwt.MapClaims{"role": "admin"}))).Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, sign(t, "k", base(jwt.MapClaims{"role": "admin", "iss": "evil"}))).Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, sign(t, "k", base(jwt.MapClaims{"role": "admin", "aud": "else"}))).Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, sign(t, "k", base(jwt.MapClaims{"role": "admin", "exp": now.Add(-time.Hour).Unix()}))).Code)

	noExp := base(jwt.MapClaims{"role": "admin"})
	delete(noExp, "exp")
	assert.Equal(t, http.StatusUnauthorized, call(h, sign(t, "k", noExp)).Code)
}

func TestNew_EmptySecretRejectsEverything(t *testing.T) {
	m := New(Config{Roles: []string{"admin"}})
	tok := sign(t, "anything", jwt.MapClaims{"sub": "x", "role": "admin", "exp": time.Now().Add(time.Minute).Unix()})
	assert.Equal(t, http.StatusUnauthorized, call(guarded(m), tok).Code)
}
