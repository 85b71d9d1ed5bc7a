package httpx

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_PerIP(t *testing.T) {
	rl := NewRateLimiter(2)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("192.0.2.1:1000"))
	assert.Equal(t, http.StatusNoContent, call("192.0.2.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("192.0.2.1:1002"), "same host, new port")
	assert.Equal(t, http.StatusNoContent, call("192.0.2.2:1000"))
}

func TestRateLimiter_NilPassesThrough(t *testing.T) {
	var rl *RateLimiter
	rec := httptest.NewRecorder()
	rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestAuth_Verify(t *testing.T) {
	a := &Auth{Secret: testSecret, Issuer: "idp"}
	sign := func(c Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := Claims{Role: RoleOperator, RegisteredClaims: jwt.RegisteredClaims{
		Subject: "op-1", Issuer: "idp", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}

	p, err := a.Verify(sign(valid, jwt.SigningMethodHS256, testSecret))
	require.NoError(t, err)
	assert.Equal(t, Principal{Subject: "op-1", Role: RoleOperator}, p)

	wrongIssuer := valid
	wrongIssuer.Issuer = "other"
	_, err = a.Verify(sign(wrongIssuer, jwt.SigningMethodHS256, testSecret))
	assert.Error(t, err)

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = a.Verify(sign(expired, jwt.SigningMethodHS256, testSecret))
	assert.Error(t, err)

	_, err = a.Verify(sign(valid, jwt.SigningMethodHS512, testSecret))
	assert.Error(t, err, "only HS256 is accepted")

	noSubject := valid
	noSubject.Subject = ""
	_, err = a.Verify(sign(noSubject, jwt.SigningMethodHS256, testSecret))
	assert.Error(t, err)
}

func TestAccessLog_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewRouter(zap.New(core), []string{"*"})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })

	for _, path := range []string{"/healthz", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
}
