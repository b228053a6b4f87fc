package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"codequest/internal/common/security"
	"codequest/internal/domain/model"
	"codequest/internal/platform/config"
	"codequest/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: time.Hour}
	security.InitJWT()
	logger.Init("test", "error")
	os.Exit(m.Run())
}

func protected(mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(security.TokenAuth))
	r.With(mw...).Get("/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := GetUserIDFromContext(r.Context())
		w.Write([]byte(id))
	})
	return r
}

func get(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticator(t *testing.T) {
	h := protected(Authenticator)

	assert.Equal(t, http.StatusUnauthorized, get(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(h, "garbage").Code)

	tok, err := security.GenerateToken("alice", model.RoleUser)
	require.NoError(t, err)
	rec := get(h, tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestOptionalAuth_AllowsAnonymous(t *testing.T) {
	h := protected(OptionalAuth)

	rec := get(h, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAdminOnly(t *testing.T) {
	h := protected(Authenticator, AdminOnly)

	userTok, _ := security.GenerateToken("alice", model.RoleUser)
	adminTok, _ := security.GenerateToken("root", model.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, get(h, userTok).Code)
	assert.Equal(t, http.StatusOK, get(h, adminTok).Code)
}

func TestIPRateLimiter_PerIPBudget(t *testing.T) {
	rl := NewIPRateLimiter(60, 2)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("10.0.0.1"), "one token refills per second at 60/min")
}

func TestRateLimit_Responds429(t *testing.T) {
	h := RateLimit(NewIPRateLimiter(60, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
