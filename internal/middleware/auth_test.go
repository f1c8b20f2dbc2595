package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, scopes []string, secret string) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops@chatech",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Scopes: scopes,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedHandler() http.Handler {
	mux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(GetPrincipal(r.Context())))
	})
	return Auth(testSecret)(RequireScope(ScopeAdmin)(mux))
}

func TestAuthValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, []string{ScopeAdmin}, testSecret))

	rec := httptest.NewRecorder()
	protectedHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ops@chatech", rec.Body.String())
}

func TestAuthMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil)

	rec := httptest.NewRecorder()
	protectedHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthWrongSecret(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, []string{ScopeAdmin}, "other-secret"))

	rec := httptest.NewRecorder()
	protectedHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMissingScope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, []string{"viewer"}, testSecret))

	rec := httptest.NewRecorder()
	protectedHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops@chatech",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Scopes: []string{ScopeAdmin},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec := httptest.NewRecorder()
	protectedHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
