// internal/auth/token_test.go
//
// Run: go test ./internal/auth -v

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken(testSecret, "admin@serverplace.su")
	require.NoError(t, err)

	claims, err := VerifyToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "admin@serverplace.su", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	tok, err := GenerateToken(testSecret, "admin@serverplace.su")
	require.NoError(t, err)

	_, err = VerifyToken("other-secret", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := VerifyToken(testSecret, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckCredentials(t *testing.T) {
	assert.True(t, CheckCredentials("a@b.ru", "pw", "a@b.ru", "pw"))
	assert.False(t, CheckCredentials("a@b.ru", "pw", "a@b.ru", "wrong"))
	assert.False(t, CheckCredentials("a@b.ru", "pw", "x@b.ru", "pw"))
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := FromContext(r.Context())
		require.NotNil(t, claims)
		w.WriteHeader(http.StatusOK)
	})
	guarded := Middleware(testSecret)(ok)

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		tok, err := GenerateToken(testSecret, "admin@serverplace.su")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: tok})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer", func(t *testing.T) {
		tok, err := GenerateToken(testSecret, "admin@serverplace.su")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid token"}`, rec.Body.String())
	})
}
