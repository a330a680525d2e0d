package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/minimart-labs/minimart-platform/internal/api/middleware"
	"github.com/minimart-labs/minimart-platform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTKey = "test-secret-key-for-unit-tests"

func signToken(t *testing.T, key string, expiresAt time.Time) string {
	t.Helper()

	claims := &models.Claims{
		UserID: "user-1",
		Email:  "jane@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)

	return token
}

func TestAuthenticate(t *testing.T) {
	authMiddleware := middleware.NewAuthMiddleware([]byte(testJWTKey))

	newProtected := func(reached *bool, gotClaims **models.Claims) http.Handler {
		return authMiddleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*reached = true
			*gotClaims = middleware.ClaimsFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
	}

	t.Run("Success - Valid Token", func(t *testing.T) {
		// Arrange
		var reached bool
		var claims *models.Claims
		handler := newProtected(&reached, &claims)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTKey, time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, reached)
		require.NotNil(t, claims)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "jane@example.com", claims.Email)
	})

	t.Run("Failure - Missing Header", func(t *testing.T) {
		// Arrange
		var reached bool
		var claims *models.Claims
		handler := newProtected(&reached, &claims)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		rec := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("Failure - Malformed Header", func(t *testing.T) {
		// Arrange
		var reached bool
		var claims *models.Claims
		handler := newProtected(&reached, &claims)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Token abc123")
		rec := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("Failure - Wrong Signing Key", func(t *testing.T) {
		// Arrange
		var reached bool
		var claims *models.Claims
		handler := newProtected(&reached, &claims)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "some-other-key", time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("Failure - Expired Token", func(t *testing.T) {
		// Arrange
		var reached bool
		var claims *models.Claims
		handler := newProtected(&reached, &claims)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTKey, time.Now().Add(-time.Minute)))
		rec := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("Failure - Garbage Token", func(t *testing.T) {
		// Arrange
		var reached bool
		var claims *models.Claims
		handler := newProtected(&reached, &claims)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})
}
