package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthenticator_RequiresSecret(t *testing.T) {
	_, err := NewAuthenticator("  ")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	a, err := NewAuthenticator("secret")
	require.NoError(t, err)

	token, err := a.GenerateAccessToken("user-1", "u@example.com", "Ayu", 0)
	require.NoError(t, err)

	claims, err := a.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestParseToken_Rejects(t *testing.T) {
	a, _ := NewAuthenticator("secret")
	other, _ := NewAuthenticator("other-secret")

	foreign, err := other.GenerateAccessToken("user-1", "", "", time.Minute)
	require.NoError(t, err)
	_, err = a.ParseToken(foreign)
	assert.Error(t, err, "wrong signature")

	expired, err := a.GenerateAccessToken("user-1", "", "", -time.Minute)
	require.NoError(t, err)
	_, err = a.ParseToken(expired)
	assert.Error(t, err, "expired")

	noUser, err := a.GenerateAccessToken("", "", "", time.Minute)
	require.NoError(t, err)
	_, err = a.ParseToken(noUser)
	assert.Error(t, err, "missing user id")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &JwtCustomClaims{UserID: "user-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.ParseToken(unsigned)
	assert.Error(t, err, "alg none")
}

func TestJwtAuthMiddleware(t *testing.T) {
	a, _ := NewAuthenticator("secret")
	token, err := a.GenerateAccessToken("user-1", "", "", time.Minute)
	require.NoError(t, err)

	handler := a.JwtAuthMiddleware(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("user_id").(string))
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer " + token, http.StatusOK, "user-1"},
		{"missing header", "", http.StatusUnauthorized, "Missing bearer token"},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized, "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/mealplan/fallback", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			require.NoError(t, handler(e.NewContext(req, rec)))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}
