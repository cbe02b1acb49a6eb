package jwt

import (
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
)

func newService(t *testing.T) Service {
	t.Helper()
	svc, err := NewJWTService("test-secret", "15m", "24h", false)
	require.NoError(t, err)
	return svc
}

func TestGenerateAccessToken_Claims(t *testing.T) {
	svc := newService(t)
	companyID := "company-1"

	token, exp, err := svc.GenerateAccessToken("user-1", "ana@acme.test", &companyID, user.RoleEmployee)
	require.NoError(t, err)
	assert.NotZero(t, exp)

	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims, err := parsed.AsMap(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "company-1", claims["company_id"])
	assert.Equal(t, "employee", claims["role"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestValidateRefreshToken(t *testing.T) {
	svc := newService(t)

	refresh, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	userID, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	access, _, err := svc.GenerateAccessToken("user-1", "a@b.test", nil, user.RolePlatformAdmin)
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = svc.ValidateRefreshToken("not-a-token")
	assert.Error(t, err)
}

func TestNewJWTService_InvalidDuration(t *testing.T) {
	_, err := NewJWTService("secret", "soon", "24h", false)
	assert.Error(t, err)
}

func TestClearRefreshTokenCookie(t *testing.T) {
	c := newService(t).ClearRefreshTokenCookie()
	assert.Equal(t, "refresh_token", c.Name)
	assert.Equal(t, -1, c.MaxAge)
	assert.True(t, c.HttpOnly)
}
