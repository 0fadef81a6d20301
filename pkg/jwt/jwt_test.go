package jwt

import (
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, 2*time.Minute)
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(userID, "nova@astral.dev", "USER")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "nova@astral.dev", claims.Email)
	require.Equal(t, "USER", claims.Role)
	require.Equal(t, TokenTypeAccess, claims.TokenType)

	refreshed, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, TokenTypeRefresh, refreshed.TokenType)
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, 2*time.Minute)

	pair, err := svc.GenerateTokenPair(uuid.New(), "nova@astral.dev", "USER")
	require.NoError(t, err)

	// an access token cannot mint new pairs
	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrWrongTokenType)

	// a refresh token cannot authenticate requests
	_, err = svc.ValidateToken(pair.RefreshToken)
	require.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTService_ValidateInvalidToken(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, 2*time.Minute)

	_, err := svc.ValidateToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateExpiredToken(t *testing.T) {
	svc := NewJWTService("secret", -time.Second, -time.Second)

	pair, err := svc.GenerateTokenPair(uuid.New(), "late@astral.dev", "USER")
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateWrongSigningMethod(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, 2*time.Minute)

	claims := gjwt.MapClaims{
		"userId":    uuid.NewString(),
		"email":     "x@y.z",
		"role":      "USER",
		"tokenType": TokenTypeAccess,
		"exp":       time.Now().Add(time.Minute).Unix(),
		"iat":       time.Now().Unix(),
		"nbf":       time.Now().Unix(),
	}
	unsigned := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims)
	tokenStr, err := unsigned.SignedString(gjwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenStr)
	require.ErrorIs(t, err, ErrInvalidToken)
}
