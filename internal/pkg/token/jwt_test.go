package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brasero/internal/pkg/token"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := token.NewService("segredo-de-teste", 15*time.Minute)

	signed, err := svc.GenerateToken("user-1", "admin")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, token.Issuer, claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateToken_Fail_WrongSecret(t *testing.T) {
	signed, err := token.NewService("segredo-a", time.Minute).GenerateToken("user-1", "user")
	require.NoError(t, err)

	_, err = token.NewService("segredo-b", time.Minute).ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateToken_Fail_Expired(t *testing.T) {
	signed, err := token.NewService("segredo", -time.Minute).GenerateToken("user-1", "user")
	require.NoError(t, err)

	_, err = token.NewService("segredo", time.Minute).ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateToken_Fail_NoneAlgorithm(t *testing.T) {
	claims := token.CustomClaims{UserID: "user-1", Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Issuer: token.Issuer}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = token.NewService("segredo", time.Minute).ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestNewRefreshToken(t *testing.T) {
	a, err := token.NewRefreshToken()
	require.NoError(t, err)
	b, err := token.NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, token.RefreshTokenBytes*2)
	assert.Regexp(t, "^[0-9a-f]+$", a)
	assert.NotEqual(t, a, b)
}
