package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zippybox-server/config"
)

var testJWT = &config.JWTConfig{Secret: "test-secret", Expiration: "1h"}

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateToken("user_42", testJWT)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testJWT)
	require.NoError(t, err)
	assert.Equal(t, "user_42", claims.UserID)
	assert.Equal(t, "user_42", claims.Subject)
}

func TestGenerateTokenRequiresUser(t *testing.T) {
	_, err := GenerateToken("", testJWT)
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("user_42", &config.JWTConfig{Secret: "other"})
	require.NoError(t, err)

	_, err = ValidateToken(token, testJWT)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken("user_42", &config.JWTConfig{Secret: testJWT.Secret, Expiration: "-1m"})
	require.NoError(t, err)

	_, err = ValidateToken(token, testJWT)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UserID: "user_42", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testJWT.Secret))
	require.NoError(t, err)

	_, err = ValidateToken(token, testJWT)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", testJWT)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
