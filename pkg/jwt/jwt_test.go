package jwt

import (
	"testing"
	"time"

	"clinic-workflow/config"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(secret string) *JWTService {
	return NewJWTService(config.JWTConfig{Secret: secret, AccessExpiry: 15 * time.Minute})
}

func TestGenerateAndValidate_RoundTripsIdentity(t *testing.T) {
	s := newTestService("s3cret")
	userID := uuid.New()

	token, issued, err := s.GenerateAccessToken(userID, "lab1@clinic.test", "Lab")
	require.NoError(t, err)
	require.NotEmpty(t, issued.TokenID)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "lab1@clinic.test", claims.Email)
	assert.Equal(t, "Lab", claims.Role)
	assert.Equal(t, issued.TokenID, claims.TokenID)
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	token, _, err := newTestService("one").GenerateAccessToken(uuid.New(), "a@clinic.test", "admin")
	require.NoError(t, err)

	_, err = newTestService("two").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	s := newTestService("s3cret")
	token, _, err := s.GenerateAccessToken(uuid.New(), "a@clinic.test", "admin")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_RejectsMissingEmail(t *testing.T) {
	s := newTestService("s3cret")
	claims := &Claims{TokenType: AccessToken, RegisteredClaims: gojwt.RegisteredClaims{
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
