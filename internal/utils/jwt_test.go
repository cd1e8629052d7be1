package utils

import (
	"testing"
	"time"

	"project_tracker/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTUtil_GenerateToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "projects-api")

	tokenString, err := jwtUtil.GenerateToken("a@x.com", model.RoleGuest)

	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := jwtUtil.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, model.RoleGuest, claims.Role)
	assert.Equal(t, "projects-api", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, 5*time.Second)
}

func TestJWTUtil_DefaultIssuer(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "")
	assert.Equal(t, DefaultIssuer, jwtUtil.Issuer())

	tokenString, err := jwtUtil.GenerateToken("a@x.com", model.RoleAdmin)
	require.NoError(t, err)

	claims, err := jwtUtil.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "HelloWorld", claims.Issuer)
}

func TestJWTUtil_ValidateToken_InvalidToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "")

	_, err := jwtUtil.ValidateToken("invalid.token.string")
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_ExpiredToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "")
	past := jwtUtil.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })

	tokenString, err := past.GenerateToken("a@x.com", model.RoleVerified)
	require.NoError(t, err)

	_, err = jwtUtil.ValidateToken(tokenString)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTUtil_ValidateToken_JustBeforeExpiry(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "")
	issued := jwtUtil.WithClock(func() time.Time { return time.Now().Add(-59 * time.Minute) })

	tokenString, err := issued.GenerateToken("a@x.com", model.RoleVerified)
	require.NoError(t, err)

	_, err = jwtUtil.ValidateToken(tokenString)
	assert.NoError(t, err)
}

func TestJWTUtil_ValidateToken_WrongSecret(t *testing.T) {
	jwtUtil1 := NewJWTUtil("secret1", "")
	jwtUtil2 := NewJWTUtil("secret2", "")

	tokenString, _ := jwtUtil1.GenerateToken("a@x.com", model.RoleAdmin)

	_, err := jwtUtil2.ValidateToken(tokenString)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTUtil_ValidateToken_WrongIssuer(t *testing.T) {
	minter := NewJWTUtil("secret", "someone-else")
	verifier := NewJWTUtil("secret", "projects-api")

	tokenString, _ := minter.GenerateToken("a@x.com", model.RoleAdmin)

	_, err := verifier.ValidateToken(tokenString)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWTUtil_ValidateToken_InvalidSigningMethod(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "")
	claims := &JWTClaims{
		Email: "a@x.com",
		Role:  model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    DefaultIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	tokenString, _ := token.SignedString([]byte("secret"))

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_MissingExpiry(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", "")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		Email:            "a@x.com",
		Role:             model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: DefaultIssuer},
	})
	tokenString, _ := token.SignedString([]byte("secret"))

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
}
