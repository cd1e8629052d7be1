package utils

import (
	"errors"
	"fmt"
	"time"

	"project_tracker/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenTTL is the fixed lifetime of an access token
	TokenTTL = time.Hour

	// DefaultIssuer is used when no issuer is configured
	DefaultIssuer = "HelloWorld"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTClaims custom claims for JWT
type JWTClaims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTUtil mints and verifies session tokens
type JWTUtil struct {
	secretKey []byte
	issuer    string
	now       func() time.Time
}

// NewJWTUtil creates a new JWTUtil. An empty issuer falls back to DefaultIssuer.
func NewJWTUtil(secretKey, issuer string) *JWTUtil {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &JWTUtil{secretKey: []byte(secretKey), issuer: issuer, now: time.Now}
}

// WithClock returns a copy of ju that reads time from now
func (ju *JWTUtil) WithClock(now func() time.Time) *JWTUtil {
	cp := *ju
	cp.now = now
	return &cp
}

// Issuer returns the configured iss claim
func (ju *JWTUtil) Issuer() string {
	return ju.issuer
}

// GenerateToken signs {email, role} with a one hour expiry
func (ju *JWTUtil) GenerateToken(email string, role model.Role) (string, error) {
	issuedAt := ju.now()
	claims := &JWTClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    ju.issuer,
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ju.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken checks signature, issuer and expiry and returns the claims
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ju.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ju.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ju.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
