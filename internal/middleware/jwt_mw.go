package middleware

import (
	"strings"

	"project_tracker/internal/utils"

	"github.com/gin-gonic/gin"
)

// ClaimsKey is the context key holding the verified *utils.JWTClaims
const ClaimsKey = "authClaims"

// TokenValidator verifies a bearer token
type TokenValidator interface {
	ValidateToken(tokenString string) (*utils.JWTClaims, error)
}

// Authenticate verifies the bearer token when one is presented. It never rejects:
// a missing or invalid token leaves the request unauthenticated and RoleGuard decides.
func Authenticate(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := tokens.ValidateToken(tokenString); err == nil {
				c.Set(ClaimsKey, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// ClaimsFrom returns the caller's verified claims, nil when unauthenticated
func ClaimsFrom(c *gin.Context) *utils.JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.JWTClaims)
	return claims
}
