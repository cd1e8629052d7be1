package middleware

import (
	"project_tracker/internal/apperror"
	"project_tracker/internal/model"
	"project_tracker/internal/response"
	"project_tracker/internal/utils"

	"github.com/gin-gonic/gin"
)

// Policy maps a route key (see Route) to the roles allowed to call it.
// Routes absent from the policy are public.
type Policy map[string][]model.Role

// Route builds a policy key from an HTTP method and a gin full path
func Route(method, fullPath string) string {
	return method + " " + fullPath
}

// Authorize decides whether claims may call route. A nil claims value means the
// caller presented no valid token.
func Authorize(policy Policy, route string, claims *utils.JWTClaims) error {
	allowed, guarded := policy[route]
	if !guarded {
		return nil
	}
	if claims == nil {
		return apperror.Unauthenticated("Unauthorized")
	}
	for _, role := range allowed {
		if role != "" && claims.Role == role {
			return nil
		}
	}
	return apperror.Forbidden("Forbidden resource")
}

// RoleGuard enforces policy before the route handler runs. Authenticate must run first.
func RoleGuard(policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Authorize(policy, Route(c.Request.Method, c.FullPath()), ClaimsFrom(c)); err != nil {
			response.Error(c, err)
			return
		}
		c.Next()
	}
}
