// README: Firebase ID-token auth middleware; exposes the caller's uid and role to handlers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"waslhaa/internal/infra"
	"waslhaa/internal/types"
)

const (
	callerUIDKey  = "caller_uid"
	callerRoleKey = "caller_role"
)

// Auth rejects requests without a valid "Bearer <id token>" header.
// The role comes from the token's "role" custom claim; no claim means customer.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil || token == nil || token.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid token"})
			return
		}
		role := types.RoleCustomer
		if v, ok := token.Claims["role"].(string); ok {
			role = types.ParseRole(v)
		}
		if !role.Valid() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "unknown role claim"})
			return
		}
		c.Set(callerUIDKey, types.ID(token.UID))
		c.Set(callerRoleKey, role)
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CallerRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "role not allowed"})
	}
}

func CallerUID(c *gin.Context) types.ID {
	v, _ := c.Get(callerUIDKey)
	id, _ := v.(types.ID)
	return id
}

func CallerRole(c *gin.Context) types.Role {
	v, _ := c.Get(callerRoleKey)
	role, _ := v.(types.Role)
	return role
}

func CallerActor(c *gin.Context) types.Actor {
	return types.Actor{Role: CallerRole(c), ID: CallerUID(c)}
}
