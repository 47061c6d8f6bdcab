package auth

import (
	"net/http"
	"strings"

	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/gin-gonic/gin"
)

const identityKey = "auth.identity"

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID string
	Email  string
	Role   model.Role
}

// IdentityFrom returns the caller set by RequireAuth, or nil.
func IdentityFrom(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}

// ClientIP prefers proxy-forwarded headers over the socket peer address.
func ClientIP(c *gin.Context) string {
	if ip := c.GetHeader("cf-connecting-ip"); ip != "" {
		return ip
	}
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	return c.ClientIP()
}

// RequireAuth validates the bearer token and attaches the caller identity.
func RequireAuth(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(identityKey, &Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		c.Next()
	}
}

// RequireRole allows only callers holding one of the given roles. Admin
// always passes.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := IdentityFrom(c)
		if id == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if id.Role == model.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
