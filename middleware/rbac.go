package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin hides the admin surface from everyone else: non-admins get a
// plain 404 rather than a 403 so the routes are not advertised.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := GetAccessContext(c)
		if !ok {
			unauthorized(c, "unauthenticated")
			return
		}
		if !ac.IsAdmin {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Next()
	}
}
