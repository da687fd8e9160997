package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-backend/internal/auth"
)

// LoginPath is where the front-end sends unauthenticated visitors.
const LoginPath = "/login"

// AuthMiddleware verifies the bearer token and stores the caller's AccessContext.
func AuthMiddleware(authSvc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			unauthorized(c, "missing or invalid Authorization header")
			return
		}

		userID, err := authSvc.ParseAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		user, err := authSvc.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			unauthorized(c, "user not found")
			return
		}

		c.Set("user", *user)
		c.Set("user_id", user.ID)
		c.Set(accessContextKey, AccessContext{
			UserID:  user.ID,
			Email:   user.Email,
			IsAdmin: user.IsAdmin,
		})

		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "redirect": LoginPath})
}
