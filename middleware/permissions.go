package middleware

import (
	"github.com/gin-gonic/gin"
)

const accessContextKey = "access_context"

// AccessContext is what handlers know about the authenticated caller.
type AccessContext struct {
	UserID  uint
	Email   string
	IsAdmin bool
}

// Owns reports whether the caller owns a record belonging to ownerID.
func (ac AccessContext) Owns(ownerID uint) bool {
	return ac.UserID != 0 && ac.UserID == ownerID
}

// GetAccessContext returns the context stored by AuthMiddleware.
func GetAccessContext(c *gin.Context) (AccessContext, bool) {
	val, exists := c.Get(accessContextKey)
	if !exists {
		return AccessContext{}, false
	}
	ac, ok := val.(AccessContext)
	return ac, ok
}
