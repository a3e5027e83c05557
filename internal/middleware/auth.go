package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const UserIDKey = "user_id"

// ValidateUser is a stubbed authentication middleware that extracts the user
// id from the X-User-ID header. Token verification lives at the gateway; this
// service only carries the identity through for attribution.
func ValidateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.GetHeader("X-User-ID")
		if userIDStr == "" {
			c.Next()
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			c.Next()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID retrieves the user ID from the context
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	return userID.(int64), true
}

// RequireAuth guards the mutating endpoints (imports, stock CRUD). Requests
// without an authenticated user are rejected; accepted ones are logged with
// the acting user for attribution.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		log.WithFields(log.Fields{
			"user_id": userID,
			"method":  c.Request.Method,
			"path":    c.FullPath(),
		}).Debug("authenticated request")
		c.Next()
	}
}
