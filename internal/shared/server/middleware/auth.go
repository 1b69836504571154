package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tokencount-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userIDHeader = "X-User-Id"
	maxUserIDLen = 255
)

// Auth resolves the caller's owner identifier from the userId form field, the
// userId query parameter or the X-User-Id header, in that order. With
// requireIdentity set, requests without one are rejected with 401.
func Auth(requireIdentity bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		var userID string
		if c.Request.Method == http.MethodPost {
			userID = strings.TrimSpace(c.PostForm("userId"))
		}
		if userID == "" {
			userID = strings.TrimSpace(c.Query("userId"))
		}
		if userID == "" {
			userID = strings.TrimSpace(c.GetHeader(userIDHeader))
		}

		if len(userID) > maxUserIDLen {
			respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", `"userId" is too long`, nil)
			return
		}
		if userID == "" {
			if requireIdentity {
				respond.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing identity", nil)
				return
			}
			c.Next()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
