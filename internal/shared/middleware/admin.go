package middleware

import (
	"github.com/gin-gonic/gin"

	"staff-directory/internal/shared/response"
)

// AdminMiddleware checks the role set by AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != "admin" {
			response.Forbidden(c, "Access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
