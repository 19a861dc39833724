package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// CORSMiddleware allows any origin and answers preflight requests with 204
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,PUT,POST,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, If-Match")
		h.Set("Access-Control-Expose-Headers", "ETag")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent) // Preflight ends here
			return
		}
		c.Next()
	}
}
