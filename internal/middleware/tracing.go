package middleware

import (
	"github.com/gin-gonic/gin"                         // Gin web framework
	"go.opentelemetry.io/otel/attribute"               // Span attributes
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0" // Attribute keys
	"go.opentelemetry.io/otel/trace"                   // Span access
)

// TracingMiddleware names the server span of the request after its matched route.
// Requests without a recording span pass through untouched.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched" // Same label the metrics use
		}
		span.SetName(c.Request.Method + " " + route)
		span.SetAttributes(semconv.HTTPRoute(route))
		if user, ok := CurrentUser(c); ok {
			span.SetAttributes(attribute.String("enduser.role", user.Role))
		}
	}
}
