package middleware

import (
	"restaurant_system/internal/apperr"  // Error kinds
	"restaurant_system/internal/domain"  // User snapshot
	"restaurant_system/internal/session" // Session manager

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// Gin context keys set by SessionAuthMiddleware
const (
	ContextUserKey  = "sessionUser"
	ContextTokenKey = "sessionToken"
)

// SessionCookie is the name of the cookie carrying the session token
const SessionCookie = "sg_session"

// Authenticate resolves the session cookie of the request.
// With allowedRoles given, a user holding none of them is Forbidden.
func Authenticate(c *gin.Context, mgr *session.Manager, allowedRoles ...string) (domain.PublicUser, string, error) {
	token, err := c.Cookie(SessionCookie) // Missing cookie yields an error
	if err != nil || token == "" {
		return domain.PublicUser{}, "", apperr.Unauthorized("Unauthorized. Please login first.")
	}
	user, ok, err := mgr.Resolve(c.Request.Context(), token)
	if err != nil {
		return domain.PublicUser{}, "", apperr.Internal("resolve session", err)
	}
	if !ok {
		return domain.PublicUser{}, "", apperr.Unauthorized("Unauthorized. Please login first.")
	}
	if len(allowedRoles) > 0 && !hasRole(user.Role, allowedRoles) {
		return domain.PublicUser{}, "", apperr.Forbidden("Forbidden for this role.")
	}
	return user, token, nil
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// SessionAuthMiddleware requires a live session, optionally restricted to roles
func SessionAuthMiddleware(mgr *session.Manager, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, token, err := Authenticate(c, mgr, allowedRoles...)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				logrus.WithField("error", err.Error()).Error("Session lookup failed")
			}
			c.AbortWithStatusJSON(apperr.Status(err), gin.H{"ok": false, "error": apperr.PublicMessage(err)})
			return
		}
		c.Set(ContextUserKey, user)   // Store user snapshot in context
		c.Set(ContextTokenKey, token) // Store token for logout and refresh
		c.Next()                      // Proceed to the next handler
	}
}

// CurrentUser returns the user stored by SessionAuthMiddleware
func CurrentUser(c *gin.Context) (domain.PublicUser, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return domain.PublicUser{}, false
	}
	user, ok := v.(domain.PublicUser)
	return user, ok
}

// SessionToken returns the token stored by SessionAuthMiddleware
func SessionToken(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}
