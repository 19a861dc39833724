package api

import (
	"net/http" // HTTP status codes

	"restaurant_system/internal/apperr"     // Error kinds
	"restaurant_system/internal/domain"     // Roles and users
	"restaurant_system/internal/metrics"    // Login counters
	"restaurant_system/internal/middleware" // Session helpers
	"restaurant_system/internal/session"    // Session manager
	"restaurant_system/internal/store"      // Credential store

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// Request struct for login
type LoginRequest struct {
	Role     looseString   `json:"role"`                        // "employee", anything else means admin
	Username trimmedString `json:"username" binding:"required"` // Trimmed before lookup
	Password looseString   `json:"password" binding:"required"` // Compared as sent
}

func (LoginRequest) validationMessages() map[string]string {
	return map[string]string{
		"Username.required": "Username and password are required.",
		"Password.required": "Username and password are required.",
	}
}

// Request struct for signup
type SignupRequest struct {
	Username trimmedString `json:"username" binding:"required,min=3"`             // At least 3 characters
	Password looseString   `json:"password" binding:"required,min=6,maxbytes=72"` // bcrypt reads at most 72 bytes
	Name     trimmedString `json:"name"`                                          // Optional display name
}

func (SignupRequest) validationMessages() map[string]string {
	return map[string]string{
		"Username.required": "Username and password are required.",
		"Password.required": "Username and password are required.",
		"Username.min":      "Username must be at least 3 characters.",
		"Password.min":      "Password must be at least 6 characters.",
		"Password.maxbytes": "Password must be at most 72 characters.",
	}
}

// Request struct for profile updates
type ProfileRequest struct {
	Name      trimmedString `json:"name" binding:"required"`         // Display name
	Email     trimmedString `json:"email" binding:"omitempty,email"` // Optional, validated when present
	AvatarURL trimmedString `json:"avatarUrl"`                       // Optional
}

func (ProfileRequest) validationMessages() map[string]string {
	return map[string]string{
		"Name.required": "Name is required.",
		"Email.email":   "Invalid email format.",
	}
}

// Request struct for password changes
type ChangePasswordRequest struct {
	CurrentPassword looseString `json:"currentPassword" binding:"required"`
	NewPassword     looseString `json:"newPassword" binding:"required,min=6,maxbytes=72"`
}

func (ChangePasswordRequest) validationMessages() map[string]string {
	return map[string]string{
		"CurrentPassword.required": "Current and new password are required.",
		"NewPassword.required":     "Current and new password are required.",
		"NewPassword.min":          "New password must be at least 6 characters.",
		"NewPassword.maxbytes":     "New password must be at most 72 characters.",
	}
}

// CookieOptions controls the attributes of the session cookie
type CookieOptions struct {
	Secure bool // Send only over HTTPS
}

func setSessionCookie(c *gin.Context, opts CookieOptions, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", opts.Secure, true)
}

// LoginHandler checks credentials for the requested role and starts a session
func LoginHandler(creds *store.CredentialStore, sessions *session.Manager, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := bindBody(c, &req); err != nil {
			respondError(c, err)
			return
		}
		username := string(req.Username)
		password := string(req.Password)
		role := domain.RoleAdmin // Role defaults to admin
		if string(req.Role) == domain.RoleEmployee {
			role = domain.RoleEmployee
		}

		user, err := creds.FindByUsername(c.Request.Context(), username)
		if apperr.Is(err, apperr.KindNotFound) && role == domain.RoleAdmin {
			user, err = creds.FindByUsernameCaseInsensitive(c.Request.Context(), username) // Admins may log in with any casing
		}
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			respondError(c, err)
			return
		}
		if user == nil || user.Role != role || !creds.VerifyPassword(c.Request.Context(), user, password) {
			metrics.ObserveLogin(role, "failure")
			logrus.WithFields(logrus.Fields{
				"username": username,
				"role":     role,
			}).Warn("Login rejected")
			respondError(c, apperr.Unauthorized("Invalid credentials."))
			return
		}

		public := user.Public()
		token, err := sessions.Create(c.Request.Context(), public)
		if err != nil {
			respondError(c, apperr.Internal("create session", err))
			return
		}
		setSessionCookie(c, opts, token, int(sessions.TTL().Seconds()))
		metrics.ObserveLogin(role, "success")
		logrus.WithFields(logrus.Fields{
			"username": user.Username,
			"role":     user.Role,
		}).Info("User logged in")
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": public})
	}
}

// SignupHandler creates an employee account
func SignupHandler(creds *store.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := bindBody(c, &req); err != nil {
			respondError(c, err)
			return
		}
		user, err := creds.Create(c.Request.Context(), string(req.Username), string(req.Password), string(req.Name))
		if err != nil {
			respondError(c, err) // Conflict on duplicate username
			return
		}
		logrus.WithField("username", user.Username).Info("Employee account created")
		c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Employee account created. Please login."})
	}
}

// LogoutHandler revokes the session of the request, if any, and clears the cookie
func LogoutHandler(sessions *session.Manager, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
			if err := sessions.Revoke(c.Request.Context(), token); err != nil {
				logrus.WithField("error", err.Error()).Warn("Failed to revoke session")
			}
		}
		setSessionCookie(c, opts, "", -1) // Negative max age sends Max-Age=0
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// MeHandler returns the user of the current session
func MeHandler(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, err := middleware.Authenticate(c, sessions)
		if apperr.Is(err, apperr.KindUnauthorized) {
			respondError(c, apperr.Unauthorized("Not logged in."))
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
	}
}

// GetProfileHandler returns the stored profile of the session user
func GetProfileHandler(creds *store.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := middleware.CurrentUser(c)
		user, err := creds.FindByUsername(c.Request.Context(), current.Username)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": user.Public()})
	}
}

// UpdateProfileHandler edits name, email and avatar and refreshes the live session
func UpdateProfileHandler(creds *store.CredentialStore, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProfileRequest
		if err := bindBody(c, &req); err != nil {
			respondError(c, err)
			return
		}
		current, _ := middleware.CurrentUser(c)
		user, err := creds.UpdateProfile(c.Request.Context(), current.Username, string(req.Name), string(req.Email), string(req.AvatarURL))
		if apperr.Is(err, apperr.KindNotFound) {
			respondError(c, apperr.NotFound("User not found after update."))
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		public := user.Public()
		if err := sessions.Refresh(c.Request.Context(), middleware.SessionToken(c), public); err != nil {
			logrus.WithFields(logrus.Fields{
				"username": user.Username,
				"error":    err.Error(),
			}).Warn("Failed to refresh session after profile update")
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": public})
	}
}

// ChangePasswordHandler replaces the password after checking the current one
func ChangePasswordHandler(creds *store.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangePasswordRequest
		if err := bindBody(c, &req); err != nil {
			respondError(c, err)
			return
		}
		current, _ := middleware.CurrentUser(c)
		user, err := creds.FindByUsername(c.Request.Context(), current.Username)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			respondError(c, err)
			return
		}
		if user == nil || !creds.VerifyPassword(c.Request.Context(), user, string(req.CurrentPassword)) {
			respondError(c, apperr.Unauthorized("Current password is incorrect."))
			return
		}
		if err := creds.UpdatePassword(c.Request.Context(), user.Username, string(req.NewPassword)); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("username", user.Username).Info("Password changed")
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Password updated successfully."})
	}
}
