package api

import (
	"net/http" // HTTP status codes

	"restaurant_system/internal/domain"     // Roles
	"restaurant_system/internal/middleware" // Middlewares
	"restaurant_system/internal/payment"    // Payment orchestrator
	"restaurant_system/internal/session"    // Session manager
	"restaurant_system/internal/store"      // Stores

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics endpoint
	"github.com/redis/go-redis/v9"                            // Redis client
	"gorm.io/gorm"                                            // GORM ORM library
)

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	DB           *gorm.DB
	Redis        redis.UniversalClient // Optional, only used for readiness
	Credentials  *store.CredentialStore
	States       store.StateStore
	Sessions     *session.Manager
	Payments     *payment.Orchestrator
	Cookie       CookieOptions
	StaticDir    string   // Built frontend, empty disables static serving
	TrustedProxy []string // Passed to gin.SetTrustedProxies
}

// NewRouter wires every route onto a new gin engine
func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxy); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.TracingMiddleware(), middleware.MetricsMiddleware(), middleware.CORSMiddleware())

	r.GET("/healthz", HealthHandler())
	r.GET("/readyz", ReadyHandler(d.DB, d.Redis))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", LoginHandler(d.Credentials, d.Sessions, d.Cookie))
		auth.POST("/signup", SignupHandler(d.Credentials))
		auth.POST("/logout", LogoutHandler(d.Sessions, d.Cookie))
		auth.GET("/me", MeHandler(d.Sessions))
	}

	// Routes for any signed-in staff member
	staff := r.Group("/api")
	staff.Use(middleware.SessionAuthMiddleware(d.Sessions, domain.RoleAdmin, domain.RoleEmployee))
	{
		staff.GET("/auth/profile", GetProfileHandler(d.Credentials))
		staff.PUT("/auth/profile", UpdateProfileHandler(d.Credentials, d.Sessions))
		staff.POST("/auth/change-password", ChangePasswordHandler(d.Credentials))
		staff.GET("/state", GetStateHandler(d.States))
		staff.PUT("/state", PutStateHandler(d.States))
		staff.GET("/paypal/config", PayPalConfigHandler(d.Payments))
		staff.POST("/paypal/create-order", CreatePayPalOrderHandler(d.Payments))
		staff.POST("/paypal/capture-order", CapturePayPalOrderHandler(d.Payments))
	}

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.SessionAuthMiddleware(d.Sessions, domain.RoleAdmin))
	{
		admin.GET("/users", ListUsersHandler(d.Credentials))
	}

	if d.StaticDir != "" {
		r.NoRoute(SPAHandler(d.StaticDir))
	} else {
		r.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Not found"})
		})
	}
	return r, nil
}
