package v1

import (
	"net/http"
	"sync"

	"budgeter/api/v1/admin"
	"budgeter/api/v1/auth"
	"budgeter/api/v1/middleware"
	"budgeter/internal/account"
	internalauth "budgeter/internal/auth"
	"budgeter/internal/ban"
	"budgeter/internal/httpx"
	"budgeter/internal/ratelimit"
	"budgeter/internal/reqlog"
	"budgeter/internal/store"
	"budgeter/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var bindingRulesOnce sync.Once

// registerBindingRules adds the account tags to gin's validator
func registerBindingRules(log *logrus.Entry) {
	bindingRulesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*playground.Validate)
		if !ok {
			log.Warn("Unexpected binding engine, account rules not registered")
			return
		}
		if err := validator.RegisterRules(v); err != nil {
			log.WithError(err).Error("Failed to register account binding rules")
		}
	})
}

// Dependencies holds everything the v1 routes need
type Dependencies struct {
	Users        *store.UserStore
	Accounts     *account.Service
	Gate         *ban.Gate
	Bans         *ban.Controller
	Tokens       *internalauth.TokenManager
	LoginLimiter ratelimit.Limiter // optional
	RequestLogs  *reqlog.Sink      // optional
	Socket       http.Handler      // optional, mounted at /socket.io/
	Logger       *logrus.Entry
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, deps *Dependencies) {
	registerBindingRules(deps.Logger)

	authHandler := auth.NewHandler(deps.Accounts, deps.Gate)
	adminHandler := admin.NewHandler(deps.Users, deps.Bans, deps.Gate, deps.RequestLogs)

	tokenRequired := middleware.AuthRequired(deps.Tokens)
	activeSession := middleware.ActiveSession(deps.Gate)

	v1 := r.Group("/api/v1")
	{
		// Public routes (no authentication required)
		v1.GET("/ping", pingHandler)

		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			if deps.LoginLimiter != nil {
				authGroup.POST("/login", middleware.RateLimit(deps.LoginLimiter, deps.Logger), authHandler.Login)
			} else {
				authGroup.POST("/login", authHandler.Login)
			}
			authGroup.POST("/check-email", authHandler.CheckEmail)

			// Token only: banned holders must still be able to learn their status
			authGroup.GET("/ban-status", tokenRequired, authHandler.BanStatus)
			authGroup.PUT("/change-password", tokenRequired, activeSession, authHandler.ChangePassword)
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(tokenRequired, activeSession)
		{
			protected.GET("/me", authHandler.Me)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminRequired())
			{
				adminGroup.GET("/users", adminHandler.ListUsers)
				adminGroup.GET("/users/:id", adminHandler.GetUser)
				adminGroup.POST("/users/:id/ban", adminHandler.Ban)
				adminGroup.POST("/users/:id/unban", adminHandler.Unban)
				adminGroup.PUT("/force-password-reset", adminHandler.ForcePasswordReset)
				adminGroup.GET("/request-logs", adminHandler.RequestLogs)
			}
		}
	}

	if deps.Socket != nil {
		r.GET("/socket.io/*any", gin.WrapH(deps.Socket))
		r.POST("/socket.io/*any", gin.WrapH(deps.Socket))
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}
