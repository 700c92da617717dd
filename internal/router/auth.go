package router

import (
	"github.com/gin-gonic/gin"
	"github.com/joblane/platform/internal/middleware"
)

func (r *Router) authRoutes(version *gin.RouterGroup) {
	auth := version.Group("/auth")
	auth.Use(middleware.AuthLoggingMiddleware())
	{
		// Public routes (no authentication required)
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.RefreshToken)
		auth.GET("/verify", r.authHandler.VerifyEmail)

		// Protected routes (JWT authentication required)
		protected := auth.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		protected.Use(middleware.UserContextMiddleware())
		{
			protected.POST("/logout", r.authHandler.Logout)
		}
	}
}
