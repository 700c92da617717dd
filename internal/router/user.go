package router

import (
	"github.com/gin-gonic/gin"
	"github.com/joblane/platform/internal/middleware"
)

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	{
		// All user routes require JWT authentication
		users.Use(r.jwtMw.RequireAuth())
		users.Use(middleware.UserContextMiddleware())
		{
			users.GET("/me", r.userHandler.Me)
			users.PUT("/me", r.userHandler.UpdateMe)
			users.PUT("/me/password", r.userHandler.UpdatePassword)
		}
	}
}
