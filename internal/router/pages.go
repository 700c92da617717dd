package router

import (
	"github.com/gin-gonic/gin"
	"github.com/joblane/platform/internal/middleware"
)

// pageRoutes registers the HTML entry points. The session gate only routes:
// a signed-in visitor hitting /login or /register is bounced home. Actual
// page content is rendered by the frontend build placed under web/.
func (r *Router) pageRoutes(engine *gin.Engine) {
	pages := engine.Group("/")
	pages.Use(middleware.SessionGate())
	{
		pages.GET("/", servePage("index"))
		pages.GET("/login", servePage("login"))
		pages.GET("/register", servePage("register"))
	}

	engine.Static("/static", "./web/static")
}

func servePage(name string) gin.HandlerFunc {
	file := "./web/" + name + ".html"
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.File(file)
	}
}
