package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joblane/platform/internal/constants"
)

// GateDecision is the outcome of the session gate for one request.
type GateDecision struct {
	Redirect bool
	Location string
}

var gateContinue = GateDecision{}

func gateRedirect(location string) GateDecision {
	return GateDecision{Redirect: true, Location: location}
}

// authEntryPaths are the pages a user with a live session has no business
// visiting again.
var authEntryPaths = map[string]bool{
	"/login":    true,
	"/register": true,
}

// DecideGate is the whole routing policy of the session gate, kept pure so
// the table of cases is testable without HTTP plumbing. The gate only looks
// at cookie PRESENCE: it is a UX convenience, not a security check. API
// routes and static assets are never gated; RequireAuth guards the API.
func DecideGate(hasSessionCookie bool, path string) GateDecision {
	if strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/static") {
		return gateContinue
	}
	if hasSessionCookie && authEntryPaths[path] {
		return gateRedirect("/")
	}
	return gateContinue
}

// SessionGate applies DecideGate to page routes.
func SessionGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(constants.CookieSession)
		hasCookie := err == nil && cookie != ""

		decision := DecideGate(hasCookie, c.Request.URL.Path)
		if decision.Redirect {
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
			return
		}
		c.Next()
	}
}
