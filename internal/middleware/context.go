package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ctxutil "github.com/joblane/platform/pkg/context"
	"github.com/joblane/platform/pkg/logger"
)

// RequestContextMiddleware seeds the request context with the identifiers
// the context logger reads: request ID, client IP, user agent, start time.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx = ctxutil.WithValue(ctx, ctxutil.RequestIDKey, requestID)
		ctx = ctxutil.WithValue(ctx, ctxutil.ClientIPKey, c.ClientIP())
		ctx = ctxutil.WithValue(ctx, ctxutil.UserAgentKey, c.GetHeader("User-Agent"))
		ctx = ctxutil.WithValue(ctx, ctxutil.StartTimeKey, time.Now())

		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// UserContextMiddleware copies the authenticated identity from gin's keys
// into the request context so service-layer logs carry it. Must run after
// RequireAuth.
func UserContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if userID, exists := c.Get("user_id"); exists {
			if id, ok := userID.(uint); ok {
				ctx = ctxutil.WithUserID(ctx, id)
			}
		}
		if role := c.GetString("role"); role != "" {
			ctx = ctxutil.WithValue(ctx, ctxutil.UserRoleKey, role)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestTimeoutMiddleware bounds every handler with a deadline so a stuck
// database or SMTP call cannot hold a connection open indefinitely.
func RequestTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := ctxutil.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		select {
		case <-ctx.Done():
			logger.WarnWithContext(ctx, "Request timed out before processing").
				Duration(timeout).
				Log()
			c.JSON(http.StatusRequestTimeout, gin.H{
				"status":  "error",
				"message": "request timeout",
			})
			c.Abort()
			return
		default:
			c.Next()
		}
	}
}
