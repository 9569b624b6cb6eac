package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware limits the request rate per client IP.
func RateLimitMiddleware(manager *RateLimitManager, requestsPerWindow, windowSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil || shouldBypassRateLimit(c.Request) {
			c.Next()
			return
		}

		limiter := manager.GetVisitor(c.ClientIP(), requestsPerWindow, windowSeconds)
		if limiter == nil {
			c.Next()
			return
		}

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OperationRateLimitMiddleware applies a separate, usually tighter, budget to
// one expensive operation such as publishing.
func OperationRateLimitMiddleware(manager *RateLimitManager, operation string, requestsPerWindow, windowSeconds int) gin.HandlerFunc {
	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	return func(c *gin.Context) {
		if manager == nil {
			c.Next()
			return
		}

		limiter := manager.GetOperationLimiter(c.ClientIP(), operation, requestsPerWindow, windowSeconds)
		if limiter == nil {
			c.Next()
			return
		}

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":          operation + " rate limit exceeded",
				"retry_after":    windowSeconds,
				"max_requests":   requestsPerWindow,
				"window_seconds": windowSeconds,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func shouldBypassRateLimit(r *http.Request) bool {
	if r == nil || r.URL == nil {
		return false
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}

	// Preview sockets are long lived; the upgrade request is counted once by
	// the session routes instead.
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return true
	}

	switch r.URL.Path {
	case "/health", "/metrics", "/favicon.ico":
		return true
	}

	return false
}
