package api

import (
	"strconv"
	"time"

	"lendit/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	sessionHeader = "X-Session-Token"
	userIDKey     = "user_id"
)

// sessionToken reads the session from the cookie, falling back to the
// header for non-browser clients.
func (h *Handler) sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(h.sessionCookie); err == nil && token != "" {
		return token
	}
	return c.GetHeader(sessionHeader)
}

// requireSession resolves the session and stores the user id on the
// context, aborting with 401 when there is none.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := h.accounts.ResolveSession(c.Request.Context(), h.sessionToken(c))
		if err != nil {
			h.writeError(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		util.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
