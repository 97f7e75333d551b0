package web

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "welcome-packet-service/internal/common/errors"
	"welcome-packet-service/internal/common/metrics"
	"welcome-packet-service/internal/web/session"
)

const sessionContextKey = "wps-session"

// requireSession resolves the session cookie and aborts with 401 when it
// is missing or expired. The resolved session lands in the gin context.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(s.cfg.Session.CookieName)
		if err != nil || cookie == "" {
			s.abortWithError(c, apperrors.NewSessionExpiredError())
			return
		}

		sess, err := s.sessions.Get(c.Request.Context(), cookie)
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		if sess == nil {
			s.abortWithError(c, apperrors.NewSessionExpiredError())
			return
		}

		// Sliding expiry: every authenticated request refreshes the TTL.
		if err := s.sessions.Save(c.Request.Context(), sess); err != nil {
			s.logger.Warn("failed to refresh session", map[string]interface{}{
				"sessionId": sess.ID,
				"error":     err,
			})
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

func (s *Server) currentSession(c *gin.Context) *session.Session {
	val, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := val.(*session.Session)
	return sess
}

func (s *Server) requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			path,
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
