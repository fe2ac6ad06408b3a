package api

import (
	"chat-core/domain"
	"chat-core/errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// AuthMiddleware resolves the bearer token into the acting user id.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := token(c)
		if bearer == "" {
			h.fail(c, errors.ErrInvalidToken)
			return
		}
		id, err := h.svc.Auth.ResolveToken(bearer)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

func actor(c *gin.Context) domain.UserID {
	return c.MustGet(userIDKey).(domain.UserID)
}

func token(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// requestLogger logs one line per request and records its outcome.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.monitor.Record(c.Writer.Status())
		h.log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
