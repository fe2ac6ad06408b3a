package api

import (
	"chat-core/errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// statusOf maps the two error kinds of the core to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.IsInput(err):
		return http.StatusBadRequest
	case errors.IsAccess(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		h.log.Error("Request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(code, gin.H{"error": "internal error"})
		return
	}
	h.log.Debug("Request rejected", "path", c.FullPath(), "status", code, "error", err)
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// badRequest reports a malformed body or path parameter.
func (h *Handler) badRequest(c *gin.Context, err error) {
	h.log.Debug("Malformed request", "path", c.FullPath(), "error", err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request data"})
}
