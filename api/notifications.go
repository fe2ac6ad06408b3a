package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Notifications(c *gin.Context) {
	feed, err := h.svc.Notifications.Notifications(actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": feed})
}
