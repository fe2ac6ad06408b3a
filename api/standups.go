package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) StartStandup(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	var req standupStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	finish, err := h.svc.Standups.StartStandup(actor(c), id, req.Length)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"time_finish": finish})
}

func (h *Handler) StandupActive(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	status, err := h.svc.Standups.StandupActive(actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) SendStandup(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, h.svc.Standups.SendStandup(actor(c), id, req.Message))
}
