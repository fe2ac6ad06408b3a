package api

import (
	"chat-core/domain"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) messageID(c *gin.Context) (domain.MessageID, bool) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.badRequest(c, err)
		return 0, false
	}
	return domain.MessageID(uri.ID), true
}

func (h *Handler) EditMessage(c *gin.Context) {
	id, ok := h.messageID(c)
	if !ok {
		return
	}
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, h.svc.Messages.EditMessage(actor(c), id, req.Message))
}

func (h *Handler) RemoveMessage(c *gin.Context) {
	id, ok := h.messageID(c)
	if !ok {
		return
	}
	h.done(c, h.svc.Messages.RemoveMessage(actor(c), id))
}

func (h *Handler) ReactMessage(c *gin.Context) {
	h.react(c, h.svc.Messages.ReactMessage)
}

func (h *Handler) UnreactMessage(c *gin.Context) {
	h.react(c, h.svc.Messages.UnreactMessage)
}

func (h *Handler) react(c *gin.Context, fn func(domain.UserID, domain.MessageID, domain.ReactID) error) {
	id, ok := h.messageID(c)
	if !ok {
		return
	}
	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, fn(actor(c), id, domain.ReactID(req.ReactID)))
}

func (h *Handler) PinMessage(c *gin.Context) {
	id, ok := h.messageID(c)
	if !ok {
		return
	}
	h.done(c, h.svc.Messages.PinMessage(actor(c), id))
}

func (h *Handler) UnpinMessage(c *gin.Context) {
	id, ok := h.messageID(c)
	if !ok {
		return
	}
	h.done(c, h.svc.Messages.UnpinMessage(actor(c), id))
}

// ShareMessage expects -1 on the unused side of channel_id and dm_id.
func (h *Handler) ShareMessage(c *gin.Context) {
	id, ok := h.messageID(c)
	if !ok {
		return
	}
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	sharedID, err := h.svc.Messages.ShareMessage(actor(c), id, req.Message, domain.ChannelID(req.ChannelID), domain.DmID(req.DmID))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"shared_message_id": sharedID})
}

func (h *Handler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}
	msgs, err := h.svc.Messages.Search(actor(c), q.Query)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
