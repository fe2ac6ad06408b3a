package api

import (
	"chat-core/domain"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) channelID(c *gin.Context) (domain.ChannelID, bool) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.badRequest(c, err)
		return 0, false
	}
	return domain.ChannelID(uri.ID), true
}

func (h *Handler) CreateChannel(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	id, err := h.svc.Channels.CreateChannel(actor(c), req.Name, req.IsPublic)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"channel_id": id})
}

func (h *Handler) ListChannels(c *gin.Context) {
	channels, err := h.svc.Channels.ListChannels(actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *Handler) ListAllChannels(c *gin.Context) {
	channels, err := h.svc.Channels.ListAllChannels(actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *Handler) ChannelDetails(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	details, err := h.svc.Channels.ChannelDetails(actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) JoinChannel(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	h.done(c, h.svc.Channels.JoinChannel(actor(c), id))
}

func (h *Handler) InviteToChannel(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, h.svc.Channels.InviteToChannel(actor(c), id, domain.UserID(req.UserID)))
}

func (h *Handler) LeaveChannel(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	h.done(c, h.svc.Channels.LeaveChannel(actor(c), id))
}

func (h *Handler) AddChannelOwner(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, h.svc.Channels.AddChannelOwner(actor(c), id, domain.UserID(req.UserID)))
}

func (h *Handler) RemoveChannelOwner(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	var target userURI
	if err := c.ShouldBindUri(&target); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, h.svc.Channels.RemoveChannelOwner(actor(c), id, domain.UserID(target.UserID)))
}

func (h *Handler) ChannelMessages(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}
	page, err := h.svc.Channels.ChannelMessages(actor(c), id, q.Start)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) SendMessage(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	msgID, err := h.svc.Messages.SendMessage(actor(c), id, req.Message)
	h.created(c, int(msgID), err)
}

func (h *Handler) SendMessageLater(c *gin.Context) {
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	var req laterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	msgID, err := h.svc.Messages.SendMessageLater(actor(c), id, req.Message, req.TimeSent)
	h.created(c, int(msgID), err)
}

// created answers {"message_id": id} on success.
func (h *Handler) created(c *gin.Context, id int, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message_id": id})
}
