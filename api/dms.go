package api

import (
	"chat-core/domain"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

func (h *Handler) dmID(c *gin.Context) (domain.DmID, bool) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.badRequest(c, err)
		return 0, false
	}
	return domain.DmID(uri.ID), true
}

func (h *Handler) CreateDm(c *gin.Context) {
	var req createDmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	ids := lo.Map(req.UserIDs, func(id int, _ int) domain.UserID { return domain.UserID(id) })
	id, err := h.svc.Dms.CreateDm(actor(c), ids)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dm_id": id})
}

func (h *Handler) ListDms(c *gin.Context) {
	dms, err := h.svc.Dms.ListDms(actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dms": dms})
}

func (h *Handler) DmDetails(c *gin.Context) {
	id, ok := h.dmID(c)
	if !ok {
		return
	}
	details, err := h.svc.Dms.DmDetails(actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) InviteToDm(c *gin.Context) {
	id, ok := h.dmID(c)
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, h.svc.Dms.InviteToDm(actor(c), id, domain.UserID(req.UserID)))
}

func (h *Handler) LeaveDm(c *gin.Context) {
	id, ok := h.dmID(c)
	if !ok {
		return
	}
	h.done(c, h.svc.Dms.LeaveDm(actor(c), id))
}

func (h *Handler) RemoveDm(c *gin.Context) {
	id, ok := h.dmID(c)
	if !ok {
		return
	}
	h.done(c, h.svc.Dms.RemoveDm(actor(c), id))
}

func (h *Handler) DmMessages(c *gin.Context) {
	id, ok := h.dmID(c)
	if !ok {
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}
	page, err := h.svc.Dms.DmMessages(actor(c), id, q.Start)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) SendDm(c *gin.Context) {
	id, ok := h.dmID(c)
	if !ok {
		return
	}
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	msgID, err := h.svc.Messages.SendDm(actor(c), id, req.Message)
	h.created(c, int(msgID), err)
}

func (h *Handler) SendDmLater(c *gin.Context) {
	id, ok := h.dmID(c)
	if !ok {
		return
	}
	var req laterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	msgID, err := h.svc.Messages.SendDmLater(actor(c), id, req.Message, req.TimeSent)
	h.created(c, int(msgID), err)
}
