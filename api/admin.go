package api

import (
	"chat-core/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RemoveUser(c *gin.Context) {
	var uri userURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, h.svc.Admin.RemoveUser(actor(c), domain.UserID(uri.UserID)))
}

func (h *Handler) ChangeUserPermission(c *gin.Context) {
	var uri userURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.badRequest(c, err)
		return
	}
	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, h.svc.Admin.ChangeUserPermission(actor(c), domain.UserID(uri.UserID), domain.Permission(req.PermissionID)))
}
