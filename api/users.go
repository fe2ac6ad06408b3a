package api

import (
	"chat-core/domain"
	"chat-core/photo"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Profile(c *gin.Context) {
	var uri userURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.badRequest(c, err)
		return
	}
	view, err := h.svc.Users.Profile(actor(c), domain.UserID(uri.UserID))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) AllUsers(c *gin.Context) {
	users, err := h.svc.Users.AllUsers(actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) SetName(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, h.svc.Users.SetName(actor(c), req.FirstName, req.LastName))
}

func (h *Handler) SetEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, h.svc.Users.SetEmail(actor(c), req.Email))
}

func (h *Handler) SetHandle(c *gin.Context) {
	var req handleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.done(c, h.svc.Users.SetHandle(actor(c), req.Handle))
}

func (h *Handler) UploadPhoto(c *gin.Context) {
	var req photoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	crop := photo.Crop{XStart: req.XStart, YStart: req.YStart, XEnd: req.XEnd, YEnd: req.YEnd}
	h.done(c, h.svc.Users.UploadPhoto(c.Request.Context(), actor(c), req.URL, crop))
}

func (h *Handler) UserStats(c *gin.Context) {
	stats, err := h.svc.Users.UserStats(actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_stats": stats})
}

func (h *Handler) WorkspaceStats(c *gin.Context) {
	stats, err := h.svc.Users.WorkspaceStats(actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace_stats": stats})
}

// done answers 204 on success.
func (h *Handler) done(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
