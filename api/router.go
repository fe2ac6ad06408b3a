// Package api exposes the services over HTTP with gin.
package api

import (
	"chat-core/observability"
	"chat-core/services"
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	log     *slog.Logger
	svc     *services.Services
	monitor *observability.Monitor
}

func NewHandler(log *slog.Logger, svc *services.Services, monitor *observability.Monitor) *Handler {
	return &Handler{log: log, svc: svc, monitor: monitor}
}

// NewRouter builds the engine. staticDir serves cropped profile pictures
// under /static when set.
func NewRouter(h *Handler, origins []string, staticDir string) *gin.Engine {
	r := gin.New()
	r.Use(h.requestLogger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConfig))

	if staticDir != "" {
		r.Static("/static", staticDir)
	}

	a := r.Group("/auth")
	{
		a.POST("/register", h.Register)
		a.POST("/login", h.Login)
		a.POST("/logout", h.Logout)
		a.POST("/passwordreset/request", h.RequestPasswordReset)
		a.POST("/passwordreset/reset", h.ResetPassword)
	}

	authed := r.Group("/", h.AuthMiddleware())
	{
		authed.GET("/users/all", h.AllUsers)
		authed.GET("/users/stats", h.WorkspaceStats)
		authed.GET("/users/:uid", h.Profile)
		authed.PUT("/user/name", h.SetName)
		authed.PUT("/user/email", h.SetEmail)
		authed.PUT("/user/handle", h.SetHandle)
		authed.POST("/user/photo", h.UploadPhoto)
		authed.GET("/user/stats", h.UserStats)

		authed.POST("/channels", h.CreateChannel)
		authed.GET("/channels", h.ListChannels)
		authed.GET("/channels/all", h.ListAllChannels)
		authed.GET("/channels/:id", h.ChannelDetails)
		authed.POST("/channels/:id/join", h.JoinChannel)
		authed.POST("/channels/:id/invite", h.InviteToChannel)
		authed.POST("/channels/:id/leave", h.LeaveChannel)
		authed.POST("/channels/:id/owners", h.AddChannelOwner)
		authed.DELETE("/channels/:id/owners/:uid", h.RemoveChannelOwner)
		authed.GET("/channels/:id/messages", h.ChannelMessages)
		authed.POST("/channels/:id/messages", h.SendMessage)
		authed.POST("/channels/:id/messages/later", h.SendMessageLater)
		authed.POST("/channels/:id/standup/start", h.StartStandup)
		authed.GET("/channels/:id/standup", h.StandupActive)
		authed.POST("/channels/:id/standup", h.SendStandup)

		authed.POST("/dms", h.CreateDm)
		authed.GET("/dms", h.ListDms)
		authed.GET("/dms/:id", h.DmDetails)
		authed.POST("/dms/:id/invite", h.InviteToDm)
		authed.POST("/dms/:id/leave", h.LeaveDm)
		authed.DELETE("/dms/:id", h.RemoveDm)
		authed.GET("/dms/:id/messages", h.DmMessages)
		authed.POST("/dms/:id/messages", h.SendDm)
		authed.POST("/dms/:id/messages/later", h.SendDmLater)

		authed.PUT("/messages/:id", h.EditMessage)
		authed.DELETE("/messages/:id", h.RemoveMessage)
		authed.POST("/messages/:id/react", h.ReactMessage)
		authed.POST("/messages/:id/unreact", h.UnreactMessage)
		authed.POST("/messages/:id/pin", h.PinMessage)
		authed.POST("/messages/:id/unpin", h.UnpinMessage)
		authed.POST("/messages/:id/share", h.ShareMessage)
		authed.GET("/search", h.Search)

		authed.GET("/notifications", h.Notifications)

		authed.DELETE("/admin/users/:uid", h.RemoveUser)
		authed.PUT("/admin/users/:uid/permission", h.ChangeUserPermission)
	}
	return r
}
