package services

import (
	"chat-core/auth"
	"chat-core/contract"
	"chat-core/mailer"
	"chat-core/store"
	"log/slog"
)

// Services bundles every use case exposed to the transport layer.
type Services struct {
	Auth          IAuthService
	Users         IUserService
	Admin         IAdminService
	Channels      IChannelService
	Dms           IDmService
	Messages      IMessageService
	Standups      IStandupService
	Notifications INotificationService
}

func New(log *slog.Logger, st *store.Store, scheduler contract.IScheduler,
	tokens auth.TokenIssuer, m mailer.Mailer, images ProfileImageStore, now Clock) *Services {
	return &Services{
		Auth:          NewAuthService(log, st, tokens, m),
		Users:         NewUserService(log, st, images, now),
		Admin:         NewAdminService(log, st),
		Channels:      NewChannelService(log, st),
		Dms:           NewDmService(log, st),
		Messages:      NewMessageService(log, st, scheduler, now),
		Standups:      NewStandupService(log, st, scheduler, now),
		Notifications: NewNotificationService(log, st),
	}
}
