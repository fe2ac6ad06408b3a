package services

import (
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/store"
	"log/slog"
)

type INotificationService interface {
	Notifications(actor domain.UserID) ([]domain.Notification, error)
}

type NotificationService struct {
	log   *slog.Logger
	store *store.Store
}

func NewNotificationService(log *slog.Logger, st *store.Store) INotificationService {
	return &NotificationService{log: log, store: st}
}

// Notifications returns the most recent notifications of actor, newest first.
func (s *NotificationService) Notifications(actor domain.UserID) ([]domain.Notification, error) {
	var out []domain.Notification
	err := s.store.View(func(tx *store.Tx) error {
		if !tx.UserExists(actor) {
			return errors.ErrUserNotFound
		}
		out = tx.Notifications(actor, domain.NotificationFeedLimit)
		return nil
	})
	return out, err
}
