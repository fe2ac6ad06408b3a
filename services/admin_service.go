package services

import (
	"chat-core/domain"
	"chat-core/permission"
	"chat-core/store"
	"log/slog"
)

type IAdminService interface {
	RemoveUser(actor, target domain.UserID) error
	ChangeUserPermission(actor, target domain.UserID, p domain.Permission) error
}

type AdminService struct {
	log   *slog.Logger
	store *store.Store
}

func NewAdminService(log *slog.Logger, st *store.Store) IAdminService {
	return &AdminService{log: log, store: st}
}

// RemoveUser blanks every message of target, drops them from every channel
// and dm they belong to and signs them out. The profile stays resolvable
// under the removed name.
func (s *AdminService) RemoveUser(actor, target domain.UserID) error {
	return s.store.Update(func(tx *store.Tx) error {
		if err := permission.CanRemoveUser(tx, actor, target); err != nil {
			return err
		}
		u, err := tx.User(target)
		if err != nil {
			return err
		}
		msgs := tx.MessagesBy(target)
		for _, msg := range msgs {
			msg.Content = domain.RemovedContent
		}
		refs := tx.ContainersOf(target)
		for _, ref := range refs {
			c, err := tx.Container(ref)
			if err != nil {
				return err
			}
			c.Members.Remove(target)
			c.Owners.Remove(target)
		}
		u.Anonymise()
		closed := tx.CloseSessions(target)
		s.log.Info("User removed", "user_id", target, "by", actor, "messages", len(msgs), "containers", len(refs), "sessions", closed)
		return nil
	})
}

func (s *AdminService) ChangeUserPermission(actor, target domain.UserID, p domain.Permission) error {
	return s.store.Update(func(tx *store.Tx) error {
		if err := permission.CanChangePermission(tx, actor, target, p); err != nil {
			return err
		}
		u, err := tx.User(target)
		if err != nil {
			return err
		}
		u.Permission = p
		s.log.Debug("Permission changed", "user_id", target, "permission", p)
		return nil
	})
}
