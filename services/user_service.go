package services

import (
	"chat-core/auth"
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/photo"
	"chat-core/store"
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

type IUserService interface {
	Profile(actor, id domain.UserID) (UserView, error)
	AllUsers(actor domain.UserID) ([]UserView, error)
	SetName(actor domain.UserID, firstName, lastName string) error
	SetEmail(actor domain.UserID, email string) error
	SetHandle(actor domain.UserID, handle string) error
	UploadPhoto(ctx context.Context, actor domain.UserID, url string, crop photo.Crop) error
	UserStats(actor domain.UserID) (UserStats, error)
	WorkspaceStats(actor domain.UserID) (WorkspaceStats, error)
}

type UserService struct {
	log    *slog.Logger
	store  *store.Store
	images ProfileImageStore
	now    Clock
}

func NewUserService(log *slog.Logger, st *store.Store, images ProfileImageStore, now Clock) IUserService {
	return &UserService{log: log, store: st, images: images, now: now}
}

// Profile resolves any user ever registered, removed ones included.
func (s *UserService) Profile(_ domain.UserID, id domain.UserID) (UserView, error) {
	var out UserView
	err := s.store.View(func(tx *store.Tx) error {
		u, err := tx.AnyUser(id)
		if err != nil {
			return err
		}
		out = toUserView(u)
		return nil
	})
	return out, err
}

func (s *UserService) AllUsers(_ domain.UserID) ([]UserView, error) {
	var out []UserView
	err := s.store.View(func(tx *store.Tx) error {
		out = lo.FilterMap(tx.Users(), func(u *domain.User, _ int) (UserView, bool) {
			return toUserView(u), !u.Removed
		})
		return nil
	})
	return out, err
}

func (s *UserService) SetName(actor domain.UserID, firstName, lastName string) error {
	if err := auth.ValidateName(firstName); err != nil {
		return err
	}
	if err := auth.ValidateName(lastName); err != nil {
		return err
	}
	return s.update(actor, func(_ *store.Tx, u *domain.User) error {
		u.FirstName, u.LastName = firstName, lastName
		return nil
	})
}

func (s *UserService) SetEmail(actor domain.UserID, email string) error {
	if err := auth.ValidateEmail(email); err != nil {
		return err
	}
	return s.update(actor, func(tx *store.Tx, u *domain.User) error {
		if other, taken := tx.UserByEmail(email); taken && other.ID != u.ID {
			return errors.ErrEmailTaken
		}
		u.Email = email
		return nil
	})
}

func (s *UserService) SetHandle(actor domain.UserID, handle string) error {
	if err := auth.ValidateHandle(handle); err != nil {
		return err
	}
	return s.update(actor, func(tx *store.Tx, u *domain.User) error {
		if other, taken := tx.UserByHandle(handle); taken && other.ID != u.ID {
			return errors.ErrHandleTaken
		}
		u.Handle = handle
		return nil
	})
}

// UploadPhoto fetches and crops before taking the gate.
func (s *UserService) UploadPhoto(ctx context.Context, actor domain.UserID, url string, crop photo.Crop) error {
	imgURL, err := s.images.CropAndStore(ctx, url, crop, fmt.Sprintf("user%d", actor))
	if err != nil {
		return err
	}
	return s.update(actor, func(_ *store.Tx, u *domain.User) error {
		u.ProfileImgURL = imgURL
		return nil
	})
}

func (s *UserService) update(actor domain.UserID, fn func(tx *store.Tx, u *domain.User) error) error {
	return s.store.Update(func(tx *store.Tx) error {
		u, err := tx.User(actor)
		if err != nil {
			return err
		}
		return fn(tx, u)
	})
}

// UserStats measures how much of the workspace actor takes part in.
func (s *UserService) UserStats(actor domain.UserID) (UserStats, error) {
	var out UserStats
	err := s.store.View(func(tx *store.Tx) error {
		if !tx.UserExists(actor) {
			return errors.ErrUserNotFound
		}
		refs := tx.ContainersOf(actor)
		channels := lo.CountBy(refs, func(r domain.ContainerRef) bool { return r.IsChannel() })
		dms := len(refs) - channels
		sent := len(tx.MessagesBy(actor))
		out = UserStats{
			ChannelsJoined:  channels,
			DmsJoined:       dms,
			MessagesSent:    sent,
			InvolvementRate: rate(channels+dms+sent, len(tx.Channels())+len(tx.Dms())+tx.MessageCount()),
			TimeStamp:       s.now().Unix(),
		}
		return nil
	})
	return out, err
}

// WorkspaceStats counts what exists and the share of active users that
// belong to at least one channel or dm.
func (s *UserService) WorkspaceStats(_ domain.UserID) (WorkspaceStats, error) {
	var out WorkspaceStats
	err := s.store.View(func(tx *store.Tx) error {
		active := lo.Filter(tx.Users(), func(u *domain.User, _ int) bool { return !u.Removed })
		involved := lo.CountBy(active, func(u *domain.User) bool { return len(tx.ContainersOf(u.ID)) > 0 })
		out = WorkspaceStats{
			ChannelsExist:   len(tx.Channels()),
			DmsExist:        len(tx.Dms()),
			MessagesExist:   tx.MessageCount(),
			UtilizationRate: rate(involved, len(active)),
			TimeStamp:       s.now().Unix(),
		}
		return nil
	})
	return out, err
}
