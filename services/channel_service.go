package services

import (
	"chat-core/auth"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/errors"
	"chat-core/permission"
	"chat-core/projection"
	"chat-core/store"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

type IChannelService interface {
	CreateChannel(actor domain.UserID, name string, isPublic bool) (domain.ChannelID, error)
	ListChannels(actor domain.UserID) ([]ChannelSummary, error)
	ListAllChannels(actor domain.UserID) ([]ChannelSummary, error)
	ChannelDetails(actor domain.UserID, id domain.ChannelID) (ChannelDetails, error)
	JoinChannel(actor domain.UserID, id domain.ChannelID) error
	InviteToChannel(actor domain.UserID, id domain.ChannelID, target domain.UserID) error
	LeaveChannel(actor domain.UserID, id domain.ChannelID) error
	AddChannelOwner(actor domain.UserID, id domain.ChannelID, target domain.UserID) error
	RemoveChannelOwner(actor domain.UserID, id domain.ChannelID, target domain.UserID) error
	ChannelMessages(actor domain.UserID, id domain.ChannelID, start int) (projection.Page, error)
}

type ChannelService struct {
	log   *slog.Logger
	store *store.Store
}

func NewChannelService(log *slog.Logger, st *store.Store) IChannelService {
	return &ChannelService{log: log, store: st}
}

func (s *ChannelService) CreateChannel(actor domain.UserID, name string, isPublic bool) (domain.ChannelID, error) {
	if err := auth.ValidateChannelName(name); err != nil {
		return 0, err
	}
	var id domain.ChannelID
	err := s.store.Update(func(tx *store.Tx) error {
		if !tx.UserExists(actor) {
			return errors.ErrUserNotFound
		}
		id = tx.CreateChannel(name, isPublic, actor).ChannelID()
		return nil
	})
	if err == nil {
		s.log.Debug("Channel created", "channel", id, "owner", actor, "public", isPublic)
	}
	return id, err
}

func summarize(channels []*domain.Channel) []ChannelSummary {
	return lo.Map(channels, func(ch *domain.Channel, _ int) ChannelSummary {
		return ChannelSummary{ID: ch.ChannelID(), Name: ch.Name}
	})
}

// ListChannels lists the channels actor is a member of.
func (s *ChannelService) ListChannels(actor domain.UserID) ([]ChannelSummary, error) {
	var out []ChannelSummary
	err := s.store.View(func(tx *store.Tx) error {
		out = summarize(lo.Filter(tx.Channels(), func(ch *domain.Channel, _ int) bool { return ch.IsMember(actor) }))
		return nil
	})
	return out, err
}

// ListAllChannels lists every channel, private ones included.
func (s *ChannelService) ListAllChannels(_ domain.UserID) ([]ChannelSummary, error) {
	var out []ChannelSummary
	err := s.store.View(func(tx *store.Tx) error {
		out = summarize(tx.Channels())
		return nil
	})
	return out, err
}

func (s *ChannelService) ChannelDetails(actor domain.UserID, id domain.ChannelID) (ChannelDetails, error) {
	var out ChannelDetails
	err := s.store.View(func(tx *store.Tx) error {
		ch, err := tx.Channel(id)
		if err != nil {
			return err
		}
		if !ch.IsMember(actor) {
			return fmt.Errorf("%w: channel %d", errors.ErrNotMember, id)
		}
		out = ChannelDetails{
			Name:     ch.Name,
			IsPublic: ch.IsPublic,
			Owners:   userViews(tx, ch.Owners),
			Members:  userViews(tx, ch.Members),
		}
		return nil
	})
	return out, err
}

func (s *ChannelService) JoinChannel(actor domain.UserID, id domain.ChannelID) error {
	return s.store.Update(func(tx *store.Tx) error {
		ch, err := permission.CanJoin(tx, actor, id)
		if err != nil {
			return err
		}
		return ch.Join(actor)
	})
}

// InviteToChannel adds target on behalf of a member, public or private.
func (s *ChannelService) InviteToChannel(actor domain.UserID, id domain.ChannelID, target domain.UserID) error {
	return s.store.Update(func(tx *store.Tx) error {
		ch, err := tx.Channel(id)
		if err != nil {
			return err
		}
		if !tx.UserExists(target) {
			return fmt.Errorf("%w: %d", errors.ErrUserNotFound, target)
		}
		if !ch.IsMember(actor) {
			return fmt.Errorf("%w: channel %d", errors.ErrNotMember, id)
		}
		if err = ch.Join(target); err != nil {
			return err
		}
		tx.Publish(event.MembersAdded{Container: ch.Ref(), AdderID: actor, UserIDs: []domain.UserID{target}})
		return nil
	})
}

// LeaveChannel removes actor from members and owners. The channel stays,
// even without anyone left in it.
func (s *ChannelService) LeaveChannel(actor domain.UserID, id domain.ChannelID) error {
	return s.store.Update(func(tx *store.Tx) error {
		ch, err := tx.Channel(id)
		if err != nil {
			return err
		}
		if !ch.IsMember(actor) {
			return fmt.Errorf("%w: channel %d", errors.ErrNotMember, id)
		}
		if st, active := tx.Standup(id); active && st.StarterID == actor {
			return errors.ErrStandupStarter
		}
		return ch.Leave(actor)
	})
}

func (s *ChannelService) AddChannelOwner(actor domain.UserID, id domain.ChannelID, target domain.UserID) error {
	return s.store.Update(func(tx *store.Tx) error {
		ch, err := permission.CanManageOwners(tx, actor, target, id)
		if err != nil {
			return err
		}
		return ch.Promote(target)
	})
}

func (s *ChannelService) RemoveChannelOwner(actor domain.UserID, id domain.ChannelID, target domain.UserID) error {
	return s.store.Update(func(tx *store.Tx) error {
		ch, err := permission.CanManageOwners(tx, actor, target, id)
		if err != nil {
			return err
		}
		return ch.Demote(target)
	})
}

func (s *ChannelService) ChannelMessages(actor domain.UserID, id domain.ChannelID, start int) (projection.Page, error) {
	return containerPage(s.store, domain.ChannelRef(id), actor, start)
}

// containerPage is shared by the channel and dm read paths so both follow the
// same start rule.
func containerPage(st *store.Store, ref domain.ContainerRef, actor domain.UserID, start int) (projection.Page, error) {
	var page projection.Page
	err := st.View(func(tx *store.Tx) error {
		if _, err := memberOf(tx, ref, actor); err != nil {
			return err
		}
		history, err := tx.History(ref)
		if err != nil {
			return err
		}
		page, err = projection.Timeline(history, start, actor)
		return err
	})
	return page, err
}
