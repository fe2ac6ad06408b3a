package services

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/errors"
	"chat-core/projection"
	"chat-core/store"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/samber/lo"
)

type IDmService interface {
	CreateDm(actor domain.UserID, userIDs []domain.UserID) (domain.DmID, error)
	ListDms(actor domain.UserID) ([]DmSummary, error)
	DmDetails(actor domain.UserID, id domain.DmID) (DmDetails, error)
	InviteToDm(actor domain.UserID, id domain.DmID, target domain.UserID) error
	LeaveDm(actor domain.UserID, id domain.DmID) error
	RemoveDm(actor domain.UserID, id domain.DmID) error
	DmMessages(actor domain.UserID, id domain.DmID, start int) (projection.Page, error)
}

type DmService struct {
	log   *slog.Logger
	store *store.Store
}

func NewDmService(log *slog.Logger, st *store.Store) IDmService {
	return &DmService{log: log, store: st}
}

// DmName joins the sorted member handles with ", ".
func DmName(handles []string) string {
	sorted := append([]string(nil), handles...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

// CreateDm opens a dm between actor, its single owner, and userIDs.
func (s *DmService) CreateDm(actor domain.UserID, userIDs []domain.UserID) (domain.DmID, error) {
	var id domain.DmID
	err := s.store.Update(func(tx *store.Tx) error {
		all := append([]domain.UserID{actor}, userIDs...)
		handles := make([]string, 0, len(all))
		for _, uID := range all {
			u, err := tx.User(uID)
			if err != nil {
				return err
			}
			handles = append(handles, u.Handle)
		}
		if len(lo.Uniq(all)) != len(all) {
			return errors.ErrDuplicateUsers
		}

		dm := tx.CreateDm(DmName(handles), actor, userIDs)
		id = dm.DmID()
		if len(userIDs) > 0 {
			tx.Publish(event.MembersAdded{Container: dm.Ref(), AdderID: actor, UserIDs: userIDs})
		}
		return nil
	})
	return id, err
}

func (s *DmService) ListDms(actor domain.UserID) ([]DmSummary, error) {
	var out []DmSummary
	err := s.store.View(func(tx *store.Tx) error {
		out = lo.FilterMap(tx.Dms(), func(dm *domain.Dm, _ int) (DmSummary, bool) {
			return DmSummary{ID: dm.DmID(), Name: dm.Name}, dm.IsMember(actor)
		})
		return nil
	})
	return out, err
}

func (s *DmService) DmDetails(actor domain.UserID, id domain.DmID) (DmDetails, error) {
	var out DmDetails
	err := s.store.View(func(tx *store.Tx) error {
		c, err := memberOf(tx, domain.DmRef(id), actor)
		if err != nil {
			return err
		}
		out = DmDetails{Name: c.Name, Members: userViews(tx, c.Members)}
		return nil
	})
	return out, err
}

// InviteToDm adds target to an existing dm. The dm keeps its name.
func (s *DmService) InviteToDm(actor domain.UserID, id domain.DmID, target domain.UserID) error {
	return s.store.Update(func(tx *store.Tx) error {
		dm, err := tx.Dm(id)
		if err != nil {
			return err
		}
		if !tx.UserExists(target) {
			return fmt.Errorf("%w: %d", errors.ErrUserNotFound, target)
		}
		if !dm.IsMember(actor) {
			return fmt.Errorf("%w: dm %d", errors.ErrNotMember, id)
		}
		if err = dm.Join(target); err != nil {
			return err
		}
		tx.Publish(event.MembersAdded{Container: dm.Ref(), AdderID: actor, UserIDs: []domain.UserID{target}})
		return nil
	})
}

// LeaveDm removes actor. When the creator leaves, nobody can remove the dm
// any more but its members keep using it.
func (s *DmService) LeaveDm(actor domain.UserID, id domain.DmID) error {
	return s.store.Update(func(tx *store.Tx) error {
		c, err := memberOf(tx, domain.DmRef(id), actor)
		if err != nil {
			return err
		}
		return c.Leave(actor)
	})
}

// RemoveDm deletes the dm and its messages. Only its creator may do it.
func (s *DmService) RemoveDm(actor domain.UserID, id domain.DmID) error {
	return s.store.Update(func(tx *store.Tx) error {
		dm, err := tx.Dm(id)
		if err != nil {
			return err
		}
		if !dm.IsOwner(actor) {
			return errors.ErrNotDmCreator
		}
		s.log.Debug("Removing dm", "dm", id, "messages", len(dm.History))
		return tx.DeleteDm(id)
	})
}

func (s *DmService) DmMessages(actor domain.UserID, id domain.DmID, start int) (projection.Page, error) {
	return containerPage(s.store, domain.DmRef(id), actor, start)
}
