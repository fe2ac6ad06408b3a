package services

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/store"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

type IStandupService interface {
	StartStandup(actor domain.UserID, id domain.ChannelID, length int) (int64, error)
	StandupActive(actor domain.UserID, id domain.ChannelID) (StandupStatus, error)
	SendStandup(actor domain.UserID, id domain.ChannelID, line string) error
}

type StandupService struct {
	log       *slog.Logger
	store     *store.Store
	scheduler contract.IScheduler
	now       Clock
}

func NewStandupService(log *slog.Logger, st *store.Store, scheduler contract.IScheduler, now Clock) IStandupService {
	return &StandupService{log: log, store: st, scheduler: scheduler, now: now}
}

// StartStandup opens a standup of length seconds and returns its finish time.
func (s *StandupService) StartStandup(actor domain.UserID, id domain.ChannelID, length int) (int64, error) {
	var finishAt int64
	err := s.store.Update(func(tx *store.Tx) error {
		ch, err := tx.Channel(id)
		if err != nil {
			return err
		}
		if length < 0 {
			return errors.ErrInvalidLength
		}
		if !ch.IsMember(actor) {
			return fmt.Errorf("%w: channel %d", errors.ErrNotMember, id)
		}
		if _, active := tx.Standup(id); active {
			return errors.ErrStandupActive
		}
		finishAt = s.now().Unix() + int64(length)
		tx.StartStandup(domain.Standup{ChannelID: id, StarterID: actor, FinishAt: finishAt})
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.scheduler.Schedule(fmt.Sprintf("standup:%d", id), time.Unix(finishAt, 0), func(time.Time) {
		s.finish(id)
	})
	return finishAt, nil
}

// finish posts the buffered lines as one message from the starter. Nothing
// is posted for an empty buffer or when the starter is no longer a member.
func (s *StandupService) finish(id domain.ChannelID) {
	err := s.store.Update(func(tx *store.Tx) error {
		st, active := tx.EndStandup(id)
		if !active || len(st.Lines) == 0 {
			return nil
		}
		ref := domain.ChannelRef(id)
		if _, err := memberOf(tx, ref, st.StarterID); err != nil {
			return err
		}
		summary := st.Summary()
		if err := domain.ValidateContent(summary); err != nil {
			return err
		}
		_, err := post(tx, domain.Message{
			AuthorID:  st.StarterID,
			Container: ref,
			Content:   summary,
			CreatedAt: st.FinishAt,
		}, summary)
		return err
	})
	if err != nil {
		s.log.Warn("Standup summary dropped", "channel", id, "error", err)
	}
}

func (s *StandupService) StandupActive(actor domain.UserID, id domain.ChannelID) (StandupStatus, error) {
	var out StandupStatus
	err := s.store.View(func(tx *store.Tx) error {
		if _, err := memberOf(tx, domain.ChannelRef(id), actor); err != nil {
			return err
		}
		if st, active := tx.Standup(id); active {
			out = StandupStatus{IsActive: true, TimeFinish: lo.ToPtr(st.FinishAt)}
		}
		return nil
	})
	return out, err
}

// SendStandup buffers "handle: line" into the active standup.
func (s *StandupService) SendStandup(actor domain.UserID, id domain.ChannelID, line string) error {
	return s.store.Update(func(tx *store.Tx) error {
		ch, err := tx.Channel(id)
		if err != nil {
			return err
		}
		if err = domain.ValidateContent(line); err != nil {
			return err
		}
		if !ch.IsMember(actor) {
			return fmt.Errorf("%w: channel %d", errors.ErrNotMember, id)
		}
		st, active := tx.Standup(id)
		if !active {
			return errors.ErrStandupNotActive
		}
		u, err := tx.User(actor)
		if err != nil {
			return err
		}
		return st.Append(u.Handle, line)
	})
}
