package services

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/errors"
	"chat-core/permission"
	"chat-core/projection"
	"chat-core/store"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

type IMessageService interface {
	SendMessage(actor domain.UserID, channelID domain.ChannelID, content string) (domain.MessageID, error)
	SendDm(actor domain.UserID, dmID domain.DmID, content string) (domain.MessageID, error)
	EditMessage(actor domain.UserID, id domain.MessageID, content string) error
	RemoveMessage(actor domain.UserID, id domain.MessageID) error
	ReactMessage(actor domain.UserID, id domain.MessageID, reactID domain.ReactID) error
	UnreactMessage(actor domain.UserID, id domain.MessageID, reactID domain.ReactID) error
	PinMessage(actor domain.UserID, id domain.MessageID) error
	UnpinMessage(actor domain.UserID, id domain.MessageID) error
	ShareMessage(actor domain.UserID, ogID domain.MessageID, extra string, channelID domain.ChannelID, dmID domain.DmID) (domain.MessageID, error)
	SendMessageLater(actor domain.UserID, channelID domain.ChannelID, content string, sendAt int64) (domain.MessageID, error)
	SendDmLater(actor domain.UserID, dmID domain.DmID, content string, sendAt int64) (domain.MessageID, error)
	Search(actor domain.UserID, query string) ([]projection.MessageView, error)
}

type MessageService struct {
	log       *slog.Logger
	store     *store.Store
	scheduler contract.IScheduler
	now       Clock
}

func NewMessageService(log *slog.Logger, st *store.Store, scheduler contract.IScheduler, now Clock) IMessageService {
	return &MessageService{log: log, store: st, scheduler: scheduler, now: now}
}

func (s *MessageService) SendMessage(actor domain.UserID, channelID domain.ChannelID, content string) (domain.MessageID, error) {
	return s.send(actor, domain.ChannelRef(channelID), content)
}

func (s *MessageService) SendDm(actor domain.UserID, dmID domain.DmID, content string) (domain.MessageID, error) {
	return s.send(actor, domain.DmRef(dmID), content)
}

func (s *MessageService) send(actor domain.UserID, ref domain.ContainerRef, content string) (domain.MessageID, error) {
	var id domain.MessageID
	err := s.store.Update(func(tx *store.Tx) error {
		if _, err := memberOf(tx, ref, actor); err != nil {
			return err
		}
		if err := domain.ValidateContent(content); err != nil {
			return err
		}
		msg, err := post(tx, domain.Message{
			AuthorID:  actor,
			Container: ref,
			Content:   content,
			CreatedAt: s.now().Unix(),
		}, content)
		if err != nil {
			return err
		}
		id = msg.ID
		return nil
	})
	return id, err
}

// EditMessage overwrites content. Empty content removes the message.
func (s *MessageService) EditMessage(actor domain.UserID, id domain.MessageID, content string) error {
	return s.store.Update(func(tx *store.Tx) error {
		msg, err := permission.CanModify(tx, actor, id)
		if err != nil {
			return err
		}
		if content == "" {
			return tx.RemoveMessage(id)
		}
		if err = domain.ValidateContent(content); err != nil {
			return err
		}
		if err = tx.EditMessage(id, content); err != nil {
			return err
		}
		tx.Publish(event.MessageEdited{
			MessageID: id,
			Container: msg.Container,
			EditorID:  actor,
			Content:   content,
		})
		return nil
	})
}

func (s *MessageService) RemoveMessage(actor domain.UserID, id domain.MessageID) error {
	return s.store.Update(func(tx *store.Tx) error {
		if _, err := permission.CanModify(tx, actor, id); err != nil {
			return err
		}
		return tx.RemoveMessage(id)
	})
}

func (s *MessageService) ReactMessage(actor domain.UserID, id domain.MessageID, reactID domain.ReactID) error {
	return s.store.Update(func(tx *store.Tx) error {
		msg, _, err := permission.CanReact(tx, actor, id)
		if err != nil {
			return err
		}
		if err = msg.React(actor, reactID); err != nil {
			return err
		}
		tx.Publish(event.MessageReacted{
			MessageID: id,
			Container: msg.Container,
			ReactorID: actor,
			AuthorID:  msg.AuthorID,
			ReactID:   reactID,
		})
		return nil
	})
}

func (s *MessageService) UnreactMessage(actor domain.UserID, id domain.MessageID, reactID domain.ReactID) error {
	return s.store.Update(func(tx *store.Tx) error {
		msg, _, err := permission.CanReact(tx, actor, id)
		if err != nil {
			return err
		}
		return msg.Unreact(actor, reactID)
	})
}

func (s *MessageService) PinMessage(actor domain.UserID, id domain.MessageID) error {
	return s.store.Update(func(tx *store.Tx) error {
		msg, err := permission.CanPin(tx, actor, id)
		if err != nil {
			return err
		}
		return msg.Pin()
	})
}

func (s *MessageService) UnpinMessage(actor domain.UserID, id domain.MessageID) error {
	return s.store.Update(func(tx *store.Tx) error {
		msg, err := permission.CanPin(tx, actor, id)
		if err != nil {
			return err
		}
		return msg.Unpin()
	})
}

// SharedContent quotes og below the optional extra text.
func SharedContent(extra, og string) string {
	return extra + "\n\n\"\"\"\n" + og + "\n\"\"\""
}

// ShareMessage posts a quote of ogID into the target container. The sharer
// must see the original and belong to the target.
func (s *MessageService) ShareMessage(actor domain.UserID, ogID domain.MessageID, extra string, channelID domain.ChannelID, dmID domain.DmID) (domain.MessageID, error) {
	ref, err := targetRef(channelID, dmID)
	if err != nil {
		return 0, err
	}

	var id domain.MessageID
	err = s.store.Update(func(tx *store.Tx) error {
		og, _, err := permission.CanReact(tx, actor, ogID)
		if err != nil {
			return err
		}
		if _, err = memberOf(tx, ref, actor); err != nil {
			return err
		}
		content := SharedContent(extra, og.Content)
		if err = domain.ValidateContent(content); err != nil {
			return err
		}
		msg, err := post(tx, domain.Message{
			AuthorID:  actor,
			Container: ref,
			Content:   content,
			CreatedAt: s.now().Unix(),
		}, extra)
		if err != nil {
			return err
		}
		id = msg.ID
		return nil
	})
	return id, err
}

func (s *MessageService) SendMessageLater(actor domain.UserID, channelID domain.ChannelID, content string, sendAt int64) (domain.MessageID, error) {
	return s.sendLater(actor, domain.ChannelRef(channelID), content, sendAt)
}

func (s *MessageService) SendDmLater(actor domain.UserID, dmID domain.DmID, content string, sendAt int64) (domain.MessageID, error) {
	return s.sendLater(actor, domain.DmRef(dmID), content, sendAt)
}

// sendLater validates now and reserves the id; the message is appended when
// the scheduler fires.
func (s *MessageService) sendLater(actor domain.UserID, ref domain.ContainerRef, content string, sendAt int64) (domain.MessageID, error) {
	var id domain.MessageID
	err := s.store.Update(func(tx *store.Tx) error {
		if _, err := memberOf(tx, ref, actor); err != nil {
			return err
		}
		if err := domain.ValidateContent(content); err != nil {
			return err
		}
		if sendAt < s.now().Unix() {
			return fmt.Errorf("%w: %d", errors.ErrTimeInPast, sendAt)
		}
		id = tx.ReserveMessageID()
		return nil
	})
	if err != nil {
		return 0, err
	}

	name := fmt.Sprintf("sendlater:%s:%d", ref, id)
	s.scheduler.Schedule(name, time.Unix(sendAt, 0), func(time.Time) {
		s.deliver(domain.Message{
			ID:        id,
			AuthorID:  actor,
			Container: ref,
			Content:   content,
			CreatedAt: sendAt,
		})
	})
	return id, nil
}

// deliver appends a reserved message. A container that disappeared or an
// author who left in the meantime turns the delivery into a no-op.
func (s *MessageService) deliver(msg domain.Message) {
	err := s.store.Update(func(tx *store.Tx) error {
		if _, err := memberOf(tx, msg.Container, msg.AuthorID); err != nil {
			return err
		}
		_, err := post(tx, msg, msg.Content)
		return err
	})
	if err != nil {
		s.log.Warn("Deferred message dropped", "message", msg.ID, "container", msg.Container, "error", err)
		return
	}
	s.log.Debug("Deferred message delivered", "message", msg.ID, "container", msg.Container)
}

// Search returns the messages containing query, case-insensitively, across
// every container actor belongs to. Newest messages come first.
func (s *MessageService) Search(actor domain.UserID, query string) ([]projection.MessageView, error) {
	n := utf8.RuneCountInString(query)
	if n < 1 || n > domain.MaxMessageLength {
		return nil, errors.ErrInvalidQuery
	}
	needle := strings.ToLower(query)

	var views []projection.MessageView
	err := s.store.View(func(tx *store.Tx) error {
		var found []*domain.Message
		for _, ref := range tx.ContainersOf(actor) {
			history, err := tx.History(ref)
			if err != nil {
				return err
			}
			for _, msg := range history {
				if strings.Contains(strings.ToLower(msg.Content), needle) {
					found = append(found, msg)
				}
			}
		}
		sort.Slice(found, func(i, j int) bool {
			if found[i].CreatedAt == found[j].CreatedAt {
				return found[i].ID > found[j].ID
			}
			return found[i].CreatedAt > found[j].CreatedAt
		})
		views = make([]projection.MessageView, 0, len(found))
		for _, msg := range found {
			views = append(views, projection.View(msg, actor))
		}
		return nil
	})
	return views, err
}
