package store

import (
	"chat-core/domain"
)

// Snapshot is a detached copy of every table. Sessions and reset codes are
// included, standups are not: a standup only lives as long as its scheduler
// task, which does not survive a restart.
type Snapshot struct {
	Users         []domain.User
	Channels      []domain.Channel
	Dms           []domain.Dm
	Messages      []domain.Message
	Notifications map[domain.UserID][]domain.Notification
	Sessions      map[string]domain.UserID
	ResetCodes    map[string]domain.UserID
	DmSeq         int
	MessageSeq    int
}

// Snapshot copies the tables under the shared gate.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Notifications: make(map[domain.UserID][]domain.Notification, len(s.notifications)),
		Sessions:      make(map[string]domain.UserID, len(s.sessions)),
		ResetCodes:    make(map[string]domain.UserID, len(s.resetCodes)),
		DmSeq:         s.dmSeq,
		MessageSeq:    s.messageSeq,
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, *u)
	}
	for _, ch := range s.channels {
		snap.Channels = append(snap.Channels, domain.Channel{Container: cloneContainer(ch.Container), IsPublic: ch.IsPublic})
	}
	tx := &Tx{s: s}
	for _, dm := range tx.Dms() {
		snap.Dms = append(snap.Dms, domain.Dm{Container: cloneContainer(dm.Container)})
	}
	for _, ch := range s.channels {
		snap.Messages = append(snap.Messages, cloneMessages(tx, ch.History)...)
	}
	for _, dm := range tx.Dms() {
		snap.Messages = append(snap.Messages, cloneMessages(tx, dm.History)...)
	}
	for id, feed := range s.notifications {
		snap.Notifications[id] = append([]domain.Notification(nil), feed...)
	}
	for k, v := range s.sessions {
		snap.Sessions[k] = v
	}
	for k, v := range s.resetCodes {
		snap.ResetCodes[k] = v
	}
	return snap
}

// Restore replaces every table with the content of snap. Any active standup
// is discarded.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	for _, u := range snap.Users {
		s.users = append(s.users, &u)
	}
	for _, ch := range snap.Channels {
		s.channels = append(s.channels, &domain.Channel{Container: cloneContainer(ch.Container), IsPublic: ch.IsPublic})
	}
	for _, dm := range snap.Dms {
		s.dms[dm.DmID()] = &domain.Dm{Container: cloneContainer(dm.Container)}
	}
	for _, m := range snap.Messages {
		m.Reacts = cloneReacts(m.Reacts)
		s.messages[m.ID] = &m
	}
	for id, feed := range snap.Notifications {
		s.notifications[id] = append([]domain.Notification(nil), feed...)
	}
	for k, v := range snap.Sessions {
		s.sessions[k] = v
	}
	for k, v := range snap.ResetCodes {
		s.resetCodes[k] = v
	}
	s.dmSeq = snap.DmSeq
	s.messageSeq = snap.MessageSeq
	s.log.Info("Store restored", "users", len(s.users), "channels", len(s.channels), "dms", len(s.dms), "messages", len(s.messages))
}

func cloneContainer(c domain.Container) domain.Container {
	return domain.Container{
		ID:      c.ID,
		Name:    c.Name,
		Owners:  c.Owners.Clone(),
		Members: c.Members.Clone(),
		History: append([]domain.MessageID(nil), c.History...),
	}
}

func cloneMessages(tx *Tx, ids []domain.MessageID) []domain.Message {
	out := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		msg, err := tx.Message(id)
		if err != nil {
			continue
		}
		cp := *msg
		cp.Reacts = cloneReacts(msg.Reacts)
		out = append(out, cp)
	}
	return out
}

func cloneReacts(reacts []domain.React) []domain.React {
	if len(reacts) == 0 {
		return nil
	}
	out := make([]domain.React, len(reacts))
	for i, r := range reacts {
		out[i] = domain.React{ReactID: r.ReactID, UserIDs: r.UserIDs.Clone()}
	}
	return out
}
