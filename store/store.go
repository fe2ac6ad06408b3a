// Package store owns every entity table of the system behind a single
// exclusive-access gate.
//
// Nothing outside this package touches the tables directly: callers open a
// transaction with Update (exclusive) or View (shared) and work through the
// Tx accessors. Request handlers and scheduler callbacks go through the same
// gate, so no two read-modify-write sequences on a container interleave.
package store

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"log/slog"
	"sync"
)

// EventSink receives events published inside an Update transaction. It runs
// synchronously under the gate and may mutate state through tx.
type EventSink interface {
	Consume(tx *Tx, e event.DomainEvent)
}

type Store struct {
	mu  sync.RWMutex
	log *slog.Logger

	users         []*domain.User
	channels      []*domain.Channel
	dms           map[domain.DmID]*domain.Dm
	messages      map[domain.MessageID]*domain.Message
	notifications map[domain.UserID][]domain.Notification
	sessions      map[string]domain.UserID
	resetCodes    map[string]domain.UserID
	standups      map[domain.ChannelID]*domain.Standup

	dmSeq      int
	messageSeq int

	sinks []EventSink
}

func New(log *slog.Logger) *Store {
	s := &Store{log: log}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.users = nil
	s.channels = nil
	s.dms = make(map[domain.DmID]*domain.Dm)
	s.messages = make(map[domain.MessageID]*domain.Message)
	s.notifications = make(map[domain.UserID][]domain.Notification)
	s.sessions = make(map[string]domain.UserID)
	s.resetCodes = make(map[string]domain.UserID)
	s.standups = make(map[domain.ChannelID]*domain.Standup)
	s.dmSeq = 0
	s.messageSeq = 0
}

// Subscribe registers sinks for events published in Update transactions.
func (s *Store) Subscribe(sinks ...EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sinks...)
}

// Update runs fn with exclusive access. fn must validate before it mutates:
// there is no rollback, an error returned after a write leaves the write.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s, writable: true})
}

// View runs fn with shared access. Writes panic.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{s: s})
}

// Counts is a cheap summary of the table sizes.
type Counts struct {
	Users    int
	Channels int
	Dms      int
	Messages int
	Sessions int
}

func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{
		Users:    len(s.users),
		Channels: len(s.channels),
		Dms:      len(s.dms),
		Messages: len(s.messages),
		Sessions: len(s.sessions),
	}
}
