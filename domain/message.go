package domain

import (
	"chat-core/errors"
	"unicode/utf8"

	"github.com/samber/lo"
)

const (
	MaxMessageLength = 1000
	RemovedContent   = "Removed user"
)

type ReactID int

// ReactLike is the only react currently accepted.
const ReactLike ReactID = 1

func (r ReactID) Valid() bool { return r == ReactLike }

type React struct {
	ReactID ReactID
	UserIDs UserSet
}

// Message is a single post. A message whose content is empty no longer
// exists, which is why editing to "" removes it.
type Message struct {
	ID        MessageID
	AuthorID  UserID
	Container ContainerRef
	Content   string
	CreatedAt int64
	Pinned    bool
	Reacts    []React
}

// ValidateContent checks the 1..1000 character bound on posted content.
func ValidateContent(content string) error {
	n := utf8.RuneCountInString(content)
	switch {
	case n == 0:
		return errors.ErrMessageEmpty
	case n > MaxMessageLength:
		return errors.ErrMessageTooLong
	}
	return nil
}

func (m *Message) reactIndex(reactID ReactID) int {
	_, idx, ok := lo.FindIndexOf(m.Reacts, func(r React) bool { return r.ReactID == reactID })
	if !ok {
		return -1
	}
	return idx
}

func (m *Message) HasReacted(userID UserID, reactID ReactID) bool {
	idx := m.reactIndex(reactID)
	return idx >= 0 && m.Reacts[idx].UserIDs.Contains(userID)
}

// React moves (userID, reactID) from not-reacted to reacted.
func (m *Message) React(userID UserID, reactID ReactID) error {
	if !reactID.Valid() {
		return errors.ErrInvalidReact
	}
	idx := m.reactIndex(reactID)
	if idx < 0 {
		m.Reacts = append(m.Reacts, React{ReactID: reactID, UserIDs: UserSet{userID}})
		return nil
	}
	if !m.Reacts[idx].UserIDs.Add(userID) {
		return errors.ErrAlreadyReacted
	}
	return nil
}

// Unreact moves (userID, reactID) from reacted back to not-reacted. An entry
// left without users is dropped.
func (m *Message) Unreact(userID UserID, reactID ReactID) error {
	if !reactID.Valid() {
		return errors.ErrInvalidReact
	}
	idx := m.reactIndex(reactID)
	if idx < 0 || !m.Reacts[idx].UserIDs.Remove(userID) {
		return errors.ErrNotReacted
	}
	if len(m.Reacts[idx].UserIDs) == 0 {
		m.Reacts = append(m.Reacts[:idx:idx], m.Reacts[idx+1:]...)
	}
	return nil
}

func (m *Message) Pin() error {
	if m.Pinned {
		return errors.ErrAlreadyPinned
	}
	m.Pinned = true
	return nil
}

func (m *Message) Unpin() error {
	if !m.Pinned {
		return errors.ErrNotPinned
	}
	m.Pinned = false
	return nil
}
