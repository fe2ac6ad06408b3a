// Package event defines the domain events published while a store
// transaction is open. Sinks consume them synchronously, inside the same gate.
package event

import (
	"chat-core/domain"
)

type DomainEvent interface {
	ContainerRef() domain.ContainerRef
}

// MessagePosted is raised for every new message: send, send-later when it
// fires, share and standup summaries.
type MessagePosted struct {
	MessageID domain.MessageID
	Container domain.ContainerRef
	AuthorID  domain.UserID
	Content   string
}

func (m MessagePosted) ContainerRef() domain.ContainerRef { return m.Container }

// MessageEdited is raised when content is overwritten with a non-empty value.
type MessageEdited struct {
	MessageID domain.MessageID
	Container domain.ContainerRef
	EditorID  domain.UserID
	Content   string
}

func (m MessageEdited) ContainerRef() domain.ContainerRef { return m.Container }

type MessageReacted struct {
	MessageID domain.MessageID
	Container domain.ContainerRef
	ReactorID domain.UserID
	AuthorID  domain.UserID
	ReactID   domain.ReactID
}

func (m MessageReacted) ContainerRef() domain.ContainerRef { return m.Container }

// MembersAdded is raised on channel invite, dm creation and dm invite.
type MembersAdded struct {
	Container domain.ContainerRef
	AdderID   domain.UserID
	UserIDs   []domain.UserID
}

func (m MembersAdded) ContainerRef() domain.ContainerRef { return m.Container }
