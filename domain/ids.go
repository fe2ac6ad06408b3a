// Package domain contains the core entities of the messaging system.
// No storage, transport, or scheduling logic should be added here.
package domain

import (
	"fmt"

	"github.com/samber/lo"
)

type UserID int

type ChannelID int

type DmID int

type MessageID int

// NoID marks the unused side of a channel-or-dm pair.
const NoID = -1

type ContainerKind int

const (
	KindChannel ContainerKind = iota + 1
	KindDm
)

func (k ContainerKind) String() string {
	switch k {
	case KindChannel:
		return "channel"
	case KindDm:
		return "dm"
	default:
		return "unknown"
	}
}

// ContainerRef identifies a channel or a dm. Channel and dm ids are allocated
// from separate sequences, so the kind is part of the identity.
type ContainerRef struct {
	Kind ContainerKind
	ID   int
}

func ChannelRef(id ChannelID) ContainerRef {
	return ContainerRef{Kind: KindChannel, ID: int(id)}
}

func DmRef(id DmID) ContainerRef {
	return ContainerRef{Kind: KindDm, ID: int(id)}
}

func (r ContainerRef) IsChannel() bool { return r.Kind == KindChannel }

// ChannelID returns the channel id or NoID for a dm.
func (r ContainerRef) ChannelID() ChannelID {
	return lo.Ternary(r.Kind == KindChannel, ChannelID(r.ID), ChannelID(NoID))
}

// DmID returns the dm id or NoID for a channel.
func (r ContainerRef) DmID() DmID {
	return lo.Ternary(r.Kind == KindDm, DmID(r.ID), DmID(NoID))
}

func (r ContainerRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// UserSet is an insertion-ordered set of user ids.
type UserSet []UserID

func (s UserSet) Contains(id UserID) bool {
	return lo.Contains(s, id)
}

// Add appends id unless it is already present.
func (s *UserSet) Add(id UserID) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove splices id out, keeping the order of the remaining ids.
func (s *UserSet) Remove(id UserID) bool {
	if !s.Contains(id) {
		return false
	}
	*s = lo.Without(*s, id)
	return true
}

// Clone returns a copy that never aliases the store's backing array.
func (s UserSet) Clone() UserSet {
	return append(UserSet{}, s...)
}
