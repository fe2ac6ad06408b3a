package domain

import (
	"chat-core/errors"

	"github.com/samber/lo"
)

// Container is the part shared by channels and dms: a name, an ordered owner
// set, an ordered member set and the message history in posting order.
type Container struct {
	ID      int
	Name    string
	Owners  UserSet
	Members UserSet
	History []MessageID
}

func (c *Container) IsMember(id UserID) bool { return c.Members.Contains(id) }

func (c *Container) IsOwner(id UserID) bool { return c.Owners.Contains(id) }

func (c *Container) Join(id UserID) error {
	if !c.Members.Add(id) {
		return errors.ErrAlreadyMember
	}
	return nil
}

// Leave removes id from the members and, when present, from the owners.
func (c *Container) Leave(id UserID) error {
	if !c.Members.Remove(id) {
		return errors.ErrNotMemberTarget
	}
	c.Owners.Remove(id)
	return nil
}

// Promote adds a member to the owner set.
func (c *Container) Promote(id UserID) error {
	if c.IsOwner(id) {
		return errors.ErrAlreadyOwner
	}
	if !c.IsMember(id) {
		return errors.ErrNotMemberTarget
	}
	c.Owners.Add(id)
	return nil
}

// Demote removes an owner, refusing to leave the container without one.
func (c *Container) Demote(id UserID) error {
	if !c.IsOwner(id) {
		return errors.ErrNotOwnerTarget
	}
	if len(c.Owners) == 1 {
		return errors.ErrLastOwner
	}
	c.Owners.Remove(id)
	return nil
}

func (c *Container) Push(id MessageID) {
	c.History = append(c.History, id)
}

// Drop removes id from the history. Ids are never reused, so the gap it
// leaves is permanent.
func (c *Container) Drop(id MessageID) bool {
	if !lo.Contains(c.History, id) {
		return false
	}
	c.History = lo.Without(c.History, id)
	return true
}

type Channel struct {
	Container
	IsPublic bool
}

func (c *Channel) ChannelID() ChannelID { return ChannelID(c.ID) }

func (c *Channel) Ref() ContainerRef { return ChannelRef(c.ChannelID()) }

// Dm keeps its creator as the single owner for the whole of its life.
type Dm struct {
	Container
}

func (d *Dm) DmID() DmID { return DmID(d.ID) }

func (d *Dm) Ref() ContainerRef { return DmRef(d.DmID()) }

func (d *Dm) CreatorID() UserID {
	if len(d.Owners) == 0 {
		return UserID(NoID)
	}
	return d.Owners[0]
}
