// Package permission decides whether an acting user may perform a mutation.
//
// Every check runs in the same order: the target must exist (InputError),
// then the actor must be authorised (AccessError), then the requested state
// change must be valid (InputError, reported by the domain).
package permission

import (
	"chat-core/domain"
	"chat-core/errors"
	"fmt"
)

// Directory is the read side of the store needed to take a decision.
type Directory interface {
	UserExists(id domain.UserID) bool
	IsGlobalOwner(id domain.UserID) bool
	GlobalOwnerCount() int
	Message(id domain.MessageID) (*domain.Message, error)
	Container(ref domain.ContainerRef) (*domain.Container, error)
	Channel(id domain.ChannelID) (*domain.Channel, error)
}

// hasAuthority reports container-owner rights. Global owners only carry them
// inside channels.
func hasAuthority(d Directory, ref domain.ContainerRef, c *domain.Container, actor domain.UserID) bool {
	return c.IsOwner(actor) || (ref.IsChannel() && d.IsGlobalOwner(actor))
}

// visibleMessage resolves a message that actor can currently see. A message
// in a container actor is not a member of does not exist to them.
func visibleMessage(d Directory, actor domain.UserID, id domain.MessageID) (*domain.Message, *domain.Container, error) {
	msg, err := d.Message(id)
	if err != nil {
		return nil, nil, err
	}
	c, err := d.Container(msg.Container)
	if err != nil || !c.IsMember(actor) {
		return nil, nil, fmt.Errorf("%w: %d", errors.ErrMessageNotFound, id)
	}
	return msg, c, nil
}

// CanReact resolves a message actor may react to or unreact from.
func CanReact(d Directory, actor domain.UserID, id domain.MessageID) (*domain.Message, *domain.Container, error) {
	return visibleMessage(d, actor, id)
}

// CanPin resolves a message actor may pin or unpin.
func CanPin(d Directory, actor domain.UserID, id domain.MessageID) (*domain.Message, error) {
	msg, c, err := visibleMessage(d, actor, id)
	if err != nil {
		return nil, err
	}
	if !hasAuthority(d, msg.Container, c, actor) {
		return nil, errors.ErrNotOwner
	}
	return msg, nil
}

// CanModify resolves a message actor may edit or remove. Membership is not
// required: the author keeps the right after leaving.
func CanModify(d Directory, actor domain.UserID, id domain.MessageID) (*domain.Message, error) {
	msg, err := d.Message(id)
	if err != nil {
		return nil, err
	}
	if msg.AuthorID == actor {
		return msg, nil
	}
	c, err := d.Container(msg.Container)
	if err != nil || !hasAuthority(d, msg.Container, c, actor) {
		return nil, errors.ErrNotAuthorOrOwner
	}
	return msg, nil
}

// CanJoin checks whether actor may join the channel on their own.
func CanJoin(d Directory, actor domain.UserID, id domain.ChannelID) (*domain.Channel, error) {
	ch, err := d.Channel(id)
	if err != nil {
		return nil, err
	}
	if ch.IsMember(actor) {
		return nil, errors.ErrAlreadyMember
	}
	if !ch.IsPublic && !d.IsGlobalOwner(actor) {
		return nil, errors.ErrPrivateChannel
	}
	return ch, nil
}

// CanManageOwners checks whether actor may add or remove owners of a channel.
// Global owners need to be members to use their channel authority.
func CanManageOwners(d Directory, actor, target domain.UserID, id domain.ChannelID) (*domain.Channel, error) {
	ch, err := d.Channel(id)
	if err != nil {
		return nil, err
	}
	if !d.UserExists(target) {
		return nil, fmt.Errorf("%w: %d", errors.ErrUserNotFound, target)
	}
	if !ch.IsOwner(actor) && !(ch.IsMember(actor) && d.IsGlobalOwner(actor)) {
		return nil, errors.ErrNotOwner
	}
	return ch, nil
}

// CanRemoveUser checks an admin removal of target by actor.
func CanRemoveUser(d Directory, actor, target domain.UserID) error {
	if !d.UserExists(target) {
		return fmt.Errorf("%w: %d", errors.ErrUserNotFound, target)
	}
	if !d.IsGlobalOwner(actor) {
		return errors.ErrNotGlobalOwner
	}
	if d.IsGlobalOwner(target) && d.GlobalOwnerCount() == 1 {
		return errors.ErrLastGlobalOwner
	}
	return nil
}

// CanChangePermission checks that actor may set target's global permission to p.
func CanChangePermission(d Directory, actor, target domain.UserID, p domain.Permission) error {
	if !d.UserExists(target) {
		return fmt.Errorf("%w: %d", errors.ErrUserNotFound, target)
	}
	if !p.Valid() {
		return errors.ErrInvalidPermission
	}
	if !d.IsGlobalOwner(actor) {
		return errors.ErrNotGlobalOwner
	}
	if p == domain.PermissionMember && d.IsGlobalOwner(target) && d.GlobalOwnerCount() == 1 {
		return errors.ErrLastGlobalOwner
	}
	return nil
}
