package services

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/errors"
	"chat-core/store"
	"fmt"
)

// memberOf resolves a container and checks that actor belongs to it.
func memberOf(tx *store.Tx, ref domain.ContainerRef, actor domain.UserID) (*domain.Container, error) {
	c, err := tx.Container(ref)
	if err != nil {
		return nil, err
	}
	if !c.IsMember(actor) {
		return nil, fmt.Errorf("%w: %s", errors.ErrNotMember, ref)
	}
	return c, nil
}

// post appends a message and publishes it with scanned as the text searched
// for tags. Callers have already checked membership and content.
func post(tx *store.Tx, msg domain.Message, scanned string) (*domain.Message, error) {
	stored, err := tx.AppendMessage(msg)
	if err != nil {
		return nil, err
	}
	tx.Publish(event.MessagePosted{
		MessageID: stored.ID,
		Container: stored.Container,
		AuthorID:  stored.AuthorID,
		Content:   scanned,
	})
	return stored, nil
}

// targetRef turns the (channel_id, dm_id) pair of a request into a ref.
// Exactly one side must be NoID.
func targetRef(channelID domain.ChannelID, dmID domain.DmID) (domain.ContainerRef, error) {
	switch {
	case channelID == domain.NoID && dmID != domain.NoID:
		return domain.DmRef(dmID), nil
	case dmID == domain.NoID && channelID != domain.NoID:
		return domain.ChannelRef(channelID), nil
	default:
		return domain.ContainerRef{}, errors.ErrInvalidTarget
	}
}
