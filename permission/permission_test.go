package permission

import (
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/store"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const (
	owner    domain.UserID = 1 // global owner
	alice    domain.UserID = 2
	bob      domain.UserID = 3
	outsider domain.UserID = 4
)

type fixture struct {
	st        *store.Store
	channel   domain.ContainerRef
	private   domain.ChannelID
	dm        domain.ContainerRef
	chanMsg   domain.MessageID
	dmMsg     domain.MessageID
	strayMsg  domain.MessageID
	strayChan domain.ContainerRef
}

// newFixture builds: a public channel owned by alice with bob as member, a
// private channel owned by bob, a dm created by alice with bob, and a channel
// owned by owner where bob posted then left.
func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{st: store.New(logs.GetLoggerFromLevel(slog.LevelDebug))}
	err := f.st.Update(func(tx *store.Tx) error {
		for _, name := range []string{"owner", "alice", "bob", "outsider"} {
			tx.AddUser(domain.User{FirstName: name, Handle: name})
		}
		ch := tx.CreateChannel("general", true, alice)
		f.channel = ch.Ref()
		if err := tx.AddMember(f.channel, bob); err != nil {
			return err
		}
		f.private = tx.CreateChannel("secret", false, bob).ChannelID()
		f.dm = tx.CreateDm("alice, bob", alice, []domain.UserID{bob}).Ref()

		msg, err := tx.AppendMessage(domain.Message{AuthorID: bob, Container: f.channel, Content: "in channel"})
		if err != nil {
			return err
		}
		f.chanMsg = msg.ID
		msg, err = tx.AppendMessage(domain.Message{AuthorID: bob, Container: f.dm, Content: "in dm"})
		if err != nil {
			return err
		}
		f.dmMsg = msg.ID

		stray := tx.CreateChannel("stray", true, owner)
		f.strayChan = stray.Ref()
		if err = tx.AddMember(f.strayChan, bob); err != nil {
			return err
		}
		msg, err = tx.AppendMessage(domain.Message{AuthorID: bob, Container: f.strayChan, Content: "left behind"})
		if err != nil {
			return err
		}
		f.strayMsg = msg.ID
		return tx.RemoveMember(f.strayChan, bob)
	})
	require.NoError(t, err)
	return f
}

func (f fixture) view(t *testing.T, fn func(d Directory)) {
	t.Helper()
	require.NoError(t, f.st.View(func(tx *store.Tx) error {
		fn(tx)
		return nil
	}))
}

func TestCanReact_RequiresMembership(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.view(t, func(d Directory) {
		_, _, err := CanReact(d, bob, f.chanMsg)
		req.NoError(err)

		_, _, err = CanReact(d, outsider, f.chanMsg)
		req.ErrorIs(err, errors.ErrMessageNotFound)

		_, _, err = CanReact(d, owner, f.dmMsg)
		req.ErrorIs(err, errors.ErrInput)

		_, _, err = CanReact(d, bob, 999)
		req.ErrorIs(err, errors.ErrMessageNotFound)
	})
}

func TestCanPin(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.view(t, func(d Directory) {
		_, err := CanPin(d, alice, f.chanMsg)
		req.NoError(err)

		_, err = CanPin(d, bob, f.chanMsg)
		req.ErrorIs(err, errors.ErrNotOwner)
		req.ErrorIs(err, errors.ErrAccess)

		_, err = CanPin(d, alice, f.dmMsg)
		req.NoError(err)

		_, err = CanPin(d, outsider, f.chanMsg)
		req.ErrorIs(err, errors.ErrInput)
	})
}

func TestCanPin_GlobalOwnerOnlyInChannels(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	require.NoError(t, f.st.Update(func(tx *store.Tx) error {
		if err := tx.AddMember(f.channel, owner); err != nil {
			return err
		}
		return tx.AddMember(f.dm, owner)
	}))
	f.view(t, func(d Directory) {
		_, err := CanPin(d, owner, f.chanMsg)
		req.NoError(err)

		_, err = CanPin(d, owner, f.dmMsg)
		req.ErrorIs(err, errors.ErrNotOwner)
	})
}

func TestCanModify(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.view(t, func(d Directory) {
		tests := []struct {
			name  string
			actor domain.UserID
			msg   domain.MessageID
			err   error
		}{
			{"author", bob, f.chanMsg, nil},
			{"channel owner", alice, f.chanMsg, nil},
			{"global owner outside the channel", owner, f.chanMsg, nil},
			{"dm owner", alice, f.dmMsg, nil},
			{"global owner has no dm authority", owner, f.dmMsg, errors.ErrNotAuthorOrOwner},
			{"stranger", outsider, f.chanMsg, errors.ErrNotAuthorOrOwner},
			{"author after leaving", bob, f.strayMsg, nil},
			{"missing message", alice, 999, errors.ErrMessageNotFound},
		}
		for _, tt := range tests {
			_, err := CanModify(d, tt.actor, tt.msg)
			if tt.err == nil {
				req.NoError(err, tt.name)
			} else {
				req.ErrorIs(err, tt.err, tt.name)
			}
		}
	})
}

func TestCanJoin(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.view(t, func(d Directory) {
		_, err := CanJoin(d, owner, f.private)
		req.NoError(err)

		_, err = CanJoin(d, alice, f.private)
		req.ErrorIs(err, errors.ErrPrivateChannel)
		req.ErrorIs(err, errors.ErrAccess)

		_, err = CanJoin(d, bob, domain.ChannelID(f.channel.ID))
		req.ErrorIs(err, errors.ErrAlreadyMember)

		_, err = CanJoin(d, outsider, 42)
		req.ErrorIs(err, errors.ErrChannelNotFound)
	})
}

func TestCanManageOwners(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	id := domain.ChannelID(f.channel.ID)
	f.view(t, func(d Directory) {
		_, err := CanManageOwners(d, alice, bob, id)
		req.NoError(err)

		_, err = CanManageOwners(d, bob, bob, id)
		req.ErrorIs(err, errors.ErrNotOwner)

		_, err = CanManageOwners(d, owner, bob, id)
		req.ErrorIs(err, errors.ErrNotOwner)

		_, err = CanManageOwners(d, bob, 99, id)
		req.ErrorIs(err, errors.ErrUserNotFound)
	})
}

func TestCanRemoveUser(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.view(t, func(d Directory) {
		req.ErrorIs(CanRemoveUser(d, owner, 99), errors.ErrUserNotFound)
		req.ErrorIs(CanRemoveUser(d, alice, bob), errors.ErrNotGlobalOwner)
		req.ErrorIs(CanRemoveUser(d, owner, owner), errors.ErrLastGlobalOwner)
		req.NoError(CanRemoveUser(d, owner, bob))
	})
}

func TestCanChangePermission(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.view(t, func(d Directory) {
		req.ErrorIs(CanChangePermission(d, owner, 99, domain.PermissionOwner), errors.ErrUserNotFound)
		req.ErrorIs(CanChangePermission(d, owner, bob, 3), errors.ErrInvalidPermission)
		req.ErrorIs(CanChangePermission(d, alice, bob, domain.PermissionOwner), errors.ErrNotGlobalOwner)
		req.ErrorIs(CanChangePermission(d, owner, owner, domain.PermissionMember), errors.ErrLastGlobalOwner)
		req.NoError(CanChangePermission(d, owner, bob, domain.PermissionOwner))
	})
}
