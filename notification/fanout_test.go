package notification

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/store"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*store.Store, domain.ContainerRef) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	st := store.New(log)
	st.Subscribe(NewFanout(log))

	var ref domain.ContainerRef
	err := st.Update(func(tx *store.Tx) error {
		for _, h := range []string{"alice", "bob", "carol"} {
			tx.AddUser(domain.User{FirstName: h, Handle: h})
		}
		ch := tx.CreateChannel("general", true, 1)
		ref = ch.Ref()
		return tx.AddMember(ref, 2)
	})
	require.NoError(t, err)
	return st, ref
}

func feed(t *testing.T, st *store.Store, id domain.UserID) []domain.Notification {
	t.Helper()
	var out []domain.Notification
	require.NoError(t, st.View(func(tx *store.Tx) error {
		out = tx.Notifications(id, domain.NotificationFeedLimit)
		return nil
	}))
	return out
}

func publish(t *testing.T, st *store.Store, e event.DomainEvent) {
	t.Helper()
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		tx.Publish(e)
		return nil
	}))
}

func TestFanout_TagOnlyReachesMembers(t *testing.T) {
	req := require.New(t)
	st, ref := newStore(t)

	publish(t, st, event.MessagePosted{
		MessageID: 1,
		Container: ref,
		AuthorID:  1,
		Content:   "@bob @carol hello there this exceeds twenty chars",
	})

	bob := feed(t, st, 2)
	req.Len(bob, 1)
	req.Equal("alice tagged you in general: @bob @carol hello th", bob[0].Text)
	req.Equal(domain.ChannelID(1), bob[0].ChannelID)
	req.Equal(domain.DmID(domain.NoID), bob[0].DmID)

	req.Empty(feed(t, st, 3))
}

func TestFanout_EditRescansTags(t *testing.T) {
	req := require.New(t)
	st, ref := newStore(t)

	publish(t, st, event.MessageEdited{MessageID: 1, Container: ref, EditorID: 2, Content: "ping @alice"})

	alice := feed(t, st, 1)
	req.Len(alice, 1)
	req.Equal("bob tagged you in general: ping @alice", alice[0].Text)
}

func TestFanout_React(t *testing.T) {
	req := require.New(t)
	st, ref := newStore(t)

	publish(t, st, event.MessageReacted{MessageID: 1, Container: ref, ReactorID: 2, AuthorID: 1, ReactID: domain.ReactLike})
	publish(t, st, event.MessageReacted{MessageID: 1, Container: ref, ReactorID: 1, AuthorID: 1, ReactID: domain.ReactLike})

	alice := feed(t, st, 1)
	req.Len(alice, 1)
	req.Equal("bob reacted to your message in general", alice[0].Text)

	// author no longer a member
	publish(t, st, event.MessageReacted{MessageID: 2, Container: ref, ReactorID: 1, AuthorID: 3, ReactID: domain.ReactLike})
	req.Empty(feed(t, st, 3))
}

func TestFanout_MembersAdded(t *testing.T) {
	req := require.New(t)
	st, _ := newStore(t)

	var dm domain.ContainerRef
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		dm = tx.CreateDm("alice, bob, carol", 1, []domain.UserID{2, 3}).Ref()
		return nil
	}))
	publish(t, st, event.MembersAdded{Container: dm, AdderID: 1, UserIDs: []domain.UserID{2, 3}})

	for _, id := range []domain.UserID{2, 3} {
		got := feed(t, st, id)
		req.Len(got, 1)
		req.Equal("alice added you to alice, bob, carol", got[0].Text)
		req.Equal(domain.ChannelID(domain.NoID), got[0].ChannelID)
		req.Equal(domain.DmID(1), got[0].DmID)
	}
}

func TestFanout_TagScannerFollowsMembershipAndHandles(t *testing.T) {
	req := require.New(t)
	st, ref := newStore(t)

	publish(t, st, event.MessagePosted{MessageID: 1, Container: ref, AuthorID: 1, Content: "@bob @carol"})
	req.Len(feed(t, st, 2), 1)
	req.Empty(feed(t, st, 3))

	require.NoError(t, st.Update(func(tx *store.Tx) error {
		u, err := tx.User(2)
		if err != nil {
			return err
		}
		u.Handle = "robert"
		return tx.AddMember(ref, 3)
	}))

	publish(t, st, event.MessagePosted{MessageID: 2, Container: ref, AuthorID: 1, Content: "@bob @robert @carol"})
	bob := feed(t, st, 2)
	req.Len(bob, 2)
	req.Equal("alice tagged you in general: @bob @robert @carol", bob[0].Text)
	req.Len(feed(t, st, 3), 1)

	require.NoError(t, st.Update(func(tx *store.Tx) error { return tx.RemoveMember(ref, 3) }))
	publish(t, st, event.MessagePosted{MessageID: 3, Container: ref, AuthorID: 1, Content: "@carol"})
	req.Len(feed(t, st, 3), 1)
}
