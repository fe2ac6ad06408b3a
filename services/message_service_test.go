package services

import (
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/mocks"
	"chat-core/projection"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type room struct {
	h     *harness
	owner domain.UserID
	alice domain.UserID
	bob   domain.UserID
	ch    domain.ChannelID
}

// newRoom seeds a global owner and a public channel created by alice that bob
// joined. The global owner is not a member.
func newRoom(t *testing.T) room {
	t.Helper()
	h := newHarness(t)
	r := room{
		h:     h,
		owner: h.addUser(t, "Olive", "Owner"),
		alice: h.addUser(t, "Alice", "Smith"),
		bob:   h.addUser(t, "Bob", "Jones"),
	}
	var err error
	r.ch, err = h.channels.CreateChannel(r.alice, "general", true)
	require.NoError(t, err)
	require.NoError(t, h.channels.JoinChannel(r.bob, r.ch))
	return r
}

func (r room) contents(t *testing.T, actor domain.UserID) []string {
	t.Helper()
	page, err := r.h.channels.ChannelMessages(actor, r.ch, 0)
	require.NoError(t, err)
	return lo.Map(page.Messages, func(m projection.MessageView, _ int) string { return m.Content })
}

func TestMessageService_SendValidation(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)

	_, err := r.h.messages.SendMessage(r.bob, r.ch, "")
	req.ErrorIs(err, errors.ErrMessageEmpty)
	_, err = r.h.messages.SendMessage(r.bob, r.ch, strings.Repeat("x", 1001))
	req.ErrorIs(err, errors.ErrMessageTooLong)
	_, err = r.h.messages.SendMessage(r.bob, r.ch, strings.Repeat("é", 1000))
	req.NoError(err)
	_, err = r.h.messages.SendMessage(r.owner, r.ch, "hi")
	req.ErrorIs(err, errors.ErrNotMember)
	_, err = r.h.messages.SendMessage(r.bob, 42, "hi")
	req.ErrorIs(err, errors.ErrChannelNotFound)
}

func TestMessageService_EditRoundTrip(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	id, err := r.h.messages.SendMessage(r.bob, r.ch, "draft")
	req.NoError(err)

	req.NoError(r.h.messages.EditMessage(r.bob, id, "final"))
	req.Equal([]string{"final"}, r.contents(t, r.alice))

	req.ErrorIs(r.h.messages.EditMessage(r.bob, id, strings.Repeat("x", 1001)), errors.ErrMessageTooLong)
	req.ErrorIs(r.h.messages.EditMessage(r.bob, 99, "x"), errors.ErrMessageNotFound)
	req.ErrorIs(r.h.messages.EditMessage(r.bob, 999, strings.Repeat("x", 1001)), errors.ErrMessageNotFound)

	stranger := r.h.addUser(t, "Sam", "Stranger")
	req.ErrorIs(r.h.messages.EditMessage(stranger, id, "hijack"), errors.ErrNotAuthorOrOwner)
	req.ErrorIs(r.h.messages.EditMessage(stranger, id, strings.Repeat("x", 1001)), errors.ErrNotAuthorOrOwner)

	req.NoError(r.h.messages.EditMessage(r.owner, id, "moderated"))
	req.Equal([]string{"moderated"}, r.contents(t, r.alice))

	req.NoError(r.h.messages.EditMessage(r.alice, id, ""))
	req.Empty(r.contents(t, r.alice))
	req.ErrorIs(r.h.messages.EditMessage(r.alice, id, "back"), errors.ErrMessageNotFound)
}

func TestMessageService_RemoveIsNotRepeatable(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	id, err := r.h.messages.SendMessage(r.bob, r.ch, "oops")
	req.NoError(err)

	req.NoError(r.h.messages.RemoveMessage(r.bob, id))
	req.ErrorIs(r.h.messages.RemoveMessage(r.bob, id), errors.ErrMessageNotFound)

	next, err := r.h.messages.SendMessage(r.bob, r.ch, "again")
	req.NoError(err)
	req.Greater(next, id)
}

func TestMessageService_AuthorKeepsRightsAfterLeaving(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	id, err := r.h.messages.SendMessage(r.bob, r.ch, "bye")
	req.NoError(err)
	req.NoError(r.h.channels.LeaveChannel(r.bob, r.ch))

	req.NoError(r.h.messages.EditMessage(r.bob, id, "bye all"))
	req.ErrorIs(r.h.messages.ReactMessage(r.bob, id, domain.ReactLike), errors.ErrMessageNotFound)
	req.NoError(r.h.messages.RemoveMessage(r.bob, id))
}

func TestMessageService_ReactToggle(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	id, err := r.h.messages.SendMessage(r.bob, r.ch, "like me")
	req.NoError(err)

	req.ErrorIs(r.h.messages.ReactMessage(r.alice, id, 2), errors.ErrInvalidReact)
	req.ErrorIs(r.h.messages.UnreactMessage(r.alice, id, domain.ReactLike), errors.ErrNotReacted)
	req.NoError(r.h.messages.ReactMessage(r.alice, id, domain.ReactLike))
	req.ErrorIs(r.h.messages.ReactMessage(r.alice, id, domain.ReactLike), errors.ErrAlreadyReacted)

	page, err := r.h.channels.ChannelMessages(r.alice, r.ch, 0)
	req.NoError(err)
	req.Equal([]domain.UserID{r.alice}, page.Messages[0].Reacts[0].UserIDs)
	req.True(page.Messages[0].Reacts[0].IsThisUserReacted)

	req.NoError(r.h.messages.UnreactMessage(r.alice, id, domain.ReactLike))
	page, err = r.h.channels.ChannelMessages(r.alice, r.ch, 0)
	req.NoError(err)
	req.Empty(page.Messages[0].Reacts)

	req.ErrorIs(r.h.messages.ReactMessage(r.owner, id, domain.ReactLike), errors.ErrMessageNotFound)
}

func TestMessageService_ReactNotifiesAuthorOnly(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	id, err := r.h.messages.SendMessage(r.bob, r.ch, "like me")
	req.NoError(err)

	req.NoError(r.h.messages.ReactMessage(r.bob, id, domain.ReactLike))
	req.Empty(r.h.feed(t, r.bob))

	req.NoError(r.h.messages.ReactMessage(r.alice, id, domain.ReactLike))
	req.Equal([]string{"alicesmith reacted to your message in general"}, r.h.feed(t, r.bob))
}

func TestMessageService_Pin(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	id, err := r.h.messages.SendMessage(r.bob, r.ch, "rules")
	req.NoError(err)

	req.ErrorIs(r.h.messages.PinMessage(r.bob, id), errors.ErrNotOwner)
	req.ErrorIs(r.h.messages.UnpinMessage(r.alice, id), errors.ErrNotPinned)
	req.NoError(r.h.messages.PinMessage(r.alice, id))
	req.ErrorIs(r.h.messages.PinMessage(r.alice, id), errors.ErrAlreadyPinned)

	page, err := r.h.channels.ChannelMessages(r.bob, r.ch, 0)
	req.NoError(err)
	req.True(page.Messages[0].Pinned)
	req.NoError(r.h.messages.UnpinMessage(r.alice, id))
}

func TestMessageService_Share(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	og, err := r.h.messages.SendMessage(r.alice, r.ch, "original")
	req.NoError(err)
	dm, err := r.h.dms.CreateDm(r.bob, []domain.UserID{r.alice})
	req.NoError(err)

	_, err = r.h.messages.ShareMessage(r.bob, og, "look", r.ch, dm)
	req.ErrorIs(err, errors.ErrInvalidTarget)
	_, err = r.h.messages.ShareMessage(r.bob, og, "look", domain.NoID, domain.NoID)
	req.ErrorIs(err, errors.ErrInvalidTarget)
	_, err = r.h.messages.ShareMessage(r.owner, og, "", domain.NoID, dm)
	req.ErrorIs(err, errors.ErrMessageNotFound)

	shared, err := r.h.messages.ShareMessage(r.bob, og, "look @alicesmith", domain.NoID, dm)
	req.NoError(err)
	page, err := r.h.dms.DmMessages(r.alice, dm, 0)
	req.NoError(err)
	req.Equal(shared, page.Messages[0].ID)
	req.Equal("look @alicesmith\n\n\"\"\"\noriginal\n\"\"\"", page.Messages[0].Content)
	req.Equal("bobjones tagged you in alicesmith, bobjones: look @alicesmith", r.h.feed(t, r.alice)[0])

	outsider, err := r.h.channels.CreateChannel(r.owner, "elsewhere", true)
	req.NoError(err)
	_, err = r.h.messages.ShareMessage(r.bob, og, "", outsider, domain.NoID)
	req.ErrorIs(err, errors.ErrNotMember)
}

func TestMessageService_ShareRejectsOverlongQuote(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	og, err := r.h.messages.SendMessage(r.alice, r.ch, strings.Repeat("o", 1000))
	req.NoError(err)
	before := len(r.h.feed(t, r.alice))

	_, err = r.h.messages.ShareMessage(r.bob, og, strings.Repeat("x", 1000), r.ch, domain.NoID)
	req.ErrorIs(err, errors.ErrMessageTooLong)
	req.True(errors.IsInput(err))
	_, err = r.h.messages.ShareMessage(r.bob, og, "", r.ch, domain.NoID)
	req.ErrorIs(err, errors.ErrMessageTooLong)
	req.Len(r.contents(t, r.bob), 1)
	req.Len(r.h.feed(t, r.alice), before)

	short, err := r.h.messages.SendMessage(r.alice, r.ch, "ok")
	req.NoError(err)
	extra := strings.Repeat("x", 1000-len(SharedContent("", "ok")))
	_, err = r.h.messages.ShareMessage(r.bob, short, extra, r.ch, domain.NoID)
	req.NoError(err)
	req.Len(r.contents(t, r.bob)[0], 1000)
}

func TestMessageService_ShareDoesNotTagFromQuote(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	og, err := r.h.messages.SendMessage(r.alice, r.ch, "hey @bobjones")
	req.NoError(err)
	before := len(r.h.feed(t, r.bob))

	_, err = r.h.messages.ShareMessage(r.alice, og, "", r.ch, domain.NoID)
	req.NoError(err)
	req.Len(r.h.feed(t, r.bob), before)
}

func TestMessageService_SendLater(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	sendAt := r.h.clock.now().Add(time.Minute).Unix()

	_, err := r.h.messages.SendMessageLater(r.bob, r.ch, "late", r.h.clock.now().Unix()-1)
	req.ErrorIs(err, errors.ErrTimeInPast)

	id, err := r.h.messages.SendMessageLater(r.bob, r.ch, "late", sendAt)
	req.NoError(err)
	req.Empty(r.contents(t, r.bob))

	now, err := r.h.messages.SendMessage(r.bob, r.ch, "now")
	req.NoError(err)
	req.Greater(now, id)

	req.Zero(r.h.tick(59 * time.Second))
	req.Equal(1, r.h.tick(time.Second))

	page, err := r.h.channels.ChannelMessages(r.bob, r.ch, 0)
	req.NoError(err)
	req.Equal(id, page.Messages[0].ID)
	req.Equal(sendAt, page.Messages[0].CreatedAt)
}

func TestMessageService_SendLaterDroppedWhenAuthorLeft(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	dm, err := r.h.dms.CreateDm(r.alice, []domain.UserID{r.bob})
	req.NoError(err)

	_, err = r.h.messages.SendDmLater(r.bob, dm, "later", r.h.clock.now().Add(time.Second).Unix())
	req.NoError(err)
	req.NoError(r.h.dms.LeaveDm(r.bob, dm))
	req.Equal(1, r.h.tick(time.Second))

	page, err := r.h.dms.DmMessages(r.alice, dm, 0)
	req.NoError(err)
	req.Empty(page.Messages)
}

func TestMessageService_SendLaterSchedulesOnce(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	r := newRoom(t)
	scheduler := mocks.NewMockIScheduler(ctrl)
	svc := NewMessageService(r.h.log, r.h.store, scheduler, r.h.clock.now)
	sendAt := r.h.clock.now().Add(time.Hour).Unix()

	scheduler.EXPECT().
		Schedule(gomock.Any(), time.Unix(sendAt, 0), gomock.Any()).
		Times(1)

	_, err := svc.SendMessageLater(r.bob, r.ch, "later", sendAt)
	req.NoError(err)
	_, err = svc.SendMessageLater(r.owner, r.ch, "later", sendAt)
	req.ErrorIs(err, errors.ErrNotMember)
}

func TestMessageService_Search(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	hidden, err := r.h.channels.CreateChannel(r.owner, "hidden", true)
	req.NoError(err)
	_, err = r.h.messages.SendMessage(r.owner, hidden, "Hello from nowhere")
	req.NoError(err)

	first, err := r.h.messages.SendMessage(r.alice, r.ch, "hello world")
	req.NoError(err)
	r.h.clock.advance(time.Second)
	_, err = r.h.messages.SendMessage(r.bob, r.ch, "goodbye")
	req.NoError(err)
	dm, err := r.h.dms.CreateDm(r.bob, nil)
	req.NoError(err)
	second, err := r.h.messages.SendDm(r.bob, dm, "HELLO again")
	req.NoError(err)

	found, err := r.h.messages.Search(r.bob, "hElLo")
	req.NoError(err)
	req.Equal([]domain.MessageID{second, first}, lo.Map(found, func(v projection.MessageView, _ int) domain.MessageID { return v.ID }))

	_, err = r.h.messages.Search(r.bob, "")
	req.ErrorIs(err, errors.ErrInvalidQuery)
	_, err = r.h.messages.Search(r.bob, strings.Repeat("q", 1001))
	req.ErrorIs(err, errors.ErrInvalidQuery)
}

func TestMessageService_ConcurrentSendsKeepHistoryConsistent(t *testing.T) {
	req := require.New(t)
	r := newRoom(t)
	const perSender = 40
	senders := []domain.UserID{r.alice, r.bob, r.alice, r.bob}
	sendAt := r.h.clock.now().Unix()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sent     []domain.MessageID
		failures []error
		done     atomic.Bool
	)
	record := func(id domain.MessageID, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failures = append(failures, err)
			return
		}
		sent = append(sent, id)
	}

	for i, sender := range senders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range perSender {
				if n%4 == 0 {
					record(r.h.messages.SendMessageLater(sender, r.ch, fmt.Sprintf("later %d/%d", i, n), sendAt))
					continue
				}
				record(r.h.messages.SendMessage(sender, r.ch, fmt.Sprintf("now %d/%d", i, n)))
				if _, err := r.h.channels.ChannelMessages(sender, r.ch, 0); err != nil {
					record(0, err)
				}
			}
		}()
	}

	delivered := make(chan int)
	go func() {
		ran := 0
		for !done.Load() {
			ran += r.h.scheduler.RunDue(r.h.clock.now())
		}
		delivered <- ran
	}()

	wg.Wait()
	done.Store(true)
	ran := <-delivered + r.h.scheduler.RunDue(r.h.clock.now())

	req.Empty(failures)
	req.Equal(len(senders)*perSender/4, ran)
	req.Zero(r.h.scheduler.Pending())

	var seen []domain.MessageID
	for start := 0; start != projection.EndOfHistory; {
		page, err := r.h.channels.ChannelMessages(r.bob, r.ch, start)
		req.NoError(err)
		for _, m := range page.Messages {
			seen = append(seen, m.ID)
		}
		start = page.End
	}
	req.Len(seen, len(senders)*perSender)
	req.Len(lo.Uniq(seen), len(seen))
	req.ElementsMatch(sent, seen)
}
