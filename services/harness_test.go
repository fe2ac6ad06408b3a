package services

import (
	"chat-core/domain"
	"chat-core/notification"
	"chat-core/runtime/workers"
	"chat-core/store"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	at time.Time
}

func (c *testClock) now() time.Time { return c.at }

func (c *testClock) advance(d time.Duration) { c.at = c.at.Add(d) }

type harness struct {
	log       *slog.Logger
	store     *store.Store
	clock     *testClock
	scheduler *workers.Scheduler
	channels  IChannelService
	dms       IDmService
	messages  IMessageService
	standups  IStandupService
	admin     IAdminService
	notifs    INotificationService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	st := store.New(log)
	st.Subscribe(notification.NewFanout(log))
	clock := &testClock{at: time.Unix(1_700_000_000, 0)}
	sched := workers.NewScheduler(log, clock.now)
	return &harness{
		log:       log,
		store:     st,
		clock:     clock,
		scheduler: sched,
		channels:  NewChannelService(log, st),
		dms:       NewDmService(log, st),
		messages:  NewMessageService(log, st, sched, clock.now),
		standups:  NewStandupService(log, st, sched, clock.now),
		admin:     NewAdminService(log, st),
		notifs:    NewNotificationService(log, st),
	}
}

// addUser registers a user without going through password hashing.
func (h *harness) addUser(t *testing.T, first, last string) domain.UserID {
	t.Helper()
	var id domain.UserID
	require.NoError(t, h.store.Update(func(tx *store.Tx) error {
		u := tx.AddUser(domain.User{
			FirstName: first,
			LastName:  last,
			Email:     first + "." + last + "@chat.io",
			Handle:    GenerateHandle(tx, first, last),
		})
		id = u.ID
		return nil
	}))
	return id
}

// tick moves the clock and fires whatever the scheduler has due.
func (h *harness) tick(d time.Duration) int {
	h.clock.advance(d)
	return h.scheduler.RunDue(h.clock.now())
}

func (h *harness) feed(t *testing.T, id domain.UserID) []string {
	t.Helper()
	notifs, err := h.notifs.Notifications(id)
	require.NoError(t, err)
	texts := make([]string, len(notifs))
	for i, n := range notifs {
		texts[i] = n.Text
	}
	return texts
}
