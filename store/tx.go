package store

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Tx is the only handle on the tables. It is valid until the Update or View
// callback that received it returns.
type Tx struct {
	s        *Store
	writable bool
}

func (tx *Tx) mustWrite() {
	if !tx.writable {
		panic("store: write in a read-only transaction")
	}
}

// Publish hands e to every subscribed sink, synchronously.
func (tx *Tx) Publish(e event.DomainEvent) {
	tx.mustWrite()
	for _, sink := range tx.s.sinks {
		sink.Consume(tx, e)
	}
}

// --- users ---

// AnyUser returns the user with the given id, removed or not.
func (tx *Tx) AnyUser(id domain.UserID) (*domain.User, error) {
	if id < 1 || int(id) > len(tx.s.users) {
		return nil, fmt.Errorf("%w: %d", errors.ErrUserNotFound, id)
	}
	return tx.s.users[id-1], nil
}

// User returns an active user. Removed users are reported as not found.
func (tx *Tx) User(id domain.UserID) (*domain.User, error) {
	u, err := tx.AnyUser(id)
	if err != nil {
		return nil, err
	}
	if u.Removed {
		return nil, fmt.Errorf("%w: %d", errors.ErrUserNotFound, id)
	}
	return u, nil
}

func (tx *Tx) UserExists(id domain.UserID) bool {
	_, err := tx.User(id)
	return err == nil
}

func (tx *Tx) IsGlobalOwner(id domain.UserID) bool {
	u, err := tx.User(id)
	return err == nil && u.IsGlobalOwner()
}

// Users returns every user ever registered, in id order.
func (tx *Tx) Users() []*domain.User {
	return tx.s.users
}

func (tx *Tx) GlobalOwnerCount() int {
	return lo.CountBy(tx.s.users, func(u *domain.User) bool { return u.IsGlobalOwner() })
}

func (tx *Tx) UserByEmail(email string) (*domain.User, bool) {
	return lo.Find(tx.s.users, func(u *domain.User) bool { return !u.Removed && u.Email == email })
}

func (tx *Tx) UserByHandle(handle string) (*domain.User, bool) {
	return lo.Find(tx.s.users, func(u *domain.User) bool { return !u.Removed && u.Handle == handle })
}

// AddUser assigns the next sequential id. The first user registered becomes
// a global owner.
func (tx *Tx) AddUser(u domain.User) *domain.User {
	tx.mustWrite()
	u.ID = domain.UserID(len(tx.s.users) + 1)
	u.Permission = lo.Ternary(len(tx.s.users) == 0, domain.PermissionOwner, domain.PermissionMember)
	tx.s.users = append(tx.s.users, &u)
	return &u
}

// --- channels and dms ---

func (tx *Tx) Channel(id domain.ChannelID) (*domain.Channel, error) {
	if id < 1 || int(id) > len(tx.s.channels) {
		return nil, fmt.Errorf("%w: %d", errors.ErrChannelNotFound, id)
	}
	return tx.s.channels[id-1], nil
}

// Channels returns every channel in id order. Channels are never deleted.
func (tx *Tx) Channels() []*domain.Channel {
	return tx.s.channels
}

func (tx *Tx) CreateChannel(name string, isPublic bool, creator domain.UserID) *domain.Channel {
	tx.mustWrite()
	ch := &domain.Channel{
		Container: domain.Container{
			ID:      len(tx.s.channels) + 1,
			Name:    name,
			Owners:  domain.UserSet{creator},
			Members: domain.UserSet{creator},
		},
		IsPublic: isPublic,
	}
	tx.s.channels = append(tx.s.channels, ch)
	return ch
}

func (tx *Tx) Dm(id domain.DmID) (*domain.Dm, error) {
	dm, ok := tx.s.dms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", errors.ErrDmNotFound, id)
	}
	return dm, nil
}

// Dms returns the live dms in id order.
func (tx *Tx) Dms() []*domain.Dm {
	dms := lo.Values(tx.s.dms)
	sort.Slice(dms, func(i, j int) bool { return dms[i].ID < dms[j].ID })
	return dms
}

// CreateDm stores a dm owned by creator whose members are creator followed by
// members, in order.
func (tx *Tx) CreateDm(name string, creator domain.UserID, members []domain.UserID) *domain.Dm {
	tx.mustWrite()
	tx.s.dmSeq++
	all := domain.UserSet{creator}
	for _, m := range members {
		all.Add(m)
	}
	dm := &domain.Dm{Container: domain.Container{
		ID:      tx.s.dmSeq,
		Name:    name,
		Owners:  domain.UserSet{creator},
		Members: all,
	}}
	tx.s.dms[dm.DmID()] = dm
	return dm
}

// DeleteDm removes the dm together with its messages.
func (tx *Tx) DeleteDm(id domain.DmID) error {
	tx.mustWrite()
	dm, err := tx.Dm(id)
	if err != nil {
		return err
	}
	for _, msgID := range dm.History {
		delete(tx.s.messages, msgID)
	}
	delete(tx.s.dms, id)
	return nil
}

// Container resolves a channel or dm to its shared part.
func (tx *Tx) Container(ref domain.ContainerRef) (*domain.Container, error) {
	switch ref.Kind {
	case domain.KindChannel:
		ch, err := tx.Channel(domain.ChannelID(ref.ID))
		if err != nil {
			return nil, err
		}
		return &ch.Container, nil
	case domain.KindDm:
		dm, err := tx.Dm(domain.DmID(ref.ID))
		if err != nil {
			return nil, err
		}
		return &dm.Container, nil
	default:
		return nil, errors.ErrInvalidTarget
	}
}

func (tx *Tx) IsMember(ref domain.ContainerRef, id domain.UserID) bool {
	c, err := tx.Container(ref)
	return err == nil && c.IsMember(id)
}

func (tx *Tx) IsOwner(ref domain.ContainerRef, id domain.UserID) bool {
	c, err := tx.Container(ref)
	return err == nil && c.IsOwner(id)
}

func (tx *Tx) AddMember(ref domain.ContainerRef, id domain.UserID) error {
	tx.mustWrite()
	c, err := tx.Container(ref)
	if err != nil {
		return err
	}
	return c.Join(id)
}

func (tx *Tx) RemoveMember(ref domain.ContainerRef, id domain.UserID) error {
	tx.mustWrite()
	c, err := tx.Container(ref)
	if err != nil {
		return err
	}
	return c.Leave(id)
}

func (tx *Tx) AddOwner(ref domain.ContainerRef, id domain.UserID) error {
	tx.mustWrite()
	c, err := tx.Container(ref)
	if err != nil {
		return err
	}
	return c.Promote(id)
}

func (tx *Tx) RemoveOwner(ref domain.ContainerRef, id domain.UserID) error {
	tx.mustWrite()
	c, err := tx.Container(ref)
	if err != nil {
		return err
	}
	return c.Demote(id)
}

// ContainersOf lists the refs of every channel then dm id is a member of.
func (tx *Tx) ContainersOf(id domain.UserID) []domain.ContainerRef {
	var refs []domain.ContainerRef
	for _, ch := range tx.s.channels {
		if ch.IsMember(id) {
			refs = append(refs, ch.Ref())
		}
	}
	for _, dm := range tx.Dms() {
		if dm.IsMember(id) {
			refs = append(refs, dm.Ref())
		}
	}
	return refs
}

// --- messages ---

func (tx *Tx) Message(id domain.MessageID) (*domain.Message, error) {
	msg, ok := tx.s.messages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", errors.ErrMessageNotFound, id)
	}
	return msg, nil
}

func (tx *Tx) MessageCount() int {
	return len(tx.s.messages)
}

// History returns the messages of a container in posting order.
func (tx *Tx) History(ref domain.ContainerRef) ([]*domain.Message, error) {
	c, err := tx.Container(ref)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(c.History, func(id domain.MessageID, _ int) (*domain.Message, bool) {
		msg, ok := tx.s.messages[id]
		return msg, ok
	}), nil
}

// MessagesBy returns every live message written by author, in id order.
func (tx *Tx) MessagesBy(author domain.UserID) []*domain.Message {
	msgs := lo.Filter(lo.Values(tx.s.messages), func(m *domain.Message, _ int) bool { return m.AuthorID == author })
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })
	return msgs
}

// ReserveMessageID consumes the next global id without storing anything.
// Ids are never reused, so a reservation that never turns into a message
// leaves a permanent gap.
func (tx *Tx) ReserveMessageID() domain.MessageID {
	tx.mustWrite()
	tx.s.messageSeq++
	return domain.MessageID(tx.s.messageSeq)
}

// AppendMessage stores msg and appends it to its container history. A zero
// msg.ID is replaced with the next global id.
func (tx *Tx) AppendMessage(msg domain.Message) (*domain.Message, error) {
	tx.mustWrite()
	c, err := tx.Container(msg.Container)
	if err != nil {
		return nil, err
	}
	if msg.ID == 0 {
		msg.ID = tx.ReserveMessageID()
	}
	stored := &msg
	tx.s.messages[msg.ID] = stored
	c.Push(msg.ID)
	return stored, nil
}

// EditMessage overwrites content in place. Empty content removes the message.
func (tx *Tx) EditMessage(id domain.MessageID, content string) error {
	tx.mustWrite()
	if content == "" {
		return tx.RemoveMessage(id)
	}
	msg, err := tx.Message(id)
	if err != nil {
		return err
	}
	msg.Content = content
	return nil
}

// RemoveMessage deletes the message and compacts its container history.
func (tx *Tx) RemoveMessage(id domain.MessageID) error {
	tx.mustWrite()
	msg, err := tx.Message(id)
	if err != nil {
		return err
	}
	if c, err := tx.Container(msg.Container); err == nil {
		c.Drop(id)
	}
	delete(tx.s.messages, id)
	return nil
}

// --- notifications ---

func (tx *Tx) Notify(id domain.UserID, n domain.Notification) {
	tx.mustWrite()
	tx.s.notifications[id] = append(tx.s.notifications[id], n)
}

// Notifications returns at most limit entries of the feed, newest first.
func (tx *Tx) Notifications(id domain.UserID, limit int) []domain.Notification {
	feed := tx.s.notifications[id]
	out := make([]domain.Notification, 0, min(limit, len(feed)))
	for i := len(feed) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, feed[i])
	}
	return out
}

// --- sessions and reset codes ---

func (tx *Tx) OpenSession(id domain.UserID) string {
	tx.mustWrite()
	sessionID := uuid.NewString()
	tx.s.sessions[sessionID] = id
	return sessionID
}

func (tx *Tx) Session(sessionID string) (domain.UserID, bool) {
	id, ok := tx.s.sessions[sessionID]
	return id, ok
}

func (tx *Tx) CloseSession(sessionID string) bool {
	tx.mustWrite()
	if _, ok := tx.s.sessions[sessionID]; !ok {
		return false
	}
	delete(tx.s.sessions, sessionID)
	return true
}

// CloseSessions ends every session of id.
func (tx *Tx) CloseSessions(id domain.UserID) int {
	tx.mustWrite()
	closed := 0
	for sessionID, owner := range tx.s.sessions {
		if owner == id {
			delete(tx.s.sessions, sessionID)
			closed++
		}
	}
	return closed
}

func (tx *Tx) IssueResetCode(id domain.UserID) string {
	tx.mustWrite()
	code := uuid.NewString()
	tx.s.resetCodes[code] = id
	return code
}

// ConsumeResetCode invalidates code and returns its user.
func (tx *Tx) ConsumeResetCode(code string) (domain.UserID, bool) {
	tx.mustWrite()
	id, ok := tx.s.resetCodes[code]
	if ok {
		delete(tx.s.resetCodes, code)
	}
	return id, ok
}

// --- standups ---

func (tx *Tx) Standup(id domain.ChannelID) (*domain.Standup, bool) {
	st, ok := tx.s.standups[id]
	return st, ok
}

func (tx *Tx) StartStandup(st domain.Standup) *domain.Standup {
	tx.mustWrite()
	stored := &st
	tx.s.standups[st.ChannelID] = stored
	return stored
}

// EndStandup detaches and returns the active standup of a channel.
func (tx *Tx) EndStandup(id domain.ChannelID) (*domain.Standup, bool) {
	tx.mustWrite()
	st, ok := tx.s.standups[id]
	if ok {
		delete(tx.s.standups, id)
	}
	return st, ok
}
