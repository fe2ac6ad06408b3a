// Package notification turns domain events into entries of the user feeds.
// It runs inside the store transaction that published the event.
package notification

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/mention"
	"chat-core/store"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// TagPreviewLength is the number of content characters quoted in a tag notice.
const TagPreviewLength = 20

// cachedScanner is the tag automaton of one container, valid while the
// member handles still join to key.
type cachedScanner struct {
	key     string
	scanner *mention.Scanner
}

// Fanout is only called under the store's write gate, which also guards
// scanners.
type Fanout struct {
	log      *slog.Logger
	scanners map[domain.ContainerRef]cachedScanner
}

func NewFanout(log *slog.Logger) *Fanout {
	return &Fanout{log: log, scanners: make(map[domain.ContainerRef]cachedScanner)}
}

func (f *Fanout) Consume(tx *store.Tx, e event.DomainEvent) {
	c, err := tx.Container(e.ContainerRef())
	if err != nil {
		f.log.Warn("Event for an unknown container", "container", e.ContainerRef(), "error", err)
		delete(f.scanners, e.ContainerRef())
		return
	}

	switch evt := e.(type) {
	case event.MessagePosted:
		f.tag(tx, c, evt.Container, evt.AuthorID, evt.Content)
	case event.MessageEdited:
		f.tag(tx, c, evt.Container, evt.EditorID, evt.Content)
	case event.MessageReacted:
		if evt.ReactorID == evt.AuthorID || !c.IsMember(evt.AuthorID) {
			return
		}
		text := fmt.Sprintf("%s reacted to your message in %s", handleOf(tx, evt.ReactorID), c.Name)
		tx.Notify(evt.AuthorID, domain.NewNotification(evt.Container, text))
	case event.MembersAdded:
		text := fmt.Sprintf("%s added you to %s", handleOf(tx, evt.AdderID), c.Name)
		for _, id := range evt.UserIDs {
			tx.Notify(id, domain.NewNotification(evt.Container, text))
		}
	}
}

// tag notifies each member of c whose @handle appears in content.
func (f *Fanout) tag(tx *store.Tx, c *domain.Container, ref domain.ContainerRef, sender domain.UserID, content string) {
	members := lo.FilterMap(c.Members, func(id domain.UserID, _ int) (*domain.User, bool) {
		u, err := tx.User(id)
		return u, err == nil
	})
	byHandle := lo.KeyBy(members, func(u *domain.User) string { return u.Handle })

	scanner, err := f.scannerFor(ref, lo.Keys(byHandle))
	if err != nil {
		f.log.Error("Tag scanner build failed", "container", ref, "error", err)
		return
	}

	tagged := scanner.Scan(content)
	if len(tagged) == 0 {
		return
	}
	text := fmt.Sprintf("%s tagged you in %s: %s", handleOf(tx, sender), c.Name, preview(content))
	for _, handle := range tagged {
		tx.Notify(byHandle[handle].ID, domain.NewNotification(ref, text))
	}
	f.log.Debug("Tag notifications sent", "container", ref, "count", len(tagged))
}

// scannerFor reuses the container's automaton until a join, a leave or a
// handle change alters its handle set.
func (f *Fanout) scannerFor(ref domain.ContainerRef, handles []string) (*mention.Scanner, error) {
	slices.Sort(handles)
	key := strings.Join(handles, " ")
	if cached, ok := f.scanners[ref]; ok && cached.key == key {
		return cached.scanner, nil
	}
	scanner, err := mention.NewScanner(handles)
	if err != nil {
		return nil, err
	}
	f.scanners[ref] = cachedScanner{key: key, scanner: scanner}
	f.log.Debug("Tag scanner rebuilt", "container", ref, "handles", len(handles))
	return scanner, nil
}

func handleOf(tx *store.Tx, id domain.UserID) string {
	u, err := tx.AnyUser(id)
	if err != nil {
		return ""
	}
	return u.Handle
}

func preview(content string) string {
	runes := []rune(content)
	return string(runes[:min(TagPreviewLength, len(runes))])
}
