//go:generate go run go.uber.org/mock/mockgen -source=snapshot.go -destination=../mocks/mock_snapshot_repository.go -package=mocks
package repositories

import (
	"chat-core/domain"
	"chat-core/store"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

type ISnapshotRepository interface {
	Save(snap store.Snapshot) error
	Load() (store.Snapshot, bool, error)
}

// SnapshotRepository persists whole store snapshots in BadgerDB.
//
// Every save writes a new generation under "snap:{gen}:" and only then moves
// the "meta:generation" pointer, so a crash in the middle of a save leaves the
// previous generation readable. The superseded generation is dropped last.
type SnapshotRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSnapshotRepository(db *badger.DB, log *slog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, log: log}
}

const (
	generationKey = "meta:generation"

	kindUser         = "user"
	kindChannel      = "channel"
	kindDm           = "dm"
	kindMessage      = "msg"
	kindNotification = "notif"
	kindSession      = "session"
	kindResetCode    = "reset"
	kindSequence     = "seq"
)

func generationPrefix(gen uint64) string {
	return fmt.Sprintf("snap:%019d:", gen)
}

// messageKey keeps a container's messages contiguous and in id order:
// "msg:{kind}:{container_padded}:{id_padded}".
func messageKey(m domain.Message) string {
	return fmt.Sprintf("%s:%s:%019d:%019d", kindMessage, m.Container.Kind, m.Container.ID, m.ID)
}

type sequences struct {
	DmSeq      int
	MessageSeq int
}

type entry struct {
	key   string
	value any
}

func entries(snap store.Snapshot) []entry {
	var out []entry
	for _, u := range snap.Users {
		out = append(out, entry{fmt.Sprintf("%s:%019d", kindUser, u.ID), u})
	}
	for _, ch := range snap.Channels {
		out = append(out, entry{fmt.Sprintf("%s:%019d", kindChannel, ch.ID), ch})
	}
	for _, dm := range snap.Dms {
		out = append(out, entry{fmt.Sprintf("%s:%019d", kindDm, dm.ID), dm})
	}
	for _, m := range snap.Messages {
		out = append(out, entry{messageKey(m), m})
	}
	for id, feed := range snap.Notifications {
		out = append(out, entry{fmt.Sprintf("%s:%019d", kindNotification, id), feed})
	}
	for sessionID, id := range snap.Sessions {
		out = append(out, entry{kindSession + ":" + sessionID, id})
	}
	for code, id := range snap.ResetCodes {
		out = append(out, entry{kindResetCode + ":" + code, id})
	}
	out = append(out, entry{kindSequence, sequences{DmSeq: snap.DmSeq, MessageSeq: snap.MessageSeq}})
	return out
}

func (r *SnapshotRepository) generation() (uint64, bool, error) {
	var gen uint64
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(generationKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			gen, err = strconv.ParseUint(string(val), 10, 64)
			return err
		})
	})
	if err == badger.ErrKeyNotFound {
		return 0, false, nil
	}
	return gen, err == nil, err
}

// Save writes snap as the new current generation.
func (r *SnapshotRepository) Save(snap store.Snapshot) error {
	current, _, err := r.generation()
	if err != nil {
		return fmt.Errorf("reading generation: %w", err)
	}
	next := current + 1
	prefix := generationPrefix(next)

	wb := r.db.NewWriteBatch()
	defer wb.Cancel()
	for _, e := range entries(snap) {
		bytes, err := json.Marshal(e.value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", e.key, err)
		}
		if err = wb.Set([]byte(prefix+e.key), bytes); err != nil {
			return err
		}
	}
	if err = wb.Flush(); err != nil {
		return fmt.Errorf("writing generation %d: %w", next, err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(generationKey), []byte(strconv.FormatUint(next, 10)))
	})
	if err != nil {
		return fmt.Errorf("switching to generation %d: %w", next, err)
	}

	if current > 0 {
		if err = r.db.DropPrefix([]byte(generationPrefix(current))); err != nil {
			r.log.Warn("Failed to drop previous snapshot", "generation", current, "error", err)
		}
	}
	r.log.Debug("Snapshot saved", "generation", next, "users", len(snap.Users), "messages", len(snap.Messages))
	return nil
}

// Load reads the current generation. The boolean is false when nothing was
// ever saved.
func (r *SnapshotRepository) Load() (store.Snapshot, bool, error) {
	gen, ok, err := r.generation()
	if err != nil || !ok {
		return store.Snapshot{}, false, err
	}

	snap := store.Snapshot{
		Notifications: make(map[domain.UserID][]domain.Notification),
		Sessions:      make(map[string]domain.UserID),
		ResetCodes:    make(map[string]domain.UserID),
	}
	prefix := []byte(generationPrefix(gen))

	err = r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				return decode(&snap, key, val)
			})
			if err != nil {
				return fmt.Errorf("decoding %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return store.Snapshot{}, false, err
	}
	return snap, true, nil
}

// decode routes a single value to its table. Keys are iterated in byte order,
// so rows of each table come back sorted by their padded id.
func decode(snap *store.Snapshot, key string, val []byte) error {
	kind, rest, _ := strings.Cut(key, ":")
	switch kind {
	case kindUser:
		var u domain.User
		if err := json.Unmarshal(val, &u); err != nil {
			return err
		}
		snap.Users = append(snap.Users, u)
	case kindChannel:
		var ch domain.Channel
		if err := json.Unmarshal(val, &ch); err != nil {
			return err
		}
		snap.Channels = append(snap.Channels, ch)
	case kindDm:
		var dm domain.Dm
		if err := json.Unmarshal(val, &dm); err != nil {
			return err
		}
		snap.Dms = append(snap.Dms, dm)
	case kindMessage:
		var m domain.Message
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		snap.Messages = append(snap.Messages, m)
	case kindNotification:
		id, err := strconv.Atoi(rest)
		if err != nil {
			return err
		}
		var feed []domain.Notification
		if err = json.Unmarshal(val, &feed); err != nil {
			return err
		}
		snap.Notifications[domain.UserID(id)] = feed
	case kindSession, kindResetCode:
		var id domain.UserID
		if err := json.Unmarshal(val, &id); err != nil {
			return err
		}
		if kind == kindSession {
			snap.Sessions[rest] = id
		} else {
			snap.ResetCodes[rest] = id
		}
	case kindSequence:
		var seq sequences
		if err := json.Unmarshal(val, &seq); err != nil {
			return err
		}
		snap.DmSeq, snap.MessageSeq = seq.DmSeq, seq.MessageSeq
	default:
		return fmt.Errorf("unknown key kind %q", kind)
	}
	return nil
}
