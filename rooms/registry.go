package rooms

import (
	"context"
	"errors"
	"sync"

	"coderoom/core"

	"github.com/sirupsen/logrus"
)

// DeletionReasonAdmin is the closure reason broadcast when an admin deletes a
// room.
const DeletionReasonAdmin = "Room deleted by admin"

// Registry is the process-wide collection of live rooms. Lookups, inserts and
// removals are lock-free via sync.Map; creating or deleting one room never
// blocks operations on another.
type Registry struct {
	rooms    sync.Map // room id -> *core.Room
	notifier core.RoomNotifier
}

// NewRegistry creates an empty registry. The notifier delivers room-closed
// broadcasts during deletion.
func NewRegistry(notifier core.RoomNotifier) *Registry {
	return &Registry{notifier: notifier}
}

// CreateRoom constructs a new room at version 1 with a fresh server-generated
// id and stores it.
func (g *Registry) CreateRoom(name, language, createdBy string) (*core.Room, error) {
	roomName, err := core.NormalizeRoomName(name)
	if err != nil {
		return nil, err
	}
	roomLanguage := core.NormalizeLanguage(language)
	if roomLanguage == "" {
		return nil, errors.New("room language is required")
	}

	room := core.NewRoom(core.NewRoomID(), roomName, roomLanguage, createdBy)
	g.rooms.Store(room.ID, room)
	logrus.WithFields(logrus.Fields{
		"room_id":    room.ID,
		"room_name":  room.Name,
		"created_by": createdBy,
	}).Info("Room created")
	return room, nil
}

// TryGetRoom looks up a room by id. It never blocks on room-internal mutexes.
func (g *Registry) TryGetRoom(roomID string) (*core.Room, bool) {
	value, ok := g.rooms.Load(roomID)
	if !ok {
		return nil, false
	}
	return value.(*core.Room), true
}

// Snapshot returns a point-in-time, unordered view of all rooms. Callers are
// responsible for presentation ordering.
func (g *Registry) Snapshot() []*core.Room {
	var all []*core.Room
	g.rooms.Range(func(_, value any) bool {
		all = append(all, value.(*core.Room))
		return true
	})
	return all
}

// DeleteRoom atomically removes a room and broadcasts closure to its members.
// The cancellation signal is checked before any registry state is touched; an
// already-canceled context fails immediately. Returns false when the room was
// already absent. Safe to call concurrently with any other registry or room
// operation.
func (g *Registry) DeleteRoom(ctx context.Context, roomID, reason string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	value, ok := g.rooms.LoadAndDelete(roomID)
	if !ok {
		return false, nil
	}
	room := value.(*core.Room)
	logrus.WithFields(logrus.Fields{
		"room_id":   room.ID,
		"room_name": room.Name,
		"reason":    reason,
	}).Info("Room deleted")

	// The broadcast happens after removal, outside any lock; a send failure
	// does not undo the deletion.
	if err := g.notifier.RoomClosed(ctx, roomID, reason); err != nil {
		logrus.WithFields(logrus.Fields{
			"room_id": roomID,
			"error":   err,
		}).Warn("Failed to notify room closure")
	}
	return true, nil
}
