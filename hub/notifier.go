package hub

import (
	"context"
	"errors"
)

// Notifier implements core.RoomNotifier over the realtime broadcaster. The
// registry invokes it after a room has been removed so remaining members learn
// the room is gone.
type Notifier struct {
	bus Broadcaster
}

// NewNotifier wraps a broadcaster.
func NewNotifier(bus Broadcaster) *Notifier {
	return &Notifier{bus: bus}
}

// RoomClosed broadcasts the closure reason to the room's group. The group
// membership outlives the registry entry, so members still receive the event.
func (n *Notifier) RoomClosed(ctx context.Context, roomID, reason string) error {
	if roomID == "" {
		return errors.New("room id required")
	}
	if reason == "" {
		return errors.New("reason required")
	}
	n.bus.ToRoom(roomID, "RoomClosed", reason)
	return nil
}
