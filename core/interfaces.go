package core

import "context"

type (
	// LanguageValidator checks a normalized language tag against the
	// configured allow-list. The allow-list lives in configuration, not in
	// the domain types.
	LanguageValidator interface {
		IsValid(language string) bool
	}

	// RoomNotifier delivers a room-closed broadcast to the current members of
	// a room. Implemented by the realtime transport and consumed by the
	// registry during deletion.
	RoomNotifier interface {
		RoomClosed(ctx context.Context, roomID, reason string) error
	}
)
