package core

import (
	"bytes"
	"sort"
	"strings"
	"sync"
	"time"
)

type (
	// Room is the in-memory aggregate for one collaborative editing session.
	// It owns the live membership map and the document text/version/state
	// triple; all mutation goes through its methods.
	//
	// Two independent mutexes guard the two invariant groups: admission
	// (capacity and display-name uniqueness are a single check-then-act unit)
	// and version (every content mutation is a read-modify-write on version,
	// timestamp and payload). Admission and version mutation never block each
	// other. No network I/O happens while either mutex is held.
	Room struct {
		ID        string
		Name      string
		CreatedBy string

		admissionMu sync.Mutex
		users       map[string]string // connection id -> display name

		versionMu sync.Mutex
		language  string
		text      string
		version   int
		docState  []byte
		updatedAt time.Time
	}

	// RoomSnapshot is a point-in-time read of a room, used for join results
	// and admin views.
	RoomSnapshot struct {
		ID        string
		Name      string
		Language  string
		Text      string
		Version   int
		Users     []string
		CreatedBy string
		UpdatedAt time.Time
		DocState  []byte
	}
)

// NewRoom constructs a room at version 1 with empty text and document state.
func NewRoom(id, name, language, createdBy string) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		CreatedBy: createdBy,
		users:     make(map[string]string),
		language:  language,
		version:   1,
		updatedAt: time.Now().UTC(),
	}
}

// AddUser admits a connection under a display name. Re-adding an existing
// connection is idempotent and never fails for capacity reasons. Returns
// ErrRoomFull when the room is at capacity and ErrNameInUse when another
// connection already holds the name (case-insensitive).
func (r *Room) AddUser(connectionID, displayName string, maxUsers int) error {
	r.admissionMu.Lock()
	defer r.admissionMu.Unlock()

	_, rejoining := r.users[connectionID]
	if !rejoining && len(r.users) >= maxUsers {
		return ErrRoomFull
	}
	for id, name := range r.users {
		if id != connectionID && strings.EqualFold(name, displayName) {
			return ErrNameInUse
		}
	}
	r.users[connectionID] = displayName
	return nil
}

// RemoveUser drops a connection's membership. Reports the removed display
// name, or false when the connection was not a member.
func (r *Room) RemoveUser(connectionID string) (string, bool) {
	r.admissionMu.Lock()
	defer r.admissionMu.Unlock()

	name, ok := r.users[connectionID]
	if !ok {
		return "", false
	}
	delete(r.users, connectionID)
	return name, true
}

// DisplayName resolves a connection to its display name in this room.
func (r *Room) DisplayName(connectionID string) (string, bool) {
	r.admissionMu.Lock()
	defer r.admissionMu.Unlock()

	name, ok := r.users[connectionID]
	return name, ok
}

// UsersSnapshot returns the current display names, sorted ascending
// case-insensitively.
func (r *Room) UsersSnapshot() []string {
	r.admissionMu.Lock()
	names := make([]string, 0, len(r.users))
	for _, name := range r.users {
		names = append(names, name)
	}
	r.admissionMu.Unlock()

	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li == lj {
			return names[i] < names[j]
		}
		return li < lj
	})
	return names
}

// ConnectedUserCount reports the number of live members.
func (r *Room) ConnectedUserCount() int {
	r.admissionMu.Lock()
	defer r.admissionMu.Unlock()
	return len(r.users)
}

// UpdateText replaces the text snapshot and bumps the version. Every call
// counts as a change, even when the text is identical; the plain-text path
// carries live typing and has no no-op suppression.
func (r *Room) UpdateText(text string, now time.Time) int {
	r.versionMu.Lock()
	defer r.versionMu.Unlock()

	r.text = text
	r.version = NextVersion(r.version)
	r.updatedAt = now
	return r.version
}

// UpdateLanguage sets the room language after checking it against the
// configured allow-list, and bumps the version.
func (r *Room) UpdateLanguage(language string, now time.Time, validator LanguageValidator) (int, error) {
	if !validator.IsValid(language) {
		return 0, ErrInvalidLanguage
	}

	r.versionMu.Lock()
	defer r.versionMu.Unlock()

	r.language = language
	r.version = NextVersion(r.version)
	r.updatedAt = now
	return r.version, nil
}

// TryUpdateDocState stores a new collaborative-document state blob and text
// snapshot. A fully redundant update (byte-identical state and identical
// text) is ignored and leaves the version untouched. The blob is opaque: it
// is never parsed, only compared for byte equality.
func (r *Room) TryUpdateDocState(state []byte, text string, now time.Time) (int, bool) {
	r.versionMu.Lock()
	defer r.versionMu.Unlock()

	if bytes.Equal(r.docState, state) && r.text == text {
		return r.version, false
	}
	r.docState = append([]byte(nil), state...)
	r.text = text
	r.version = NextVersion(r.version)
	r.updatedAt = now
	return r.version, true
}

// CanDelete reports whether an admin may delete this room: superadmins may
// delete any room, others only rooms they created.
func (r *Room) CanDelete(admin AdminUser) bool {
	return admin.SuperAdmin || strings.EqualFold(admin.Name, r.CreatedBy)
}

// Snapshot returns a point-in-time view of the room.
func (r *Room) Snapshot() RoomSnapshot {
	r.versionMu.Lock()
	snapshot := RoomSnapshot{
		ID:        r.ID,
		Name:      r.Name,
		Language:  r.language,
		Text:      r.text,
		Version:   r.version,
		CreatedBy: r.CreatedBy,
		UpdatedAt: r.updatedAt,
		DocState:  append([]byte(nil), r.docState...),
	}
	r.versionMu.Unlock()

	snapshot.Users = r.UsersSnapshot()
	return snapshot
}
