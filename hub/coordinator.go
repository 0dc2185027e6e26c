package hub

import (
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"coderoom/core"
	"coderoom/rooms"

	"github.com/sirupsen/logrus"
)

// Broadcaster fans an event out to a room's publish group. Implemented by the
// socket.io server; replaced by a recorder in tests. Sends happen outside any
// room-internal mutex.
type Broadcaster interface {
	// ToRoom emits to every current member of the room.
	ToRoom(roomID, event string, args ...any)
	// ToRoomExcept emits to every member except one connection.
	ToRoomExcept(roomID, exceptConnectionID, event string, args ...any)
}

// Author name reported when the sending connection is not a room member.
const unknownAuthor = "unknown"

var (
	errRoomIDRequired      = errors.New("room id required")
	errInvalidVersion      = errors.New("invalid client version")
	errInvalidCursor       = errors.New("invalid cursor position")
	errUpdateRequired      = errors.New("update payload required")
	errStateRequired       = errors.New("state payload required")
	errLanguageRequired    = errors.New("language required")
	errInvalidStatePayload = errors.New("invalid document payload")
)

type (
	// JoinResult is the initial room state returned to a joining client.
	JoinResult struct {
		RoomID        string   `json:"-"`
		Name          string   `json:"name"`
		Language      string   `json:"language"`
		Text          string   `json:"text"`
		Version       int      `json:"version"`
		Users         []string `json:"users"`
		CreatedBy     string   `json:"createdBy"`
		DocumentState string   `json:"documentState,omitempty"`
	}

	session struct {
		roomID      string
		displayName string
	}

	// Coordinator is the realtime entry point. It validates inbound client
	// calls, applies them to room aggregates through the manager, and fans
	// resulting events out to the room's group. One coordinator serves all
	// connections.
	Coordinator struct {
		manager   *rooms.Manager
		validator core.LanguageValidator
		bus       Broadcaster

		mu       sync.Mutex
		sessions map[string]session // connection id -> joined room
	}
)

// NewCoordinator wires the coordinator to the room manager, the language
// allow-list and the outbound broadcaster.
func NewCoordinator(manager *rooms.Manager, validator core.LanguageValidator, bus Broadcaster) *Coordinator {
	return &Coordinator{
		manager:   manager,
		validator: validator,
		bus:       bus,
		sessions:  make(map[string]session),
	}
}

// Join admits the connection into a room and returns the initial room state.
// Peers are notified with UserJoined.
func (c *Coordinator) Join(connectionID, roomID, displayName string) (JoinResult, error) {
	id, ok := core.ParseRoomID(roomID)
	if !ok {
		return JoinResult{}, errRoomIDRequired
	}
	name, err := core.NormalizeDisplayName(displayName)
	if err != nil {
		return JoinResult{}, err
	}

	room, err := c.manager.RegisterUserInRoom(id, connectionID, name)
	if err != nil {
		return JoinResult{}, err
	}

	c.mu.Lock()
	c.sessions[connectionID] = session{roomID: id, displayName: name}
	c.mu.Unlock()

	snapshot := room.Snapshot()
	result := JoinResult{
		RoomID:    id,
		Name:      snapshot.Name,
		Language:  snapshot.Language,
		Text:      snapshot.Text,
		Version:   snapshot.Version,
		Users:     snapshot.Users,
		CreatedBy: snapshot.CreatedBy,
	}
	if len(snapshot.DocState) > 0 {
		result.DocumentState = base64.StdEncoding.EncodeToString(snapshot.DocState)
	}

	c.bus.ToRoomExcept(id, connectionID, "UserJoined", name, snapshot.Users)
	logrus.WithFields(logrus.Fields{
		"room_id":   id,
		"room_name": snapshot.Name,
		"user":      name,
	}).Info("User joined room")
	return result, nil
}

// UpdateText replaces the room text and notifies the caller's peers. The
// client version counter is reported, not enforced; every call bumps the room
// version even when the text is unchanged.
func (c *Coordinator) UpdateText(connectionID, roomID, text string, clientVersion int) error {
	id, ok := core.ParseRoomID(roomID)
	if !ok {
		return errRoomIDRequired
	}
	if clientVersion < 0 {
		return errInvalidVersion
	}
	room, ok := c.manager.TryGetRoom(id)
	if !ok {
		return core.ErrRoomNotFound
	}

	version := room.UpdateText(text, time.Now().UTC())
	author, ok := room.DisplayName(connectionID)
	if !ok {
		author = unknownAuthor
	}

	c.bus.ToRoomExcept(id, connectionID, "TextUpdated", text, version, author)
	return nil
}

// UpdateDocumentState stores a new collaborative-document state and relays the
// incremental update to the whole room. A fully redundant update is accepted
// silently without a broadcast.
func (c *Coordinator) UpdateDocumentState(connectionID, roomID, updateBase64, stateBase64, textSnapshot string) error {
	id, ok := core.ParseRoomID(roomID)
	if !ok {
		return errRoomIDRequired
	}
	if updateBase64 == "" {
		return errUpdateRequired
	}
	if stateBase64 == "" {
		return errStateRequired
	}
	room, ok := c.manager.TryGetRoom(id)
	if !ok {
		return core.ErrRoomNotFound
	}

	if _, err := base64.StdEncoding.DecodeString(updateBase64); err != nil {
		return errInvalidStatePayload
	}
	state, err := base64.StdEncoding.DecodeString(stateBase64)
	if err != nil {
		return errInvalidStatePayload
	}

	author, ok := room.DisplayName(connectionID)
	if !ok {
		author = unknownAuthor
	}

	version, changed := room.TryUpdateDocState(state, textSnapshot, time.Now().UTC())
	if !changed {
		return nil
	}

	c.bus.ToRoom(id, "DocumentUpdated", updateBase64, version, author, stateBase64)
	return nil
}

// SetLanguage changes the room language and confirms it to everyone in the
// room, the caller included.
func (c *Coordinator) SetLanguage(connectionID, roomID, language string) error {
	id, ok := core.ParseRoomID(roomID)
	if !ok {
		return errRoomIDRequired
	}
	normalized := core.NormalizeLanguage(language)
	if normalized == "" {
		return errLanguageRequired
	}
	room, ok := c.manager.TryGetRoom(id)
	if !ok {
		return core.ErrRoomNotFound
	}

	version, err := room.UpdateLanguage(normalized, time.Now().UTC(), c.validator)
	if err != nil {
		return err
	}

	c.bus.ToRoom(id, "LanguageUpdated", normalized, version)
	return nil
}

// UpdateCursor relays the caller's cursor position to peers. Dropped silently
// when the caller is not a current member; cursor positions are relay-only
// convenience, not authoritative state.
func (c *Coordinator) UpdateCursor(connectionID, roomID string, position int) error {
	id, ok := core.ParseRoomID(roomID)
	if !ok {
		return errRoomIDRequired
	}
	if position < 0 {
		return errInvalidCursor
	}
	room, ok := c.manager.TryGetRoom(id)
	if !ok {
		return core.ErrRoomNotFound
	}

	author, ok := room.DisplayName(connectionID)
	if !ok {
		return nil
	}

	c.bus.ToRoomExcept(id, connectionID, "CursorUpdated", author, position)
	return nil
}

// UpdateSelection relays the caller's selection shape to the whole room.
// Dropped silently when the caller is not a current member.
func (c *Coordinator) UpdateSelection(connectionID, roomID string, isMultiLine bool) error {
	id, ok := core.ParseRoomID(roomID)
	if !ok {
		return errRoomIDRequired
	}
	room, ok := c.manager.TryGetRoom(id)
	if !ok {
		return core.ErrRoomNotFound
	}

	author, ok := room.DisplayName(connectionID)
	if !ok {
		return nil
	}

	c.bus.ToRoom(id, "UserSelection", author, isMultiLine)
	return nil
}

// UpdateCopy announces a copy-to-clipboard action to the whole room. Dropped
// silently when the caller is not a current member.
func (c *Coordinator) UpdateCopy(connectionID, roomID string) error {
	id, ok := core.ParseRoomID(roomID)
	if !ok {
		return errRoomIDRequired
	}
	room, ok := c.manager.TryGetRoom(id)
	if !ok {
		return core.ErrRoomNotFound
	}

	author, ok := room.DisplayName(connectionID)
	if !ok {
		return nil
	}

	c.bus.ToRoom(id, "UserCopy", author)
	return nil
}

// Leave removes the connection from a room and notifies the remaining
// members. A room id that does not match the connection's joined room is a
// quiet no-op.
func (c *Coordinator) Leave(connectionID, roomID string) error {
	id, ok := core.ParseRoomID(roomID)
	if !ok {
		return errRoomIDRequired
	}
	c.removeFromRoom(connectionID, id)
	return nil
}

// Disconnect cleans up after a dropped connection, including abnormal
// network-level disconnects. It never fails: a concurrently deleted room or a
// missing membership entry simply results in no broadcast.
func (c *Coordinator) Disconnect(connectionID string) {
	c.mu.Lock()
	sess, ok := c.sessions[connectionID]
	c.mu.Unlock()
	if !ok {
		return
	}
	c.removeFromRoom(connectionID, sess.roomID)
}

func (c *Coordinator) removeFromRoom(connectionID, roomID string) {
	// The session is cleared only when it matches the room being left; a
	// leave carrying a stale room id must not orphan the real membership or
	// the disconnect cleanup that depends on it.
	c.mu.Lock()
	if sess, ok := c.sessions[connectionID]; ok && sess.roomID == roomID {
		delete(c.sessions, connectionID)
	}
	c.mu.Unlock()

	room, ok := c.manager.TryGetRoom(roomID)
	if !ok {
		return
	}
	name, removed := room.RemoveUser(connectionID)
	if !removed {
		return
	}

	// Remaining members only; the leaver is already out of the group.
	c.bus.ToRoomExcept(roomID, connectionID, "UserLeft", name, room.UsersSnapshot())
	logrus.WithFields(logrus.Fields{
		"room_id": roomID,
		"user":    name,
	}).Info("User left room")
}
