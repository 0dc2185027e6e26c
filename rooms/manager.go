package rooms

import (
	"context"
	"sort"
	"strings"
	"time"

	"coderoom/core"
)

// DeletionResult is the outcome of an admin-requested room deletion.
type DeletionResult int

const (
	NotFound DeletionResult = iota
	Forbidden
	Deleted
)

// Clamp bounds for the configured per-room capacity.
const (
	minUsersPerRoom = 1
	maxUsersPerRoom = 5
)

type (
	// RoomView is an admin-scoped summary of one room.
	RoomView struct {
		RoomID     string    `json:"roomId"`
		Name       string    `json:"name"`
		Language   string    `json:"language"`
		UsersCount int       `json:"usersCount"`
		UpdatedAt  time.Time `json:"updatedAt"`
		CreatedBy  string    `json:"createdBy"`
		CanDelete  bool      `json:"canDelete"`
	}

	// Manager is a thin authorization façade in front of the registry. It
	// adds admin-ownership checks to listing and deletion and clamps the
	// configured per-room capacity.
	Manager struct {
		registry *Registry
		maxUsers int
	}
)

// NewManager wraps a registry, clamping the configured max users per room to
// the 1-5 range.
func NewManager(registry *Registry, maxUsers int) *Manager {
	if maxUsers < minUsersPerRoom {
		maxUsers = minUsersPerRoom
	}
	if maxUsers > maxUsersPerRoom {
		maxUsers = maxUsersPerRoom
	}
	return &Manager{registry: registry, maxUsers: maxUsers}
}

// TryGetRoom looks up a room by id.
func (m *Manager) TryGetRoom(roomID string) (*core.Room, bool) {
	return m.registry.TryGetRoom(roomID)
}

// RegisterUserInRoom admits a connection into a room under the configured
// capacity. Returns core.ErrRoomNotFound when the room is absent.
func (m *Manager) RegisterUserInRoom(roomID, connectionID, displayName string) (*core.Room, error) {
	room, ok := m.registry.TryGetRoom(roomID)
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	if err := room.AddUser(connectionID, displayName, m.maxUsers); err != nil {
		return nil, err
	}
	return room, nil
}

// CreateRoom creates a room owned by the given admin.
func (m *Manager) CreateRoom(name, language string, admin core.AdminUser) (*core.Room, error) {
	return m.registry.CreateRoom(name, language, admin.Name)
}

// RoomsSnapshot returns summaries of all rooms sorted by name
// (case-insensitive), each carrying the requesting admin's delete permission.
func (m *Manager) RoomsSnapshot(admin core.AdminUser) []RoomView {
	all := m.registry.Snapshot()
	views := make([]RoomView, 0, len(all))
	for _, room := range all {
		snapshot := room.Snapshot()
		views = append(views, RoomView{
			RoomID:     snapshot.ID,
			Name:       snapshot.Name,
			Language:   snapshot.Language,
			UsersCount: len(snapshot.Users),
			UpdatedAt:  snapshot.UpdatedAt,
			CreatedBy:  snapshot.CreatedBy,
			CanDelete:  room.CanDelete(admin),
		})
	}
	sort.Slice(views, func(i, j int) bool {
		li, lj := strings.ToLower(views[i].Name), strings.ToLower(views[j].Name)
		if li == lj {
			return views[i].Name < views[j].Name
		}
		return li < lj
	})
	return views
}

// DeleteRoom deletes a room on behalf of an admin. Deletion is never
// attempted when the authorization check fails. When the removal races with
// another delete after authorization passed, the result degrades to NotFound
// rather than reporting success.
func (m *Manager) DeleteRoom(ctx context.Context, roomID string, admin core.AdminUser) (DeletionResult, error) {
	room, ok := m.registry.TryGetRoom(roomID)
	if !ok {
		return NotFound, nil
	}
	if !room.CanDelete(admin) {
		return Forbidden, nil
	}

	deleted, err := m.registry.DeleteRoom(ctx, roomID, DeletionReasonAdmin)
	if err != nil {
		return NotFound, err
	}
	if !deleted {
		return NotFound, nil
	}
	return Deleted, nil
}
