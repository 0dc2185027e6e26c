package core

import (
	"errors"
	"testing"
	"time"
)

type stubValidator map[string]bool

func (v stubValidator) IsValid(language string) bool {
	return v[language]
}

func newTestRoom() *Room {
	return NewRoom(NewRoomID(), "Room", "sql", "root")
}

func TestAddUserCapacity(t *testing.T) {
	room := newTestRoom()

	if err := room.AddUser("conn-1", "Alice", 2); err != nil {
		t.Fatalf("Expected first join to succeed, got %v", err)
	}
	if err := room.AddUser("conn-2", "Bob", 2); err != nil {
		t.Fatalf("Expected second join to succeed, got %v", err)
	}
	if err := room.AddUser("conn-3", "Carol", 2); !errors.Is(err, ErrRoomFull) {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
	if count := room.ConnectedUserCount(); count != 2 {
		t.Errorf("Expected 2 users, got %d", count)
	}
}

func TestAddUserRejoinIsIdempotent(t *testing.T) {
	room := newTestRoom()

	if err := room.AddUser("conn-1", "Alice", 1); err != nil {
		t.Fatalf("Expected join to succeed, got %v", err)
	}
	// Re-adding under the same connection id must not count against capacity.
	if err := room.AddUser("conn-1", "Alicia", 1); err != nil {
		t.Errorf("Expected rejoin to succeed, got %v", err)
	}
	if count := room.ConnectedUserCount(); count != 1 {
		t.Errorf("Expected 1 user after rejoin, got %d", count)
	}
}

func TestDisplayNameUniqueness(t *testing.T) {
	room := newTestRoom()

	if err := room.AddUser("conn-1", "Alice", 5); err != nil {
		t.Fatalf("Expected join to succeed, got %v", err)
	}
	if err := room.AddUser("conn-2", "alice", 5); !errors.Is(err, ErrNameInUse) {
		t.Errorf("Expected ErrNameInUse for case-insensitive duplicate, got %v", err)
	}
	// The same connection may re-take its own name in any case.
	if err := room.AddUser("conn-1", "ALICE", 5); err != nil {
		t.Errorf("Expected self re-add to succeed, got %v", err)
	}
}

func TestRemoveUser(t *testing.T) {
	room := newTestRoom()
	if err := room.AddUser("conn-1", "Alice", 5); err != nil {
		t.Fatalf("Expected join to succeed, got %v", err)
	}

	name, removed := room.RemoveUser("conn-1")
	if !removed || name != "Alice" {
		t.Errorf("Expected to remove Alice, got %q removed=%v", name, removed)
	}
	if _, removed := room.RemoveUser("conn-1"); removed {
		t.Error("Expected second removal to be a no-op")
	}
}

func TestUsersSnapshotSorted(t *testing.T) {
	room := newTestRoom()
	for conn, name := range map[string]string{"c1": "bob", "c2": "Alice", "c3": "Carol"} {
		if err := room.AddUser(conn, name, 5); err != nil {
			t.Fatalf("Expected join to succeed, got %v", err)
		}
	}

	users := room.UsersSnapshot()
	want := []string{"Alice", "bob", "Carol"}
	if len(users) != len(want) {
		t.Fatalf("Expected %d users, got %d", len(want), len(users))
	}
	for i := range want {
		if users[i] != want[i] {
			t.Errorf("Expected users[%d]=%q, got %q", i, want[i], users[i])
		}
	}
}

func TestUpdateTextAlwaysBumpsVersion(t *testing.T) {
	room := newTestRoom()
	now := time.Now().UTC()

	if version := room.UpdateText("hello", now); version != 2 {
		t.Errorf("Expected version 2, got %d", version)
	}
	// Identical text still counts as a change on the plain-text path.
	if version := room.UpdateText("hello", now); version != 3 {
		t.Errorf("Expected version 3, got %d", version)
	}
}

func TestUpdateLanguage(t *testing.T) {
	room := newTestRoom()
	validator := stubValidator{"csharp": true, "sql": true}
	now := time.Now().UTC()

	version, err := room.UpdateLanguage("csharp", now, validator)
	if err != nil {
		t.Fatalf("Expected language update to succeed, got %v", err)
	}
	if version != 2 {
		t.Errorf("Expected version 2, got %d", version)
	}

	if _, err := room.UpdateLanguage("cobol", now, validator); !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("Expected ErrInvalidLanguage, got %v", err)
	}
	if snapshot := room.Snapshot(); snapshot.Version != 2 || snapshot.Language != "csharp" {
		t.Errorf("Expected rejected update to leave state untouched, got %+v", snapshot)
	}
}

func TestTryUpdateDocStateSuppressesRedundantUpdate(t *testing.T) {
	room := newTestRoom()
	now := time.Now().UTC()
	state := []byte{1, 2, 3}

	version, changed := room.TryUpdateDocState(state, "hello", now)
	if !changed || version != 2 {
		t.Fatalf("Expected first update to change version to 2, got changed=%v version=%d", changed, version)
	}

	version, changed = room.TryUpdateDocState(state, "hello", now)
	if changed {
		t.Error("Expected identical update to be a no-op")
	}
	if version != 2 {
		t.Errorf("Expected version to stay at 2, got %d", version)
	}
}

func TestTryUpdateDocStateTextChangeCounts(t *testing.T) {
	room := newTestRoom()
	now := time.Now().UTC()
	state := []byte{1, 2, 3}

	if _, changed := room.TryUpdateDocState(state, "hello", now); !changed {
		t.Fatal("Expected first update to count")
	}
	// Same bytes but different text snapshot is not redundant.
	version, changed := room.TryUpdateDocState(state, "hello!", now)
	if !changed || version != 3 {
		t.Errorf("Expected text-only change to bump version to 3, got changed=%v version=%d", changed, version)
	}
}

func TestCanDelete(t *testing.T) {
	room := NewRoom(NewRoomID(), "Room", "sql", "root")

	if !room.CanDelete(NewAdminUser("ROOT", false)) {
		t.Error("Expected creator to be allowed regardless of case")
	}
	if room.CanDelete(NewAdminUser("admin", false)) {
		t.Error("Expected unrelated admin to be forbidden")
	}
	if !room.CanDelete(NewAdminUser("admin", true)) {
		t.Error("Expected superadmin to be allowed")
	}
}

func TestSnapshotFreshRoom(t *testing.T) {
	room := newTestRoom()
	if err := room.AddUser("conn-1", "Alice", 5); err != nil {
		t.Fatalf("Expected join to succeed, got %v", err)
	}

	snapshot := room.Snapshot()
	if snapshot.Version != 1 {
		t.Errorf("Expected version 1, got %d", snapshot.Version)
	}
	if snapshot.Text != "" {
		t.Errorf("Expected empty text, got %q", snapshot.Text)
	}
	if len(snapshot.Users) != 1 || snapshot.Users[0] != "Alice" {
		t.Errorf("Expected users [Alice], got %v", snapshot.Users)
	}
	if len(snapshot.DocState) != 0 {
		t.Errorf("Expected empty document state, got %d bytes", len(snapshot.DocState))
	}
}

func TestConcurrentAddUserNeverExceedsCapacity(t *testing.T) {
	room := newTestRoom()
	attempts := 50
	maxUsers := 3

	done := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		go func(index int) {
			_ = room.AddUser(string(rune('a'+index)), string(rune('A'+index)), maxUsers)
			done <- true
		}(i)
	}
	for i := 0; i < attempts; i++ {
		<-done
	}

	if count := room.ConnectedUserCount(); count > maxUsers {
		t.Errorf("Expected at most %d users, got %d", maxUsers, count)
	}
}

func TestConcurrentUpdateTextSerializes(t *testing.T) {
	room := newTestRoom()
	updates := 100

	done := make(chan bool, updates)
	for i := 0; i < updates; i++ {
		go func() {
			room.UpdateText("text", time.Now().UTC())
			done <- true
		}()
	}
	for i := 0; i < updates; i++ {
		<-done
	}

	if snapshot := room.Snapshot(); snapshot.Version != 1+updates {
		t.Errorf("Expected version %d, got %d", 1+updates, snapshot.Version)
	}
}
