package relay

import (
	"testing"

	"github.com/go-monolith/mono/pkg/types"
)

// nopLogger implements types.Logger for testing.
type nopLogger struct{}

func (l *nopLogger) Debug(msg string, args ...any)         {}
func (l *nopLogger) Info(msg string, args ...any)          {}
func (l *nopLogger) Warn(msg string, args ...any)          {}
func (l *nopLogger) Error(msg string, args ...any)         {}
func (l *nopLogger) With(args ...any) types.Logger         { return l }
func (l *nopLogger) WithError(err error) types.Logger      { return l }
func (l *nopLogger) WithModule(module string) types.Logger { return l }

// The module is exercised here without an event bus: publishing is
// best-effort and every operation must behave identically when no consumer
// is listening.

func newTestModule() *Module {
	return NewModule(&nopLogger{})
}

func TestModule_AuthenticateUniqueness(t *testing.T) {
	m := newTestModule()

	if !m.Authenticate("alice") {
		t.Fatal("first Authenticate should succeed")
	}
	if m.Authenticate("alice") {
		t.Error("second Authenticate with a held name should fail")
	}
	if !m.Authenticate("bob") {
		t.Error("Authenticate with a free name should succeed")
	}
	if got := m.TotalUsers(); got != 2 {
		t.Errorf("TotalUsers() = %d, want 2", got)
	}
}

func TestModule_CreateRoomIdempotent(t *testing.T) {
	m := newTestModule()

	m.CreateRoom("general")
	m.CreateRoom("general")

	rooms := m.RoomNames()
	if len(rooms) != 1 || rooms[0] != "general" {
		t.Errorf("RoomNames() = %v, want exactly one room named general", rooms)
	}
}

func TestModule_JoinLeaveLifecycle(t *testing.T) {
	m := newTestModule()
	m.Authenticate("alice")
	m.CreateRoom("general")

	if !m.JoinRoom("general", "alice", "conn-1") {
		t.Fatal("JoinRoom should succeed for an existing room")
	}
	if m.JoinRoom("nowhere", "alice", "conn-1") {
		t.Error("JoinRoom should no-op for an unknown room")
	}
	if got := m.MemberCount("general"); got != 1 {
		t.Errorf("MemberCount() = %d, want 1", got)
	}

	if !m.LeaveRoom("general", "alice", "conn-1") {
		t.Error("LeaveRoom should report the member was removed")
	}
	if m.RoomExists("general") {
		t.Error("emptied room should be deleted")
	}
	if m.LeaveRoom("general", "alice", "conn-1") {
		t.Error("LeaveRoom on a deleted room should no-op")
	}
}

func TestModule_PostMessage(t *testing.T) {
	m := newTestModule()
	m.CreateRoom("general")

	msg, ok := m.PostMessage("general", "alice", "hi")
	if !ok {
		t.Fatal("PostMessage should succeed for an existing room")
	}
	if msg.ID == "" {
		t.Error("PostMessage should assign a message ID")
	}
	if msg.Timestamp.IsZero() {
		t.Error("PostMessage should stamp a timestamp")
	}
	if msg.Username != "alice" || msg.Body != "hi" {
		t.Errorf("PostMessage relayed %q/%q, want alice/hi", msg.Username, msg.Body)
	}

	// Membership is not verified: a claimed name posts into any live room.
	if _, ok := m.PostMessage("general", "stranger", "hello"); !ok {
		t.Error("PostMessage should not require membership")
	}

	if _, ok := m.PostMessage("nowhere", "alice", "hi"); ok {
		t.Error("PostMessage should no-op for an unknown room")
	}
}

func TestModule_LogoutCleanup(t *testing.T) {
	m := newTestModule()
	m.Authenticate("bob")
	m.CreateRoom("a")
	m.CreateRoom("b")
	m.JoinRoom("a", "bob", "conn-1")
	m.JoinRoom("b", "bob", "conn-1")
	m.Authenticate("alice")
	m.JoinRoom("b", "alice", "conn-2")

	m.Logout("bob", "conn-1")

	if m.TotalUsers() != 1 {
		t.Errorf("TotalUsers() = %d, want 1", m.TotalUsers())
	}
	if m.RoomExists("a") {
		t.Error("room a emptied by logout should be deleted")
	}
	if got := m.MemberCount("b"); got != 1 {
		t.Errorf("room b MemberCount() = %d, want 1", got)
	}

	// Logout is idempotent.
	m.Logout("bob", "conn-1")
	m.Logout("", "conn-1")
	if m.TotalUsers() != 1 {
		t.Errorf("TotalUsers() after repeated logout = %d, want 1", m.TotalUsers())
	}
}

func TestModule_RoomsSnapshot(t *testing.T) {
	m := newTestModule()
	m.CreateRoom("general")
	m.CreateRoom("random")
	m.JoinRoom("general", "alice", "conn-1")

	rooms := m.Rooms()
	if len(rooms) != 2 {
		t.Fatalf("Rooms() returned %d entries, want 2", len(rooms))
	}
	if rooms[0].Name != "general" || rooms[0].Members != 1 {
		t.Errorf("rooms[0] = %+v, want general with 1 member", rooms[0])
	}
	if rooms[1].Name != "random" || rooms[1].Members != 0 {
		t.Errorf("rooms[1] = %+v, want random with 0 members", rooms[1])
	}
}
