package relay

import (
	"sort"
	"sync"
)

// LeaveResult reports the outcome of removing one user from one room.
type LeaveResult struct {
	Room    string
	Existed bool // the room was present in the directory
	Left    bool // user was a member and has been removed
	Count   int  // members remaining after removal
	Deleted bool // room became empty and was dropped
}

// State holds the connection registry (active display names) and the room
// directory (room name -> set of member names). A single mutex serializes
// every mutation, so each inbound client event is applied atomically before
// any derived event is published.
type State struct {
	mu    sync.RWMutex
	names map[string]struct{}            // active display names
	rooms map[string]map[string]struct{} // room name -> member names
}

// NewState creates an empty registry and directory.
func NewState() *State {
	return &State{
		names: make(map[string]struct{}),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Authenticate claims a display name. It succeeds iff the name is non-empty
// and no currently-connected user holds it. There is no limit on retries
// after a rejection.
func (s *State) Authenticate(username string) bool {
	if username == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.names[username]; taken {
		return false
	}
	s.names[username] = struct{}{}
	return true
}

// Deauthenticate releases a display name. Idempotent: releasing a name that
// is not registered is a no-op. It does not touch room membership; callers
// run RemoveFromAllRooms for the cleanup pass.
func (s *State) Deauthenticate(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.names, username)
}

// IsActive reports whether a display name is currently claimed.
func (s *State) IsActive(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[username]
	return ok
}

// TotalUsers returns the number of currently-authenticated users.
func (s *State) TotalUsers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

// CreateRoom inserts a room with an empty member set. Any non-empty name is
// accepted; returns false without touching anything if the name is already
// taken (idempotent create).
//
// An empty room is normally deleted immediately; creation is the one moment
// a room may be empty, between this call and the first join.
func (s *State) CreateRoom(name string) bool {
	if name == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[name]; exists {
		return false
	}
	s.rooms[name] = make(map[string]struct{})
	return true
}

// RoomExists reports whether a room is present in the directory.
func (s *State) RoomExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[name]
	return ok
}

// RoomNames returns the sorted names of all rooms.
func (s *State) RoomNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.rooms))
	for name := range s.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MemberCount returns the cardinality of a room's member set, or 0 for an
// unknown room.
func (s *State) MemberCount(room string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms[room])
}

// Members returns the member names of a room, sorted.
func (s *State) Members(room string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.rooms[room]
	if !ok {
		return nil
	}
	members := make([]string, 0, len(set))
	for name := range set {
		members = append(members, name)
	}
	sort.Strings(members)
	return members
}

// JoinRoom adds a user to a room's member set. Returns ok=false for an
// unknown room (silent no-op at the protocol level) and the member count
// after the join otherwise.
func (s *State) JoinRoom(room, username string) (count int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, exists := s.rooms[room]
	if !exists {
		return 0, false
	}
	set[username] = struct{}{}
	return len(set), true
}

// LeaveRoom removes a user from a room's member set and deletes the room if
// it became empty. Unknown rooms report Left=false.
func (s *State) LeaveRoom(room, username string) LeaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaveLocked(room, username)
}

func (s *State) leaveLocked(room, username string) LeaveResult {
	set, exists := s.rooms[room]
	if !exists {
		return LeaveResult{Room: room}
	}

	_, member := set[username]
	delete(set, username)

	res := LeaveResult{Room: room, Existed: true, Left: member, Count: len(set)}
	if len(set) == 0 {
		delete(s.rooms, room)
		res.Deleted = true
	}
	return res
}

// RemoveFromAllRooms is the full cleanup pass run on logout or connection
// loss: every room containing the name gets the equivalent of a leave. The
// results come back in sorted room order; the relay makes no ordering
// promise between rooms, sorting just keeps the pass deterministic.
func (s *State) RemoveFromAllRooms(username string) []LeaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected []string
	for room, set := range s.rooms {
		if _, member := set[username]; member {
			affected = append(affected, room)
		}
	}
	sort.Strings(affected)

	results := make([]LeaveResult, 0, len(affected))
	for _, room := range affected {
		results = append(results, s.leaveLocked(room, username))
	}
	return results
}
