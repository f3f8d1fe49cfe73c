package core

import "sync"

// RegistryCapacity is the maximum number of live rooms the server
// tracks at once (spec.md §1, §3): up to 256 rooms.
const RegistryCapacity = 256

// Registry is the room registry of spec.md §4.3: rooms are created
// lazily on first join and destroyed the instant their last member
// leaves. Its lock is order 2 of the hierarchy in spec.md §5 — always
// acquired after the directory lock and released before (or without
// ever touching) it, and acquired before any nested room lock.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry constructs an empty room registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Find returns a live room handle by name, or nil.
func (reg *Registry) Find(name string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.rooms[name]
}

// Join withdraws s from any room it currently occupies, then adds it
// to the named room — creating the room if it does not yet exist and
// the registry has a free slot. This matches spec.md §4.3's atomicity
// contract: "when adding, any prior membership of the session is
// first withdrawn."
//
// The withdrawal runs as its own sequential step (room lock, release,
// then registry lock to reap if now empty) before the join's nested
// registry-then-room acquisition begins, so no call ever holds the
// room lock while acquiring the registry lock — the ordering rule
// spec.md §5 calls out to preclude cycles with Join.
func (reg *Registry) Join(name string, s *Session) (*Room, error) {
	if prior := s.CurrentRoom(); prior != nil {
		reg.leaveRoom(prior, s)
	}

	reg.mu.Lock()

	room, exists := reg.rooms[name]
	if !exists {
		if len(reg.rooms) >= RegistryCapacity {
			reg.mu.Unlock()
			return nil, ErrRegistryFull
		}
		room = newRoom(name)
		reg.rooms[name] = room
	}

	room.mu.Lock()
	if room.memberCount() >= RoomCapacity {
		room.mu.Unlock()
		reg.mu.Unlock()
		return nil, ErrRoomFull
	}
	room.members[s] = struct{}{}
	s.setRoom(room)
	room.mu.Unlock()

	reg.mu.Unlock()
	return room, nil
}

// Leave withdraws s from its current room, if any. If that room's
// membership drops to zero, the room is destroyed in the same
// critical region that observed the zero count (spec.md §4.3).
func (reg *Registry) Leave(s *Session) error {
	room := s.CurrentRoom()
	if room == nil {
		return ErrNotInRoom
	}
	reg.leaveRoom(room, s)
	return nil
}

// leaveRoom performs the remove-then-maybe-reap sequence described in
// spec.md §4.3 and §5: acquire the room lock, remove the member,
// observe emptiness, release the room lock, and only then acquire the
// registry lock to reap. Another Join may repopulate the room in the
// gap between releasing the room lock and taking the registry lock, so
// the reap re-checks emptiness under the registry lock (taking the room
// lock again, in registry-then-room order) and keeps a room that has
// gained a member.
func (reg *Registry) leaveRoom(room *Room, s *Session) {
	room.mu.Lock()
	if _, member := room.members[s]; member {
		delete(room.members, s)
	}
	s.setRoom(nil)
	empty := room.memberCount() == 0
	room.mu.Unlock()

	if !empty {
		return
	}

	reg.mu.Lock()
	if reg.rooms[room.Name] == room {
		room.mu.Lock()
		if room.memberCount() == 0 {
			delete(reg.rooms, room.Name)
		}
		room.mu.Unlock()
	}
	reg.mu.Unlock()
}

// RoomCount reports the number of live rooms, for the admin stats
// surface (SPEC_FULL.md §4). Never blocks a chat operation for more
// than the registry lock's brief hold time.
func (reg *Registry) RoomCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}
