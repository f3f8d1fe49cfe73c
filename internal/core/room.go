package core

import (
	"fmt"
	"sync"
)

// RoomCapacity is the maximum live membership of a single room
// (spec.md §1, §3): up to 15 members.
const RoomCapacity = 15

// Room groups up to RoomCapacity sessions under one name. Membership
// mutation and broadcast fan-out serialize on mu (lock order 3 of
// spec.md §5's hierarchy); callers holding the registry lock acquire
// this lock briefly and in order.
type Room struct {
	Name string

	mu      sync.Mutex
	members map[*Session]struct{}
}

func newRoom(name string) *Room {
	return &Room{
		Name:    name,
		members: make(map[*Session]struct{}, RoomCapacity),
	}
}

// Broadcast writes "[from] text\n" to every current member's notify
// channel, including the sender, while holding the room lock
// (spec.md §4.3). Sends are non-blocking (TrySend): a slow reader is
// dropped from this one delivery, not from the room, keeping the
// lock's hold time bounded by room size regardless of reader speed.
func (r *Room) Broadcast(from, text string) {
	frame := []byte(fmt.Sprintf("[%s] %s\n", from, text))

	r.mu.Lock()
	defer r.mu.Unlock()
	for member := range r.members {
		member.Notify.TrySend(frame)
	}
}

// memberCount returns the live membership count. Caller must hold mu.
func (r *Room) memberCount() int {
	return len(r.members)
}
