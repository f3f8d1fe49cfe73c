package core

import (
	"net"
	"sync/atomic"
)

// Session is one authenticated client's server-side state, per
// spec.md §3. It is a non-owning participant in at most one Room at a
// time; the Room pointer is mutated exclusively by the Registry while
// holding the registry/room locks, and read lock-free elsewhere via an
// atomic pointer (spec.md §9: "represent as non-owning handles").
type Session struct {
	Name string

	Conn   net.Conn
	Notify *NotifyChannel

	// ExecID is a correlation identifier the supervisor assigns when it
	// creates the session during registration, before the multiplexer
	// starts, and which the multiplexer stamps on its log lines for this
	// session. It stands in for the Linux thread ID the source logs,
	// which Go does not expose.
	ExecID string

	room atomic.Pointer[Room]

	// tornDown guards exactly-once teardown under the race between the
	// multiplexer's own exit path and a concurrent supervisor shutdown
	// (spec.md §5: "a tombstone flag ... suffices").
	tornDown atomic.Bool
}

// NewSession constructs a session bound to a transport and a fresh
// notify channel.
func NewSession(name string, conn net.Conn, execID string) *Session {
	return &Session{
		Name:   name,
		Conn:   conn,
		Notify: NewNotifyChannel(),
		ExecID: execID,
	}
}

// CurrentRoom returns the room this session currently belongs to, or
// nil. Safe to call without any of the directory/registry/room locks.
func (s *Session) CurrentRoom() *Room {
	return s.room.Load()
}

// setRoom is called only by the Registry while it holds the room's
// lock for the mutation in progress (on join, the registry lock too).
func (s *Session) setRoom(r *Room) {
	s.room.Store(r)
}

// MarkTornDown reports whether this call is the one that transitions
// the session from live to torn down. Exactly one caller across the
// multiplexer-exit and supervisor-shutdown race sees true.
func (s *Session) MarkTornDown() bool {
	return s.tornDown.CompareAndSwap(false, true)
}
