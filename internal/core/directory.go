package core

import "sync"

// DirectoryCapacity is the maximum number of concurrently registered
// sessions (spec.md §1, §3): up to 256 connections.
const DirectoryCapacity = 256

// Directory is the session directory of spec.md §4.2: the single
// source of truth for "is this name taken" and "which session does
// this name resolve to." Its lock is order 1 of the hierarchy in
// spec.md §5 — always the outermost lock when nested with the
// registry or a room.
type Directory struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewDirectory constructs an empty session directory.
func NewDirectory() *Directory {
	return &Directory{sessions: make(map[string]*Session)}
}

// Register atomically checks name availability and capacity, then adds
// s under that name. Returns ErrNameTaken or ErrDirectoryFull without
// mutating the directory on failure.
func (d *Directory) Register(name string, s *Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, taken := d.sessions[name]; taken {
		return ErrNameTaken
	}
	if len(d.sessions) >= DirectoryCapacity {
		return ErrDirectoryFull
	}
	d.sessions[name] = s
	return nil
}

// Resolve returns the session registered under name, or nil.
func (d *Directory) Resolve(name string) *Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions[name]
}

// Deregister removes s's own entry, but only if the name still maps to
// s itself. This guards against removing a slot that a later
// registration has since reused — unlike the original server's
// remove_connection, which could log a stale or nil slot; here a
// mismatched or absent entry is simply a no-op, never a dereference of
// a nil pointer (spec.md §9).
func (d *Directory) Deregister(name string, s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if current, ok := d.sessions[name]; ok && current == s {
		delete(d.sessions, name)
	}
}

// Count reports the number of registered sessions, for the admin
// stats surface (SPEC_FULL.md §4).
func (d *Directory) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// Snapshot returns a copy of all currently registered sessions, used
// by the supervisor's shutdown broadcast (spec.md §4.8) so the goodbye
// message can be delivered without holding the directory lock across
// each notify send.
func (d *Directory) Snapshot() []*Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		out = append(out, s)
	}
	return out
}
