package core

import "sync"

// notifyBacklog bounds how many pending frames a session's notify
// channel will hold before a best-effort (broadcast) sender starts
// dropping. It plays the role of the source's socketpair kernel
// buffer; sized generously since the system caps rooms at 15 members
// and sessions at 256.
const notifyBacklog = 256

// NotifyChannel is the per-session internal byte pipe of spec.md §4.5:
// any number of producer goroutines (other sessions' multiplexers,
// upload workers) write framed messages into it; the owning
// multiplexer is the sole reader.
type NotifyChannel struct {
	frames chan []byte
	done   chan struct{}
	once   sync.Once

	// seqMu serializes multi-part sends (a file header plus its payload
	// chunks) so that no other producer's frame can land between them in
	// the reader's stream, satisfying the no-interleaving requirement of
	// spec.md §5 for concurrent workers writing to the same recipient.
	seqMu sync.Mutex
}

// NewNotifyChannel constructs an open channel.
func NewNotifyChannel() *NotifyChannel {
	return &NotifyChannel{
		frames: make(chan []byte, notifyBacklog),
		done:   make(chan struct{}),
	}
}

// Send blocks until the frame is accepted or the channel is closed.
// Workers streaming file payloads rely on this blocking behind a full
// buffer (spec.md §5: "a worker may block ... on notify-writer
// writes"); it never silently drops a frame.
func (n *NotifyChannel) Send(frame []byte) error {
	select {
	case <-n.done:
		return ErrNotifyClosed
	default:
	}
	select {
	case n.frames <- frame:
		return nil
	case <-n.done:
		return ErrNotifyClosed
	}
}

// SendSequence sends parts in order under a single writer-serialization
// lock so that a concurrent sender's frame cannot interleave between
// them. Used for the file header + payload chunks of spec.md §4.7.
func (n *NotifyChannel) SendSequence(parts ...[]byte) error {
	n.seqMu.Lock()
	defer n.seqMu.Unlock()
	for _, part := range parts {
		if err := n.Send(part); err != nil {
			return err
		}
	}
	return nil
}

// TrySend is the non-blocking, drop-on-backpressure send used by room
// broadcasts (spec.md §4.3) so that a slow reader never extends a
// broadcast's room-lock hold time beyond room size.
func (n *NotifyChannel) TrySend(frame []byte) bool {
	select {
	case n.frames <- frame:
		return true
	default:
		return false
	}
}

// Recv returns the next frame, blocking until one arrives or the
// channel is closed and drained (ok=false).
func (n *NotifyChannel) Recv() (frame []byte, ok bool) {
	select {
	case frame := <-n.frames:
		return frame, true
	case <-n.done:
		select {
		case frame := <-n.frames:
			return frame, true
		default:
			return nil, false
		}
	}
}

// Close is idempotent. Frames already queued are still delivered to a
// draining Recv; new Sends observe ErrNotifyClosed.
func (n *NotifyChannel) Close() {
	n.once.Do(func() { close(n.done) })
}
