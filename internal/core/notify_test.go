package core

import "testing"

func TestNotifyChannelSendRecv(t *testing.T) {
	n := NewNotifyChannel()

	if !n.TrySend([]byte("hello\n")) {
		t.Fatalf("expected TrySend to succeed on a fresh channel")
	}
	frame := mustRecv(t, n)
	if string(frame) != "hello\n" {
		t.Fatalf("got %q", frame)
	}
}

func TestNotifyChannelSendSequenceOrder(t *testing.T) {
	n := NewNotifyChannel()

	if err := n.SendSequence([]byte("a"), []byte("b"), []byte("c")); err != nil {
		t.Fatalf("SendSequence: %v", err)
	}
	for _, want := range []string{"a", "b", "c"} {
		if got := string(mustRecv(t, n)); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestNotifyChannelCloseRejectsSend(t *testing.T) {
	n := NewNotifyChannel()
	n.Close()

	if err := n.Send([]byte("x")); err != ErrNotifyClosed {
		t.Fatalf("expected ErrNotifyClosed, got %v", err)
	}
}

func TestNotifyChannelCloseDrainsQueued(t *testing.T) {
	n := NewNotifyChannel()
	if !n.TrySend([]byte("queued")) {
		t.Fatalf("TrySend failed")
	}
	n.Close()

	frame, ok := n.Recv()
	if !ok || string(frame) != "queued" {
		t.Fatalf("expected queued frame to still drain, got %q ok=%v", frame, ok)
	}

	frame, ok = n.Recv()
	if ok {
		t.Fatalf("expected drained channel to report closed, got %q", frame)
	}
}

func TestNotifyChannelTrySendDropsWhenFull(t *testing.T) {
	n := NewNotifyChannel()
	for i := 0; i < notifyBacklog; i++ {
		if !n.TrySend([]byte("x")) {
			t.Fatalf("unexpected drop before backlog was full")
		}
	}
	if n.TrySend([]byte("overflow")) {
		t.Fatalf("expected TrySend to drop once the backlog is full")
	}
}

func TestNotifyChannelCloseIsIdempotent(t *testing.T) {
	n := NewNotifyChannel()
	n.Close()
	n.Close()
}
