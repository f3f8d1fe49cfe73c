package tcp

import (
	"bufio"
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/chatlog"
)

func testOpsLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

func startTestSupervisor(t *testing.T) (addr string, shutdown func()) {
	t.Helper()

	sink, err := chatlog.Open(t.TempDir(), time.Now())
	if err != nil {
		t.Fatalf("chatlog.Open: %v", err)
	}

	sup := New("127.0.0.1:0", sink, testOpsLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.ListenAndServe(ctx)
		close(done)
	}()

	// Wait for the supervisor to finish binding before the test dials it.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sup.listener != nil {
			addr = sup.listener.Addr().String()
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if addr == "" {
		t.Fatalf("supervisor did not bind a listener in time")
	}

	return addr, func() {
		cancel()
		sink.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("ListenAndServe did not return after shutdown")
		}
	}
}

func TestSupervisorHandshakeAndChat(t *testing.T) {
	addr, shutdown := startTestSupervisor(t)
	defer shutdown()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	conn.Write([]byte("alice\n"))
	reply, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if reply != "[OK] Username accepted.\n" {
		t.Fatalf("unexpected handshake reply: %q", reply)
	}

	conn.Write([]byte("/join general\n"))
	reply, err = r.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if reply != "[OK] User \"alice\" joined the room: general\n" {
		t.Fatalf("unexpected join reply: %q", reply)
	}
}

func TestSupervisorRejectsDuplicateUsername(t *testing.T) {
	addr, shutdown := startTestSupervisor(t)
	defer shutdown()

	first, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer first.Close()
	r1 := bufio.NewReader(first)
	first.Write([]byte("bob\n"))
	if reply, err := r1.ReadString('\n'); err != nil || reply != "[OK] Username accepted.\n" {
		t.Fatalf("unexpected first handshake: %q, err=%v", reply, err)
	}

	second, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer second.Close()
	r2 := bufio.NewReader(second)
	second.Write([]byte("bob\n"))
	reply, err := r2.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if reply != "[ERROR] Username already taken. Choose another.\n" {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestSupervisorShutdownSendsGoodbye(t *testing.T) {
	addr, shutdown := startTestSupervisor(t)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	r := bufio.NewReader(conn)
	conn.Write([]byte("carol\n"))
	if reply, err := r.ReadString('\n'); err != nil || reply != "[OK] Username accepted.\n" {
		t.Fatalf("unexpected handshake: %q, err=%v", reply, err)
	}

	shutdown()

	reply, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString after shutdown: %v", err)
	}
	if reply != "[SERVER] shutting down. Goodbye.\n" {
		t.Fatalf("unexpected goodbye: %q", reply)
	}
}
