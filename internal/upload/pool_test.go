package upload

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/chatlog"
	"github.com/vovakirdan/chatrelay/internal/core"
)

func testOpsLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

func mustRecvFrame(t *testing.T, n *core.NotifyChannel) []byte {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		frame, ok := n.Recv()
		if ok {
			return frame
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected a frame, got none")
	return nil
}

func TestPoolDeliversFileToRecipient(t *testing.T) {
	dir := core.NewDirectory()
	bob := core.NewSession("bob", nil, "exec-1")
	if err := dir.Register("bob", bob); err != nil {
		t.Fatalf("Register: %v", err)
	}

	queue := core.NewUploadQueue(core.UploadQueueCapacity)
	sink, _ := chatlog.Open(t.TempDir(), time.Now())
	defer sink.Close()

	pool := New(queue, dir, sink, testOpsLogger())
	pool.Start()
	defer pool.Stop()

	queue.Enqueue(&core.UploadItem{
		Sender:   "alice",
		Target:   "bob",
		Filename: "photo.png",
		Size:     5,
		Data:     []byte("hello"),
	})

	header := string(mustRecvFrame(t, bob.Notify))
	if header != "[FILE photo.png 5 alice]\n" {
		t.Fatalf("unexpected header: %q", header)
	}
	payload := string(mustRecvFrame(t, bob.Notify))
	if payload != "hello" {
		t.Fatalf("unexpected payload: %q", payload)
	}
}

func TestPoolDropsFileForMissingRecipient(t *testing.T) {
	dir := core.NewDirectory()
	queue := core.NewUploadQueue(core.UploadQueueCapacity)
	sink, _ := chatlog.Open(t.TempDir(), time.Now())
	defer sink.Close()

	pool := New(queue, dir, sink, testOpsLogger())
	pool.Start()
	defer pool.Stop()

	// Should simply be dropped; absence of a panic or hang is the assertion.
	queue.Enqueue(&core.UploadItem{
		Sender:   "alice",
		Target:   "ghost",
		Filename: "x.bin",
		Size:     1,
		Data:     []byte("x"),
	})
	time.Sleep(50 * time.Millisecond)
}

func TestPoolStopDrainsAllWorkers(t *testing.T) {
	dir := core.NewDirectory()
	queue := core.NewUploadQueue(core.UploadQueueCapacity)
	sink, _ := chatlog.Open(t.TempDir(), time.Now())
	defer sink.Close()

	pool := New(queue, dir, sink, testOpsLogger())
	pool.Start()
	pool.Stop()
}
