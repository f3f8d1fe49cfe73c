package core

import "testing"

func TestUploadQueueTryEnqueueRespectsCapacity(t *testing.T) {
	q := NewUploadQueue(UploadQueueCapacity)
	for i := 0; i < UploadQueueCapacity; i++ {
		if !q.TryEnqueue(&UploadItem{Filename: "f"}) {
			t.Fatalf("TryEnqueue %d unexpectedly failed", i)
		}
	}
	if !q.IsFull() {
		t.Fatalf("expected queue to report full at capacity")
	}
	if q.TryEnqueue(&UploadItem{Filename: "overflow"}) {
		t.Fatalf("expected TryEnqueue to fail once full")
	}
}

func TestUploadQueueDequeueOrder(t *testing.T) {
	q := NewUploadQueue(2)
	first := &UploadItem{Filename: "first"}
	second := &UploadItem{Filename: "second"}
	q.Enqueue(first)
	q.Enqueue(second)

	if got := q.Dequeue(); got != first {
		t.Fatalf("expected FIFO order, got %v first", got)
	}
	if got := q.Dequeue(); got != second {
		t.Fatalf("expected FIFO order, got %v second", got)
	}
}

func TestUploadQueueTerminatorRoundTrips(t *testing.T) {
	q := NewUploadQueue(1)
	q.Enqueue(NewUploadTerminator())

	item := q.Dequeue()
	if !item.Terminator {
		t.Fatalf("expected dequeued item to be a terminator")
	}
}
