package core

// UploadQueueCapacity is the bounded depth of the upload queue
// (spec.md §9 Open Questions): the source's file_queue.c was
// initialized with ROOM_CAPACITY (15) by mistake; the documented and
// authoritative capacity is 5, and that is what this queue uses.
const UploadQueueCapacity = 5

// UploadQueue is the bounded FIFO of spec.md §4.7, implemented
// directly on a native buffered channel rather than the source's
// hand-rolled mutex+two-condvar design: a Go channel already gives
// blocking enqueue/dequeue, a non-blocking try-enqueue via select with
// default, and an is-full check via len==cap.
type UploadQueue struct {
	items chan *UploadItem
}

// NewUploadQueue constructs a queue with the given capacity.
func NewUploadQueue(capacity int) *UploadQueue {
	return &UploadQueue{items: make(chan *UploadItem, capacity)}
}

// Enqueue blocks until a slot is free.
func (q *UploadQueue) Enqueue(item *UploadItem) {
	q.items <- item
}

// TryEnqueue enqueues without blocking, reporting false if the queue
// was full.
func (q *UploadQueue) TryEnqueue(item *UploadItem) bool {
	select {
	case q.items <- item:
		return true
	default:
		return false
	}
}

// Dequeue blocks until an item is available.
func (q *UploadQueue) Dequeue() *UploadItem {
	return <-q.items
}

// IsFull reports whether the queue is currently at capacity.
func (q *UploadQueue) IsFull() bool {
	return len(q.items) == cap(q.items)
}

// Len reports the current live count, for the admin stats surface.
func (q *UploadQueue) Len() int {
	return len(q.items)
}
