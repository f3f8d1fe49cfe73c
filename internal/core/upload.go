package core

// UploadItem is a unit of work enqueued for the upload worker pool
// (spec.md §4.7). A Terminator item carries no payload; it is the
// shutdown signal each worker consumes exactly once before exiting.
// TrackingID is a correlation identifier assigned at enqueue time
// (utils.NewID) so a single upload's queue and worker log lines can be
// tied together even though delivery happens on a different goroutine,
// possibly much later than the enqueue.
type UploadItem struct {
	Sender   string
	Target   string
	Filename string
	Size     uint64
	Data     []byte

	TrackingID string
	Terminator bool
}

// NewUploadTerminator builds the sentinel item the supervisor enqueues
// once per worker during shutdown (spec.md §4.8).
func NewUploadTerminator() *UploadItem {
	return &UploadItem{Terminator: true}
}
