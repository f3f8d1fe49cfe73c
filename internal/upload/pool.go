// Package upload runs the fixed worker pool that drains the bounded
// file-upload queue (spec.md §4.7), grounded on the original's
// file_upload_worker loop: dequeue, resolve the recipient by name at
// delivery time rather than at enqueue time, stream the header and
// payload, and repeat until a terminator item signals shutdown.
package upload

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/chatlog"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/protocol"
)

// Workers is the fixed-size pool of spec.md §4.7: five goroutines,
// matching the original's NUM_UPLOAD_WORKERS, all dequeuing from the
// same queue.
const Workers = 5

// Pool runs Workers goroutines against a shared queue and directory.
type Pool struct {
	queue *core.UploadQueue
	dir   *core.Directory
	log   *chatlog.Sink
	ops   *zerolog.Logger

	wg sync.WaitGroup
}

// New constructs a pool bound to the given queue, directory, and log
// sinks. Call Start to spawn its workers.
func New(queue *core.UploadQueue, dir *core.Directory, log *chatlog.Sink, ops *zerolog.Logger) *Pool {
	return &Pool{queue: queue, dir: dir, log: log, ops: ops}
}

// Start spawns the worker goroutines. Each runs until it dequeues a
// terminator item.
func (p *Pool) Start() {
	for i := 0; i < Workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

// RequestStop enqueues one terminator item per worker (spec.md §4.8
// step 2: "enqueue W terminator items"). Each Enqueue blocks while the
// queue is full, until a worker frees a slot.
func (p *Pool) RequestStop() {
	for i := 0; i < Workers; i++ {
		p.queue.Enqueue(core.NewUploadTerminator())
	}
}

// Wait blocks until every worker has consumed its terminator and
// exited (spec.md §4.8 step 4: "join all W workers").
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Stop is RequestStop followed immediately by Wait, for callers (and
// tests) that don't need the two phases separated.
func (p *Pool) Stop() {
	p.RequestStop()
	p.Wait()
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		item := p.queue.Dequeue()
		if item.Terminator {
			return
		}
		p.deliver(item)
	}
}

// deliver resolves the recipient at the moment of delivery — never at
// enqueue time — so a recipient that connects, disconnects, and
// reconnects between /sendfile and delivery is still resolved
// correctly, and a recipient that never existed or has since
// disconnected causes the file to be dropped rather than delivered to
// a stale handle.
func (p *Pool) deliver(item *core.UploadItem) {
	recipient := p.dir.Resolve(item.Target)
	if recipient == nil {
		p.log.Write(fileQueueDropMsg(item))
		p.ops.Info().Str("target", item.Target).Str("filename", item.Filename).Str("tracking_id", item.TrackingID).Msg("upload recipient not found, dropping")
		return
	}

	header := protocol.FileHeader(item.Filename, item.Size, item.Sender)
	if err := recipient.Notify.SendSequence(header, item.Data); err != nil {
		p.log.Write(fileSendErrorMsg(item))
		p.ops.Warn().Err(err).Str("target", item.Target).Str("filename", item.Filename).Str("tracking_id", item.TrackingID).Msg("failed to deliver upload")
		return
	}

	p.log.Write(fileSendSuccessMsg(item))
}

func fileQueueDropMsg(item *core.UploadItem) string {
	return "[FILE-QUEUE] Recipient '" + item.Target + "' not found for file '" + item.Filename + "' (tracking " + item.TrackingID + ") from '" + item.Sender + "'. Dropping."
}

func fileSendErrorMsg(item *core.UploadItem) string {
	return "[FILE-ERROR] Failed sending '" + item.Filename + "' (tracking " + item.TrackingID + ") to '" + item.Target + "'."
}

func fileSendSuccessMsg(item *core.UploadItem) string {
	return "[SEND FILE] '" + item.Filename + "' (tracking " + item.TrackingID + ") sent from " + item.Sender + " to " + item.Target + " (success)."
}
