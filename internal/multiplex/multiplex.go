// Package multiplex runs the per-session duplex loop: one goroutine
// reads command lines from the client's TCP connection and dispatches
// them, another drains the session's notify channel and writes
// whatever arrives straight to the same connection. The split and its
// errCh-based shutdown coordination are grounded on the teacher's
// ws_handler.go readLoop/writeLoop pair — the Go-idiomatic equivalent
// of the original's single-threaded select() over two file
// descriptors.
package multiplex

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/chatlog"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/protocol"
	"github.com/vovakirdan/chatrelay/internal/utils"
)

// Multiplexer owns one registered session for its lifetime: command
// dispatch, file-upload enqueue, and teardown.
type Multiplexer struct {
	session  *core.Session
	dir      *core.Directory
	registry *core.Registry
	queue    *core.UploadQueue
	log      *chatlog.Sink
	ops      *zerolog.Logger
}

// New builds a multiplexer for an already-registered session.
func New(session *core.Session, dir *core.Directory, registry *core.Registry, queue *core.UploadQueue, log *chatlog.Sink, ops *zerolog.Logger) *Multiplexer {
	return &Multiplexer{session: session, dir: dir, registry: registry, queue: queue, log: log, ops: ops}
}

// Run blocks until the connection closes (which is how the supervisor
// ends it during shutdown), the client sends /exit, or a write to the
// connection fails, then tears the session down exactly once (spec.md
// §5's tombstone requirement) and returns. A cancelled ctx is noticed
// only between commands or frames; it does not interrupt a blocked
// read or receive.
func (m *Multiplexer) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- m.readLoop(ctx) }()
	go func() { errCh <- m.writeLoop(ctx) }()

	<-errCh
	cancel()
	// Whichever loop is still blocked is stuck on its own I/O
	// primitive (a conn.Read or a Notify.Recv), not on ctx — unblock
	// both explicitly so the second errCh value always arrives.
	m.session.Notify.Close()
	_ = m.session.Conn.Close()
	<-errCh

	m.teardown()
}

func (m *Multiplexer) readLoop(ctx context.Context) error {
	reader := bufio.NewReader(m.session.Conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if line == "" {
				return err
			}
			// fall through: process the partial final line, then report io.EOF
		}

		m.ops.Info().Str("name", m.session.Name).Str("exec_id", m.session.ExecID).Str("line", line).Msg("received command")
		m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] User '%s' sent command", m.session.ExecID, m.session.Name))

		if exit := m.dispatch(reader, protocol.ParseCommand(line)); exit {
			return io.EOF
		}

		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (m *Multiplexer) writeLoop(ctx context.Context) error {
	for {
		frame, ok := m.session.Notify.Recv()
		if !ok {
			return nil
		}
		if _, err := m.session.Conn.Write(frame); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// dispatch runs one parsed command and reports whether the connection
// should close (true for /exit). reader is the same buffered reader
// readLoop reads command lines from — /sendfile's payload follows the
// command line on the wire and must come off that same reader, not a
// fresh read on the raw conn, or bytes the bufio lookahead already
// consumed would be lost.
func (m *Multiplexer) dispatch(reader *bufio.Reader, cmd protocol.Command) (exit bool) {
	switch cmd.Kind {
	case protocol.CmdExit:
		m.reply(protocol.MsgExitGoodbye)
		return true
	case protocol.CmdWhisper:
		m.handleWhisper(cmd)
	case protocol.CmdJoin:
		m.handleJoin(cmd)
	case protocol.CmdLeave:
		m.handleLeave()
	case protocol.CmdBroadcast:
		m.handleBroadcast(cmd)
	case protocol.CmdSendfile:
		m.handleSendfile(reader, cmd)
	default:
		m.reply(protocol.MsgUnknownCommand)
		m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] User '%s' sent unknown command.", m.session.ExecID, m.session.Name))
	}
	return false
}

func (m *Multiplexer) handleWhisper(cmd protocol.Command) {
	if cmd.Target == "" || cmd.Message == "" {
		m.reply(protocol.MsgWhisperUsage)
		return
	}
	if cmd.Target == m.session.Name {
		m.reply(protocol.MsgWhisperSelf)
		return
	}

	target := m.dir.Resolve(cmd.Target)
	if target == nil {
		m.reply(fmt.Sprintf(protocol.MsgWhisperOffline, cmd.Target))
		m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] User '%s' tried to whisper to offline user '%s'", m.session.ExecID, m.session.Name, cmd.Target))
		return
	}

	frame := []byte(fmt.Sprintf("[%s] %s\n", m.session.Name, cmd.Message))
	_ = target.Notify.Send(frame)
	m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] User '%s' sent whisper to %s", m.session.ExecID, m.session.Name, cmd.Target))
}

func (m *Multiplexer) handleJoin(cmd protocol.Command) {
	if cmd.Room == "" || cmd.Extra != "" {
		m.reply(protocol.MsgJoinUsage)
		return
	}
	if !core.ValidRoomName(cmd.Room) {
		m.reply(protocol.MsgJoinInvalidName)
		m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] User '%s' sent invalid room name %s", m.session.ExecID, m.session.Name, cmd.Room))
		return
	}

	room, err := m.registry.Join(cmd.Room, m.session)
	switch {
	case errors.Is(err, core.ErrRegistryFull):
		m.reply(protocol.MsgJoinRegistryFull)
		m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] Room %s is not created. Room slots are full", m.session.ExecID, cmd.Room))
	case errors.Is(err, core.ErrRoomFull):
		m.reply(protocol.MsgJoinRoomFull)
		m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] User '%s' could not join room %s. Room is full.", m.session.ExecID, m.session.Name, cmd.Room))
	case err != nil:
		m.reply(protocol.MsgJoinRegistryFull)
	default:
		m.reply(fmt.Sprintf(protocol.MsgJoinOK, m.session.Name, room.Name))
		m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] User '%s' joined the room %s.", m.session.ExecID, m.session.Name, cmd.Room))
	}
}

func (m *Multiplexer) handleLeave() {
	room := m.session.CurrentRoom()
	if room == nil {
		m.reply(fmt.Sprintf(protocol.MsgLeaveNotInAny, m.session.Name))
		m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] User '%s' tried to leave a room but was not in any room.", m.session.ExecID, m.session.Name))
		return
	}

	roomName := room.Name
	_ = m.registry.Leave(m.session)
	m.reply(fmt.Sprintf(protocol.MsgLeaveOK, m.session.Name, roomName))
	m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] User '%s' left the room %s.", m.session.ExecID, m.session.Name, roomName))
}

func (m *Multiplexer) handleBroadcast(cmd protocol.Command) {
	if cmd.Text == "" {
		m.reply(protocol.MsgBroadcastUsage)
		return
	}
	room := m.session.CurrentRoom()
	if room == nil {
		m.reply(protocol.MsgBroadcastNoRoom)
		m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] User '%s' tried to broadcast but was not in any room.", m.session.ExecID, m.session.Name))
		return
	}
	room.Broadcast(m.session.Name, cmd.Text)
}

func (m *Multiplexer) handleSendfile(reader *bufio.Reader, cmd protocol.Command) {
	if cmd.Filename == "" || cmd.Target == "" || cmd.SizeStr == "" {
		m.reply(protocol.MsgSendfileUsage)
		return
	}

	size, err := strconv.ParseUint(cmd.SizeStr, 10, 64)
	if err != nil || size == 0 || size > protocol.MaxFileSize {
		m.reply(protocol.MsgSendfileBadSize)
		return
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(reader, data); err != nil {
		m.reply(protocol.MsgSendfileShortRead)
		return
	}

	if m.queue.IsFull() {
		m.reply(fmt.Sprintf(protocol.MsgSendfileQueued, cmd.Filename))
	}

	trackingID := utils.NewID()
	m.queue.Enqueue(&core.UploadItem{
		Sender:     m.session.Name,
		Target:     cmd.Target,
		Filename:   cmd.Filename,
		Size:       size,
		Data:       data,
		TrackingID: trackingID,
	})

	m.reply(fmt.Sprintf(protocol.MsgSendfileOK, cmd.Filename, cmd.Target, size))
	m.log.Write(fmt.Sprintf("[FILE-QUEUE] Upload '%s' (tracking %s) from %s enqueued for %s.", cmd.Filename, trackingID, m.session.Name, cmd.Target))
}

func (m *Multiplexer) reply(text string) {
	_, _ = m.session.Conn.Write([]byte(text))
}

// teardown withdraws the session from its room, deregisters it from
// the directory, closes its notify channel and connection, and logs
// exactly once — guarded by Session.MarkTornDown so a concurrent
// supervisor-driven shutdown and this multiplexer's own exit path
// never both run it (spec.md §5).
func (m *Multiplexer) teardown() {
	if !m.session.MarkTornDown() {
		return
	}

	_ = m.registry.Leave(m.session)
	m.session.Notify.Close()
	_ = m.session.Conn.Close()
	m.dir.Deregister(m.session.Name, m.session)

	m.log.Write(fmt.Sprintf("[THREAD-INFO (TID: %s)] User \"%s\" has been disconnected and removed.", m.session.ExecID, m.session.Name))
	m.ops.Info().Str("name", m.session.Name).Str("exec_id", m.session.ExecID).Msg("session torn down")
}
