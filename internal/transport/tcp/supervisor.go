// Package tcp runs the session supervisor: the listening socket, the
// accept loop, the registration handshake, and the orderly shutdown
// protocol. Grounded on main()'s accept loop and shutdown sequence in
// the original chatserver.c, restructured around goroutines and
// sync.WaitGroup in place of pthread_create/pthread_join.
package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/chatlog"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/multiplex"
	"github.com/vovakirdan/chatrelay/internal/protocol"
	"github.com/vovakirdan/chatrelay/internal/upload"
	"github.com/vovakirdan/chatrelay/internal/utils"
)

// Supervisor owns the listener, the shared domain state, and the
// lifecycle of every session goroutine it spawns.
type Supervisor struct {
	addr string

	dir      *core.Directory
	registry *core.Registry
	queue    *core.UploadQueue
	pool     *upload.Pool
	log      *chatlog.Sink
	ops      *zerolog.Logger

	listener net.Listener
	sessions sync.WaitGroup
}

// New constructs a supervisor listening on addr (host:port, or
// :port). Queue capacity and worker count follow spec.md's resolved
// Open Question (core.UploadQueueCapacity, upload.Workers).
func New(addr string, log *chatlog.Sink, ops *zerolog.Logger) *Supervisor {
	dir := core.NewDirectory()
	registry := core.NewRegistry()
	queue := core.NewUploadQueue(core.UploadQueueCapacity)

	return &Supervisor{
		addr:     addr,
		dir:      dir,
		registry: registry,
		queue:    queue,
		pool:     upload.New(queue, dir, log, ops),
		log:      log,
		ops:      ops,
	}
}

// ListenAndServe binds the listening socket through net.ListenConfig,
// which uses the platform's default listen backlog (it does not set the
// original's backlog of 10), starts the upload worker pool,
// and runs the accept loop until ctx is cancelled. It returns once
// every session goroutine and worker has exited.
func (s *Supervisor) ListenAndServe(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	s.log.Write(fmt.Sprintf("[SERVER-INFO] Server listening on port: %s", s.addr))
	s.ops.Info().Str("addr", s.addr).Msg("listening")

	s.pool.Start()

	go func() {
		<-ctx.Done()
		s.shutdown()
	}()

	s.acceptLoop(ctx)

	s.pool.Wait()
	s.sessions.Wait()

	s.log.Write("[SHUTDOWN] shutdown signal received. Server exiting gracefully.")
	s.ops.Info().Msg("shutdown complete")
	return nil
}

func (s *Supervisor) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				s.ops.Warn().Err(err).Msg("accept failed, retrying")
				continue
			}
		}

		s.ops.Info().Str("remote", conn.RemoteAddr().String()).Msg("client connected")
		go s.onConnect(ctx, conn)
	}
}

// onConnect runs the registration handshake and, once it succeeds,
// the session's multiplexer. Every branch that rejects a handshake
// attempt re-prompts by looping rather than closing the connection —
// spec.md §9 accepts unbounded retry here, matching the original's
// continue-and-reprompt behavior.
func (s *Supervisor) onConnect(ctx context.Context, conn net.Conn) {
	session := s.handshake(conn)
	if session == nil {
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Done()

	mp := multiplex.New(session, s.dir, s.registry, s.queue, s.log, s.ops)
	mp.Run(ctx)
}

func (s *Supervisor) handshake(conn net.Conn) *core.Session {
	buf := make([]byte, core.MaxUsernameLen+1)
	for {
		n, err := conn.Read(buf)
		if err != nil || n == 0 {
			conn.Close()
			return nil
		}

		name := trimNewline(buf[:n])

		if !core.ValidUsername(name) {
			conn.Write([]byte(protocol.MsgUsernameInvalid))
			continue
		}

		session := core.NewSession(name, conn, utils.NewID())
		if err := s.dir.Register(name, session); err != nil {
			if err == core.ErrNameTaken {
				conn.Write([]byte(protocol.MsgUsernameTaken))
			} else {
				conn.Write([]byte(protocol.MsgServerFull))
			}
			continue
		}

		conn.Write([]byte(protocol.MsgUsernameOK))
		s.log.Write(fmt.Sprintf("[OK] Username: %s accepted.", name))
		return session
	}
}

// shutdown implements spec.md §4.8's shutdown protocol steps 1-3:
// close the listener (unblocking Accept), enqueue the upload pool's
// terminator items, then for every live session write the goodbye
// line directly to its transport and close both its transport and its
// notify channel. Closing these explicitly (rather than just sending
// the goodbye) is what unblocks each multiplexer's readLoop/writeLoop
// pair so it can run teardown and return. It does not itself join
// anything; ListenAndServe's s.pool.Wait() and s.sessions.Wait() do
// that (steps 4-5) once this returns.
func (s *Supervisor) shutdown() {
	_ = s.listener.Close()
	s.pool.RequestStop()

	for _, session := range s.dir.Snapshot() {
		_, _ = session.Conn.Write([]byte(protocol.MsgServerShutdown))
		session.Notify.Close()
		_ = session.Conn.Close()
	}
}

// Directory, Registry, and Queue expose the supervisor's domain state
// to the admin HTTP surface (SPEC_FULL.md §4) for read-only stats
// reporting.
func (s *Supervisor) Directory() *core.Directory { return s.dir }
func (s *Supervisor) Registry() *core.Registry   { return s.registry }
func (s *Supervisor) Queue() *core.UploadQueue   { return s.queue }

func trimNewline(b []byte) string {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return string(b)
}
