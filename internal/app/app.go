package app

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/adminhttp"
	"github.com/vovakirdan/chatrelay/internal/chatlog"
	"github.com/vovakirdan/chatrelay/internal/config"
	tcpserver "github.com/vovakirdan/chatrelay/internal/transport/tcp"
)

// App wires together the domain state, the TCP supervisor, and the
// admin HTTP surface.
type App struct {
	supervisor      *tcpserver.Supervisor
	admin           *stdhttp.Server
	log             *chatlog.Sink
	shutdownTimeout time.Duration
	ops             *zerolog.Logger
}

// New constructs the application from configuration. The chat log
// sink is opened here so a failure to create the log directory is
// reported once at startup; the app continues with a no-op sink
// rather than failing to start, matching the original's
// perror-and-continue behavior in log_init.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	sink, err := chatlog.Open(cfg.LogDir, time.Now())
	if err != nil {
		logger.Warn().Err(err).Str("dir", cfg.LogDir).Msg("chat log unavailable, continuing without it")
	}

	sup := tcpserver.New(cfg.Addr, sink, logger)

	var admin *stdhttp.Server
	if cfg.AdminAddr != "" {
		admin = adminhttp.NewServer(cfg.AdminAddr, sup.Directory(), sup.Registry(), sup.Queue(), logger)
	}

	return &App{
		supervisor:      sup,
		admin:           admin,
		log:             sink,
		shutdownTimeout: cfg.ShutdownTimeout,
		ops:             logger,
	}, nil
}

// Run blocks until ctx is cancelled or either server fails, then
// drains both. The configured shutdown timeout bounds the admin
// server's shutdown only; the wait for the supervisor to drain has no
// time limit. A failure of
// either server cancels the internal context so the other tears down
// too, rather than leaving one side running unsupervised.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	supervisorErr := make(chan error, 1)
	adminErr := make(chan error, 1)

	go func() {
		err := a.supervisor.ListenAndServe(ctx)
		cancel()
		supervisorErr <- err
	}()

	if a.admin != nil {
		go func() {
			err := a.admin.ListenAndServe()
			if err == stdhttp.ErrServerClosed {
				err = nil
			}
			cancel()
			adminErr <- err
		}()
	} else {
		a.ops.Info().Msg("admin HTTP surface disabled (empty admin address)")
	}

	<-ctx.Done()
	supErr := <-supervisorErr
	a.shutdownAdmin()
	var admErr error
	if a.admin != nil {
		admErr = <-adminErr
	}
	a.cleanup()

	if supErr != nil {
		return supErr
	}
	return admErr
}

func (a *App) shutdownAdmin() {
	if a.admin == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	if err := a.admin.Shutdown(shutdownCtx); err != nil {
		a.ops.Warn().Err(err).Msg("admin server shutdown error")
	}
}

// cleanup writes the final shutdown line to the chat log (spec.md
// §4.8 step 6) and closes it.
func (a *App) cleanup() {
	if a.log == nil {
		return
	}
	a.log.Write("[SHUTDOWN] shutdown signal received. Server exiting gracefully.")
	if err := a.log.Close(); err != nil {
		a.ops.Warn().Err(err).Msg("failed to close chat log")
	}
}
