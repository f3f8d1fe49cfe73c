// Package adminhttp is a small gin-based operator surface additive to
// the raw TCP chat protocol (SPEC_FULL.md §4): a health probe and a
// point-in-time stats snapshot. It never touches chat state beyond
// reading counters off the domain types, and runs on its own
// configurable listen address. Structured the way the teacher's
// transport/http server.go builds its mux, generalized from
// stdhttp.ServeMux to gin's router since gin is already part of the
// dependency stack.
package adminhttp

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/core"
)

// Stats is the JSON shape returned by GET /stats.
type Stats struct {
	Sessions int `json:"sessions"`
	Rooms    int `json:"rooms"`
	Queued   int `json:"uploads_queued"`
}

// NewServer builds the admin HTTP server. dir, registry, and queue are
// read-only from this package's perspective; it never mutates them.
func NewServer(addr string, dir *core.Directory, registry *core.Registry, queue *core.UploadQueue, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(loggerMiddleware(logger), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/stats", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, Stats{
			Sessions: dir.Count(),
			Rooms:    registry.RoomCount(),
			Queued:   queue.Len(),
		})
	})

	return &stdhttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func loggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("admin http request")
	}
}
