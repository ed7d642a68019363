// Package api is the HTTP surface of lotcheck.
package api

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"

	"lotcheck/batch"
	"lotcheck/config"
	"lotcheck/logger"
	"lotcheck/metrics"
	"lotcheck/storage"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators injected into the handlers.
type Dependencies struct {
	Users storage.UserStore
	// Database is checked by /api/health. May be nil.
	Database  Pinger
	Processor *batch.Processor
	// Sink receives every completed batch. May be nil.
	Sink     batch.Sink
	Metrics  *metrics.Metrics
	Log      logger.Logger
	MaxLinks int
}

// Server owns the router and the background report publishing.
type Server struct {
	deps    Dependencies
	pending sync.WaitGroup
}

// NewServer creates a Server. MaxLinks falls back to the default when unset.
func NewServer(deps Dependencies) *Server {
	if deps.MaxLinks <= 0 {
		deps.MaxLinks = config.DefaultMaxLinks
	}
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	return &Server{deps: deps}
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		RecoveryMiddleware(s.deps.Log),
		RequestIDMiddleware(s.deps.Log),
		LoggerMiddleware(s.deps.Log),
		CORSMiddleware(),
	)

	s.RegisterUserRoutes(r)
	s.RegisterLinkRoutes(r)
	s.RegisterHealthRoutes(r)
	return r
}

// publish hands r to the sink in the background, detached from the request.
func (s *Server) publish(r *batch.Report) {
	if s.deps.Sink == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), config.SinkTimeout)
		defer cancel()
		// Sinks log their own failures.
		_ = s.deps.Sink.Publish(ctx, r)
	}()
}

// Wait blocks until background publishing finishes or ctx is done.
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
