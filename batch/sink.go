package batch

import (
	"context"
	"fmt"

	"lotcheck/logger"
)

// Sink receives every successfully completed batch.
type Sink interface {
	Publish(ctx context.Context, r *Report) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r *Report) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, r *Report) error { return f(ctx, r) }

// NamedSink pairs a sink with the name used in logs.
type NamedSink struct {
	Name string
	Sink Sink
}

// Sinks publishes to each sink in turn. A failing sink is logged and does not
// stop the others.
type Sinks struct {
	sinks []NamedSink
	log   logger.Logger
}

// NewSinks builds a fan-out over sinks.
func NewSinks(log logger.Logger, sinks ...NamedSink) *Sinks {
	return &Sinks{sinks: sinks, log: log}
}

// Len reports how many sinks are configured.
func (s *Sinks) Len() int {
	if s == nil {
		return 0
	}
	return len(s.sinks)
}

// Publish implements Sink. It returns a *PublishError if any sink failed.
func (s *Sinks) Publish(ctx context.Context, r *Report) error {
	if s == nil {
		return nil
	}
	var failed int
	for _, ns := range s.sinks {
		if err := ns.Sink.Publish(ctx, r); err != nil {
			failed++
			s.log.Error("Report sink failed",
				logger.String("sink", ns.Name),
				logger.String("batch_id", r.ID.String()),
				logger.Error(err),
			)
			continue
		}
		s.log.Debug("Report published", logger.String("sink", ns.Name), logger.String("batch_id", r.ID.String()))
	}
	if failed > 0 {
		return &PublishError{Failed: failed, Total: len(s.sinks)}
	}
	return nil
}

// PublishError reports partial sink failure.
type PublishError struct {
	Failed int
	Total  int
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("report sinks failed: %d of %d", e.Failed, e.Total)
}
