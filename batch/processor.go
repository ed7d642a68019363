// Package batch runs one list of links through lookup and classification,
// producing a progress record per link.
package batch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"

	"lotcheck/logger"
	"lotcheck/market"
	"lotcheck/metrics"
	"lotcheck/pricing"
	"lotcheck/types"
)

const progressMessage = "Processing links"

// Request is one batch of links.
type Request struct {
	Links []string
	Mode  market.Mode
}

// Processor drives the fetcher and classifier over a batch.
// It keeps no per-batch state and may serve concurrent batches.
type Processor struct {
	fetcher market.ItemFetcher
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewProcessor creates a Processor backed by fetcher.
func NewProcessor(fetcher market.ItemFetcher, log logger.Logger, m *metrics.Metrics) *Processor {
	return &Processor{fetcher: fetcher, log: log, metrics: m}
}

// state is the accumulator of a single Run.
type state struct {
	processed  int
	totalGreen int64
	results    []types.ClassifiedResult
}

// Run processes req.Links in order and calls emit once per link, after the
// link's result is known. A failed lookup becomes a removed result and never
// stops the batch. Run returns early with ctx.Err() when ctx is done, or with
// the emit error when emit fails; no record is emitted for the link in flight.
func (p *Processor) Run(ctx context.Context, req Request, emit func(types.BatchProgress) error) (*Report, error) {
	done := p.metrics.BatchStarted()
	defer done()

	mode := req.Mode
	if mode == "" {
		mode = market.ModeDefault
	}

	report := &Report{
		ID:        uuid.New(),
		Mode:      mode,
		StartedAt: time.Now().UTC(),
		Total:     len(req.Links),
	}
	log := p.log.With(
		logger.String("batch_id", report.ID.String()),
		logger.String("mode", string(mode)),
	)
	log.Info("Batch started", logger.Int("links", report.Total))

	st := state{results: make([]types.ClassifiedResult, 0, len(req.Links))}
	for _, link := range req.Links {
		if err := ctx.Err(); err != nil {
			log.Info("Batch canceled", logger.Int("processed", st.processed))
			return nil, err
		}

		res := p.classify(ctx, link, mode)
		if err := ctx.Err(); err != nil {
			log.Info("Batch canceled", logger.Int("processed", st.processed))
			return nil, err
		}

		st.results = append(st.results, res)
		if pricing.CountsTowardTotal(res) {
			st.totalGreen += res.Price
		}
		st.processed++
		p.metrics.ObserveResult(res)

		n := len(st.results)
		progress := types.BatchProgress{
			Message:         progressMessage,
			TotalGreenPrice: st.totalGreen,
			// Later appends must not show through a slice handed out earlier.
			FilteredResults: st.results[:n:n],
			Progress:        fmt.Sprintf("%d of %d", st.processed, report.Total),
		}
		if err := emit(progress); err != nil {
			log.Warn("Batch aborted by consumer", logger.Int("processed", st.processed), logger.Error(err))
			return nil, err
		}
	}

	report.FinishedAt = time.Now().UTC()
	report.TotalGreenPrice = st.totalGreen
	report.Results = st.results
	report.Counts = countSymbols(st.results)

	log.Info("Batch finished",
		logger.Int64("total_green_price", st.totalGreen),
		logger.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// ErrStreamReused is yielded when a Stream sequence is ranged a second time.
var ErrStreamReused = errors.New("batch stream already consumed")

// Stream is the pull form of Run. Each record is yielded with a nil error.
// When the batch stops early because ctx is done, one final pair carries
// the zero record and the error; a sequence that ends without an error
// finished every link. Stopping the range early stops the batch. The
// sequence is not restartable.
func (p *Processor) Stream(ctx context.Context, req Request) iter.Seq2[types.BatchProgress, error] {
	used := false
	return func(yield func(types.BatchProgress, error) bool) {
		if used {
			yield(types.BatchProgress{}, ErrStreamReused)
			return
		}
		used = true

		_, err := p.Run(ctx, req, func(bp types.BatchProgress) error {
			if !yield(bp, nil) {
				return errStopped
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield(types.BatchProgress{}, err)
		}
	}
}

var errStopped = errors.New("consumer stopped")

func (p *Processor) classify(ctx context.Context, link string, mode market.Mode) types.ClassifiedResult {
	id := pricing.ExtractID(link)
	if id == "" {
		p.log.Warn("Link has no item id", logger.String("link", link))
		return pricing.Classify(link, nil)
	}

	snap, err := p.fetcher.FetchItem(ctx, id, mode)
	if err != nil {
		return pricing.Classify(link, nil)
	}
	return pricing.Classify(link, snap)
}
