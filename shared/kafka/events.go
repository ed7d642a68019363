package kafka

import (
	"context"
	"time"

	"lotcheck/batch"
	"lotcheck/types"
)

// BatchCompleted is the event published for every finished batch.
// Per-link results are left out; the archived report carries them.
type BatchCompleted struct {
	BatchID         string               `json:"batch_id"`
	Mode            string               `json:"mode"`
	StartedAt       time.Time            `json:"started_at"`
	FinishedAt      time.Time            `json:"finished_at"`
	Total           int                  `json:"total"`
	TotalGreenPrice int64                `json:"total_green_price"`
	Counts          map[types.Symbol]int `json:"counts"`
}

// NewBatchCompleted summarizes r.
func NewBatchCompleted(r *batch.Report) BatchCompleted {
	return BatchCompleted{
		BatchID:         r.ID.String(),
		Mode:            string(r.Mode),
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
		Total:           r.Total,
		TotalGreenPrice: r.TotalGreenPrice,
		Counts:          r.Counts,
	}
}

// Publish implements batch.Sink.
func (p *Producer) Publish(ctx context.Context, r *batch.Report) error {
	return p.PublishJSON(ctx, r.ID.String(), NewBatchCompleted(r))
}
