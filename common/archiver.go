package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"lotcheck/batch"
	"lotcheck/logger"
)

// objectPutter is the part of S3 the archiver uses.
type objectPutter interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
}

// ReportArchiver stores each completed batch report as a JSON object.
type ReportArchiver struct {
	store  objectPutter
	bucket string
	prefix string
	log    logger.Logger
}

// NewReportArchiver writes reports under prefix in bucket.
// prefix is used as given; pass "" or a value ending in "/".
func NewReportArchiver(store objectPutter, bucket, prefix string, log logger.Logger) *ReportArchiver {
	return &ReportArchiver{store: store, bucket: bucket, prefix: prefix, log: log}
}

// Key returns the object key for report id.
func (a *ReportArchiver) Key(r *batch.Report) string {
	return a.prefix + "reports/" + r.ID.String() + ".json"
}

// Publish implements batch.Sink.
func (a *ReportArchiver) Publish(ctx context.Context, r *batch.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	key := a.Key(r)
	if err := a.store.Put(ctx, a.bucket, key, bytes.NewReader(body), "application/json"); err != nil {
		return fmt.Errorf("upload report %s: %w", key, err)
	}

	a.log.Info("Report archived",
		logger.String("bucket", a.bucket),
		logger.String("key", key),
		logger.Int("bytes", len(body)),
	)
	return nil
}
