package analytics

import (
	"context"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

// Aggregator port. RecordScan resolves the bucket for the scan's calendar
// date, creating it when absent, and applies Bucket.Record atomically with
// respect to concurrent RecordScan calls on the same date. GetRange is a
// plain read over committed buckets and must never recompute from scan rows.
type Aggregator interface {
	RecordScan(ctx context.Context, s *domain.Scan) error
	GetRange(ctx context.Context, start, end time.Time) ([]*Bucket, error)
}
