package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/analytics"
	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

// AnalyticsRepository maintains the per-day buckets. RecordScan serializes
// concurrent updates to the same date via a row lock: two requests both
// reading total_scans=5 before either writes 6 would silently corrupt the
// running means, so the read-modify-write happens under SELECT ... FOR UPDATE
// inside one transaction.
type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// RecordScan folds one committed scan into its day bucket, creating the
// bucket lazily on the first scan of the day.
func (r *AnalyticsRepository) RecordScan(ctx context.Context, s *domain.Scan) error {
	date := string(analytics.DateKeyFor(s.CreatedAt))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// lazy create; no-op when the row already exists
	const ins = `
INSERT INTO analytics_buckets
  (date, total_scans, tumor_detections, avg_confidence, avg_processing_time, tumor_distribution, accuracy)
VALUES (?,0,0,0,0,'{}',0)
ON DUPLICATE KEY UPDATE date=date;
`
	if _, err := tx.ExecContext(ctx, ins, date); err != nil {
		return err
	}

	const sel = `
SELECT date, total_scans, tumor_detections, avg_confidence, avg_processing_time, tumor_distribution, accuracy
FROM analytics_buckets
WHERE date=? FOR UPDATE;
`
	b, err := scanBucket(tx.QueryRowContext(ctx, sel, date))
	if err != nil {
		return err
	}

	b.Record(s)

	dist, err := json.Marshal(b.TumorDistribution)
	if err != nil {
		return err
	}
	const upd = `
UPDATE analytics_buckets
SET total_scans=?, tumor_detections=?, avg_confidence=?, avg_processing_time=?,
    tumor_distribution=?, accuracy=?
WHERE date=?;
`
	if _, err := tx.ExecContext(ctx, upd,
		b.TotalScans, b.TumorDetections, b.AvgConfidence, b.AvgProcessingTime,
		string(dist), b.Accuracy, date,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// GetRange reads committed buckets, ascending by date. Never recomputes
// from scan rows.
func (r *AnalyticsRepository) GetRange(ctx context.Context, start, end time.Time) ([]*analytics.Bucket, error) {
	const q = `
SELECT date, total_scans, tumor_detections, avg_confidence, avg_processing_time, tumor_distribution, accuracy
FROM analytics_buckets
WHERE date >= ? AND date <= ?
ORDER BY date ASC;
`
	rows, err := r.db.QueryContext(ctx, q,
		string(analytics.DateKeyFor(start)), string(analytics.DateKeyFor(end)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*analytics.Bucket
	for rows.Next() {
		b, err := scanBucket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBucket(row rowScanner) (*analytics.Bucket, error) {
	var b analytics.Bucket
	var dist string
	if err := row.Scan(
		&b.Date, &b.TotalScans, &b.TumorDetections, &b.AvgConfidence,
		&b.AvgProcessingTime, &dist, &b.Accuracy,
	); err != nil {
		return nil, err
	}
	b.TumorDistribution = analytics.Distribution{}
	if dist != "" {
		if err := json.Unmarshal([]byte(dist), &b.TumorDistribution); err != nil {
			return nil, fmt.Errorf("decoding tumor_distribution for %s: %w", b.Date, err)
		}
	}
	return &b, nil
}
