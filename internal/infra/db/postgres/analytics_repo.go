package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/analytics"
	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

// AnalyticsRepository: same contract as the mysql variant; per-date row lock
// keeps the running-mean update atomic per bucket.
type AnalyticsRepository struct{ db *sql.DB }

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) RecordScan(ctx context.Context, s *domain.Scan) error {
	date := string(analytics.DateKeyFor(s.CreatedAt))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const ins = `
INSERT INTO analytics_buckets
  (date, total_scans, tumor_detections, avg_confidence, avg_processing_time, tumor_distribution, accuracy)
VALUES ($1,0,0,0,0,'{}',0)
ON CONFLICT (date) DO NOTHING;`
	if _, err := tx.ExecContext(ctx, ins, date); err != nil {
		return err
	}

	const sel = `
SELECT date, total_scans, tumor_detections, avg_confidence, avg_processing_time, tumor_distribution, accuracy
FROM analytics_buckets
WHERE date=$1 FOR UPDATE;`
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
SET total_scans=$1, tumor_detections=$2, avg_confidence=$3, avg_processing_time=$4,
    tumor_distribution=$5, accuracy=$6
WHERE date=$7;`
	if _, err := tx.ExecContext(ctx, upd,
		b.TotalScans, b.TumorDetections, b.AvgConfidence, b.AvgProcessingTime,
		string(dist), b.Accuracy, date,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *AnalyticsRepository) GetRange(ctx context.Context, start, end time.Time) ([]*analytics.Bucket, error) {
	const q = `
SELECT date, total_scans, tumor_detections, avg_confidence, avg_processing_time, tumor_distribution, accuracy
FROM analytics_buckets
WHERE date >= $1 AND date <= $2
ORDER BY date ASC;`
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
