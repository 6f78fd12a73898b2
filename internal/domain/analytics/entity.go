package analytics

import (
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

// DateKey is the UTC calendar date a bucket aggregates, formatted 2006-01-02.
type DateKey string

// DateKeyFor resolves the bucket key for a scan timestamp.
func DateKeyFor(t time.Time) DateKey {
	return DateKey(t.UTC().Format("2006-01-02"))
}

// Distribution sparse mapping tumor type -> count; absent key means zero
type Distribution map[string]int

// Bucket is the per-day aggregate record. One mutable bucket per calendar
// day; buckets are created lazily on the first scan of a day and never
// deleted. avgConfidence and avgProcessingTime are running means and must
// always equal the true arithmetic mean of every scan recorded into the
// bucket, so the whole update below has to be applied as one atomic unit
// per bucket (row lock, transaction, or per-key mutex).
type Bucket struct {
	Date              DateKey      `json:"date"`
	TotalScans        int          `json:"total_scans"`
	TumorDetections   int          `json:"tumor_detections"`
	AvgConfidence     float64      `json:"avg_confidence"`
	AvgProcessingTime float64      `json:"avg_processing_time"`
	TumorDistribution Distribution `json:"tumor_distribution"`
	// Accuracy is kept equal to AvgConfidence. The source system used
	// confidence as a proxy for accuracy; true accuracy would need
	// ground-truth labels that are not modeled here.
	Accuracy float64 `json:"accuracy"`
}

// NewBucket empty bucket for a day
func NewBucket(date DateKey) *Bucket {
	return &Bucket{Date: date, TumorDistribution: Distribution{}}
}

// Record folds one scan into the bucket using the online mean update:
//
//	avg' = (avg*n + x) / (n+1)
//
// Exact for any order of application. Caller must hold the bucket's
// serialization (see Aggregator port).
func (b *Bucket) Record(s *domain.Scan) {
	n := float64(b.TotalScans)
	b.TotalScans++
	b.AvgConfidence = (b.AvgConfidence*n + s.Confidence) / float64(b.TotalScans)
	b.AvgProcessingTime = (b.AvgProcessingTime*n + s.ProcessingTime) / float64(b.TotalScans)
	if s.HasTumor {
		b.TumorDetections++
	}
	if b.TumorDistribution == nil {
		b.TumorDistribution = Distribution{}
	}
	b.TumorDistribution[string(s.TumorType)]++
	b.Accuracy = b.AvgConfidence
}
