package analytics

import (
	"math"
	"testing"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDateKeyFor(t *testing.T) {
	// 23:30 in UTC-5 is the next day in UTC
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2025, 3, 10, 23, 30, 0, 0, loc)
	if got := DateKeyFor(ts); got != "2025-03-11" {
		t.Fatalf("DateKeyFor = %s, want 2025-03-11", got)
	}

	utc := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := DateKeyFor(utc); got != "2025-03-10" {
		t.Fatalf("DateKeyFor = %s, want 2025-03-10", got)
	}
}

func TestBucketRecord(t *testing.T) {
	b := NewBucket("2025-03-10")

	b.Record(&domain.Scan{TumorType: domain.TumorGlioma, Confidence: 0.9, ProcessingTime: 2.0, HasTumor: true})
	b.Record(&domain.Scan{TumorType: domain.TumorNone, Confidence: 0.7, ProcessingTime: 1.0, HasTumor: false})

	if b.TotalScans != 2 {
		t.Fatalf("TotalScans = %d, want 2", b.TotalScans)
	}
	if b.TumorDetections != 1 {
		t.Fatalf("TumorDetections = %d, want 1", b.TumorDetections)
	}
	if !almostEqual(b.AvgConfidence, 0.8) {
		t.Fatalf("AvgConfidence = %v, want 0.8", b.AvgConfidence)
	}
	if !almostEqual(b.AvgProcessingTime, 1.5) {
		t.Fatalf("AvgProcessingTime = %v, want 1.5", b.AvgProcessingTime)
	}
	if b.Accuracy != b.AvgConfidence {
		t.Fatalf("Accuracy = %v, want AvgConfidence %v", b.Accuracy, b.AvgConfidence)
	}
	if b.TumorDistribution["Glioma"] != 1 || b.TumorDistribution["NoTumor"] != 1 {
		t.Fatalf("TumorDistribution = %v", b.TumorDistribution)
	}
}

func TestBucketRecordOrderIndependent(t *testing.T) {
	scans := []*domain.Scan{
		{TumorType: domain.TumorGlioma, Confidence: 0.91, ProcessingTime: 0.5, HasTumor: true},
		{TumorType: domain.TumorMeningioma, Confidence: 0.42, ProcessingTime: 2.5, HasTumor: true},
		{TumorType: domain.TumorNone, Confidence: 0.88, ProcessingTime: 1.25, HasTumor: false},
		{TumorType: domain.TumorPituitary, Confidence: 0.67, ProcessingTime: 3.0, HasTumor: true},
	}

	forward := NewBucket("2025-03-10")
	for _, s := range scans {
		forward.Record(s)
	}
	backward := NewBucket("2025-03-10")
	for i := len(scans) - 1; i >= 0; i-- {
		backward.Record(scans[i])
	}

	if !almostEqual(forward.AvgConfidence, backward.AvgConfidence) {
		t.Fatalf("order dependent mean: %v vs %v", forward.AvgConfidence, backward.AvgConfidence)
	}

	// running mean must equal the true arithmetic mean
	var sum float64
	for _, s := range scans {
		sum += s.Confidence
	}
	want := sum / float64(len(scans))
	if !almostEqual(forward.AvgConfidence, want) {
		t.Fatalf("AvgConfidence = %v, want %v", forward.AvgConfidence, want)
	}
}
