package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/analytics"
	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

// AnalyticsRepository keeps one bucket per day behind a mutex. Holding the
// lock across the whole read-modify-write is what keeps the running means
// exact under concurrent RecordScan calls.
type AnalyticsRepository struct {
	mu      sync.Mutex
	buckets map[analytics.DateKey]*analytics.Bucket
}

func NewAnalyticsRepository() *AnalyticsRepository {
	return &AnalyticsRepository{buckets: map[analytics.DateKey]*analytics.Bucket{}}
}

func (r *AnalyticsRepository) RecordScan(ctx context.Context, s *domain.Scan) error {
	key := analytics.DateKeyFor(s.CreatedAt)

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		b = analytics.NewBucket(key)
		r.buckets[key] = b
	}
	b.Record(s)
	return nil
}

func (r *AnalyticsRepository) GetRange(ctx context.Context, start, end time.Time) ([]*analytics.Bucket, error) {
	startKey := analytics.DateKeyFor(start)
	endKey := analytics.DateKeyFor(end)

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*analytics.Bucket
	for key, b := range r.buckets {
		if key < startKey || key > endKey {
			continue
		}
		// copy so callers never alias the live bucket
		cp := *b
		cp.TumorDistribution = analytics.Distribution{}
		for k, v := range b.TumorDistribution {
			cp.TumorDistribution[k] = v
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
