package memory

import (
	"context"
	"sync"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/reconcile"
)

type ReconcileRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries []*domain.Entry
}

func NewReconcileRepository() *ReconcileRepository {
	return &ReconcileRepository{nextID: 1}
}

func (r *ReconcileRepository) Save(ctx context.Context, e *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	cp.ID = r.nextID
	r.nextID++
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *ReconcileRepository) ListByScan(ctx context.Context, scanID string, limit int) ([]*domain.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Entry
	// newest first
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].ScanID == scanID {
			cp := *r.entries[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
