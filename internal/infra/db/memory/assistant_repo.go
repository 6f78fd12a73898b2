package memory

import (
	"context"
	"sync"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/assistant"
)

type AssistantRepository struct {
	mu      sync.Mutex
	replies []*domain.Reply
}

func NewAssistantRepository() *AssistantRepository { return &AssistantRepository{} }

func (r *AssistantRepository) Save(ctx context.Context, a *domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.replies = append(r.replies, &cp)
	return nil
}

func (r *AssistantRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Reply, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// newest first
	var out []*domain.Reply
	skip := (page - 1) * pageSize
	for i := len(r.replies) - 1; i >= 0; i-- {
		if skip > 0 {
			skip--
			continue
		}
		if len(out) == pageSize {
			break
		}
		cp := *r.replies[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *AssistantRepository) ListByScan(ctx context.Context, scanID string, limit int) ([]*domain.Reply, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Reply
	for i := len(r.replies) - 1; i >= 0 && len(out) < limit; i-- {
		if r.replies[i].ScanID == scanID {
			cp := *r.replies[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
