// Package memory provides map-backed implementations of the persistence
// ports with the same semantics as the SQL variants. Used by the test suite
// and by the "memory" database driver for local development.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

type ScanRepository struct {
	mu    sync.RWMutex
	scans map[domain.ScanID]*domain.Scan
	users *UserRepository
}

// NewScanRepository; users may be nil, in which case every user id resolves
// (convenient for tests that don't model users).
func NewScanRepository(users *UserRepository) *ScanRepository {
	return &ScanRepository{scans: map[domain.ScanID]*domain.Scan{}, users: users}
}

func (r *ScanRepository) Create(ctx context.Context, s *domain.Scan) (*domain.Scan, error) {
	if r.users != nil {
		ok, err := r.users.Exists(ctx, s.UserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, s.UserID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.scans[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *ScanRepository) Get(ctx context.Context, id domain.ScanID) (*domain.Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scans[id]
	if !ok {
		return nil, fmt.Errorf("%w: scan %s", domain.ErrNotFound, id)
	}
	cp := *s
	return &cp, nil
}

func (r *ScanRepository) ListByRange(ctx context.Context, start, end time.Time) ([]*domain.Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Scan
	for _, s := range r.scans {
		if s.CreatedAt.Before(start) || s.CreatedAt.After(end) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sortAscending(out)
	return out, nil
}

func (r *ScanRepository) Latest(ctx context.Context, limit int) ([]*domain.Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Scan, 0, len(r.scans))
	for _, s := range r.scans {
		cp := *s
		out = append(out, &cp)
	}
	sortAscending(out)
	// newest first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ScanRepository) Paginate(ctx context.Context, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	all, err := r.Latest(ctx, len(r.scans)+1)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	total := int64(len(all))
	offset := (page - 1) * pageSize
	if offset > len(all) {
		offset = len(all)
	}
	endIdx := offset + pageSize
	if endIdx > len(all) {
		endIdx = len(all)
	}
	return domain.PaginatedResult{
		Data:       all[offset:endIdx],
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

func (r *ScanRepository) CountByPatient(ctx context.Context, patientID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, s := range r.scans {
		if s.PatientID == patientID {
			n++
		}
	}
	return n, nil
}

func sortAscending(scans []*domain.Scan) {
	sort.Slice(scans, func(i, j int) bool {
		if scans[i].CreatedAt.Equal(scans[j].CreatedAt) {
			return scans[i].ID < scans[j].ID
		}
		return scans[i].CreatedAt.Before(scans[j].CreatedAt)
	})
}
