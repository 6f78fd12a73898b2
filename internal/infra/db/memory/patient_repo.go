package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/patients"
	scans "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

type PatientRepository struct {
	mu       sync.Mutex
	patients map[domain.PatientID]*domain.Patient
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{patients: map[domain.PatientID]*domain.Patient{}}
}

func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) (*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.ScanCount = 0
	r.patients[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *PatientRepository) Get(ctx context.Context, id domain.PatientID) (*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, fmt.Errorf("%w: patient %s", scans.ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (r *PatientRepository) List(ctx context.Context, limit int) ([]*domain.Patient, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// IncrementScanCount serializes the read-modify-write under the repository
// mutex, matching the SQL variant's row-level atomicity.
func (r *PatientRepository) IncrementScanCount(ctx context.Context, id domain.PatientID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return fmt.Errorf("%w: patient %s", scans.ErrNotFound, id)
	}
	p.ScanCount++
	return nil
}
