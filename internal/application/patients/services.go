package patients

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/patients"
	scans "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

// Service implements patient use-cases. Scan counts are owned by the
// ingestion pipeline; this service only handles the profile side.
type Service struct {
	Repo domain.Repository
}

// Command untuk register patient
type RegisterCommand struct {
	FirstName string
	LastName  string
	Age       int
	Status    string
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*domain.Patient, error) {
	if cmd.FirstName == "" || cmd.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", scans.ErrInvalidInput)
	}
	if cmd.Age < 0 || cmd.Age > 150 {
		return nil, fmt.Errorf("%w: age out of range", scans.ErrInvalidInput)
	}
	status := domain.Status(cmd.Status)
	if status == "" {
		status = domain.StatusActive
	}
	switch status {
	case domain.StatusActive, domain.StatusMonitoring, domain.StatusDischarged:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", scans.ErrInvalidInput, cmd.Status)
	}

	p := &domain.Patient{
		ID:        domain.PatientID(uuid.New().String()),
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Age:       cmd.Age,
		Status:    status,
	}
	return s.Repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id domain.PatientID) (*domain.Patient, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]*domain.Patient, error) {
	return s.Repo.List(ctx, limit)
}
