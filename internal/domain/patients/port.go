package patients

import "context"

// Repository port for patient persistence.
// IncrementScanCount must serialize the read-modify-write per patient id
// (row lock or per-key mutex); it is the only mutation after creation
// besides profile updates.
type Repository interface {
	Create(ctx context.Context, p *Patient) (*Patient, error)
	Get(ctx context.Context, id PatientID) (*Patient, error)
	List(ctx context.Context, limit int) ([]*Patient, error)
	IncrementScanCount(ctx context.Context, id PatientID) error
}
