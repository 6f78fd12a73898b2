package scans

import "time"
import "context"

// Repository port (interface untuk persistence)
// Create is the sole commit point for a scan's existence; it must reject
// scans whose user_id does not resolve (ErrNotFound).
type Repository interface {
	Create(ctx context.Context, s *Scan) (*Scan, error)
	Get(ctx context.Context, id ScanID) (*Scan, error)
	ListByRange(ctx context.Context, start, end time.Time) ([]*Scan, error)
	Latest(ctx context.Context, limit int) ([]*Scan, error)

	// tambahan paginate
	Paginate(ctx context.Context, page, pageSize int) (PaginatedResult, error)
	CountByPatient(ctx context.Context, patientID string) (int64, error)
}

// ArtifactStore port (interface untuk penyimpanan artefak)
// Store must generate a globally unique key per call; a failed upload leaves
// no partial object behind.
type ArtifactStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
}
