package assistant

import "context"

// ScanContext is what the assistant is allowed to know about a scan.
type ScanContext struct {
	TumorType  string
	Confidence float64
	HasTumor   bool
}

// Client port (interface untuk chat provider)
type Client interface {
	Chat(ctx context.Context, message string, scan *ScanContext) (string, error)
}

// Repository port for persisting and querying replies
type Repository interface {
	Save(ctx context.Context, r *Reply) error
	Paginate(ctx context.Context, page, pageSize int) ([]*Reply, error)
	ListByScan(ctx context.Context, scanID string, limit int) ([]*Reply, error)
}
