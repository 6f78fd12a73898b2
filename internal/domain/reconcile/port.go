package reconcile

import "context"

// Repository port for persisting and listing reconciliation entries
type Repository interface {
	Save(ctx context.Context, e *Entry) error
	ListByScan(ctx context.Context, scanID string, limit int) ([]*Entry, error)
}
