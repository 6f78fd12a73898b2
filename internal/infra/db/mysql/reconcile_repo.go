package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/reconcile"
)

type ReconcileRepository struct {
	db *sql.DB
}

func NewReconcileRepository(db *sql.DB) *ReconcileRepository { return &ReconcileRepository{db: db} }

func (r *ReconcileRepository) Save(ctx context.Context, e *domain.Entry) error {
	const q = `
INSERT INTO reconciliation_entries
  (scan_id, target, message, details_json, created_at)
VALUES (?,?,?,?,?)
`
	scan := stringOrDash(e.ScanID)
	target := stringOrDash(e.Target)
	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	details := e.DetailsJSON
	if strings.TrimSpace(details) == "" {
		details = "{}"
	} else {
		// ensure valid json; if invalid, wrap as string field
		var js any
		if json.Unmarshal([]byte(details), &js) != nil {
			b, _ := json.Marshal(map[string]string{"raw": details})
			details = string(b)
		}
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, scan, target, msg, details, created)
	return err
}

func (r *ReconcileRepository) ListByScan(ctx context.Context, scanID string, limit int) ([]*domain.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, scan_id, target, message, details_json, created_at
FROM reconciliation_entries
WHERE scan_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, scanID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.ScanID, &e.Target, &e.Message, &e.DetailsJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
