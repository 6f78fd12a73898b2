package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/assistant"
)

type AssistantRepository struct{ db *sql.DB }

func NewAssistantRepository(db *sql.DB) *AssistantRepository {
	return &AssistantRepository{db: db}
}

func (r *AssistantRepository) Save(ctx context.Context, a *domain.Reply) error {
	const q = `
INSERT INTO assistant_replies
  (id, scan_id, question, answer, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
  scan_id = EXCLUDED.scan_id, question = EXCLUDED.question, answer = EXCLUDED.answer;`
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, a.ID, a.ScanID, a.Question, a.Answer, createdAt)
	return err
}

func (r *AssistantRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Reply, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, scan_id, question, answer, created_at
FROM assistant_replies
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2;`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReplies(rows)
}

func (r *AssistantRepository) ListByScan(ctx context.Context, scanID string, limit int) ([]*domain.Reply, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, scan_id, question, answer, created_at
FROM assistant_replies
WHERE scan_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, scanID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReplies(rows)
}

func collectReplies(rows *sql.Rows) ([]*domain.Reply, error) {
	var out []*domain.Reply
	for rows.Next() {
		var a domain.Reply
		if err := rows.Scan(&a.ID, &a.ScanID, &a.Question, &a.Answer, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
