package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/assistant"
)

type AssistantRepository struct {
	db *sql.DB
}

func NewAssistantRepository(db *sql.DB) *AssistantRepository {
	return &AssistantRepository{db: db}
}

// Save inserts a reply record
func (r *AssistantRepository) Save(ctx context.Context, a *domain.Reply) error {
	const q = `
INSERT INTO assistant_replies
  (id, scan_id, question, answer, created_at)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  scan_id=VALUES(scan_id), question=VALUES(question), answer=VALUES(answer);
`
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, a.ID, a.ScanID, a.Question, a.Answer, createdAt)
	return err
}

// Paginate returns a page of replies ordered by created_at desc
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
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReplies(rows)
}

// ListByScan returns replies tied to one scan, newest first
func (r *AssistantRepository) ListByScan(ctx context.Context, scanID string, limit int) ([]*domain.Reply, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, scan_id, question, answer, created_at
FROM assistant_replies
WHERE scan_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
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
