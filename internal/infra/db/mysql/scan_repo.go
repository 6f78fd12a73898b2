package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

type ScanRepository struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// Create inserts one scan row. Scans are append-only: there is no upsert and
// no update path. The owning user must resolve first; this is the sole
// commit point for the scan's existence.
func (r *ScanRepository) Create(ctx context.Context, s *domain.Scan) (*domain.Scan, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id=?)`, s.UserID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, s.UserID)
	}

	const q = `
INSERT INTO scans
(id, user_id, patient_id, tumor_type, confidence, has_tumor,
 processing_time, image_url, mask_url, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?);
`
	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	patientID := sql.NullString{String: s.PatientID, Valid: s.PatientID != ""}

	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.UserID, patientID, s.TumorType, s.Confidence, s.HasTumor,
		s.ProcessingTime, s.ImageURL, s.MaskURL, created,
	)
	if err != nil {
		return nil, err
	}

	out := *s
	out.CreatedAt = created
	return &out, nil
}

// Get by ID
func (r *ScanRepository) Get(ctx context.Context, id domain.ScanID) (*domain.Scan, error) {
	const q = `
SELECT id, user_id, patient_id, tumor_type, confidence, has_tumor,
       processing_time, image_url, mask_url, created_at
FROM scans
WHERE id=? LIMIT 1;
`
	s, err := scanRow(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: scan %s", domain.ErrNotFound, id)
	}
	return s, err
}

// ListByRange returns scans created inside [start, end], ascending by time
func (r *ScanRepository) ListByRange(ctx context.Context, start, end time.Time) ([]*domain.Scan, error) {
	const q = `
SELECT id, user_id, patient_id, tumor_type, confidence, has_tumor,
       processing_time, image_url, mask_url, created_at
FROM scans
WHERE created_at >= ? AND created_at <= ?
ORDER BY created_at ASC, id ASC;
`
	rows, err := r.db.QueryContext(ctx, q, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectScans(rows)
}

// Latest scans, newest first
func (r *ScanRepository) Latest(ctx context.Context, limit int) ([]*domain.Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, patient_id, tumor_type, confidence, has_tumor,
       processing_time, image_url, mask_url, created_at
FROM scans
ORDER BY created_at DESC, id DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectScans(rows)
}

// Paginate with offset + limit (classic pagination)
func (r *ScanRepository) Paginate(ctx context.Context, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, user_id, patient_id, tumor_type, confidence, has_tumor,
       processing_time, image_url, mask_url, created_at
FROM scans
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	scans, err := collectScans(rows)
	if err != nil {
		return domain.PaginatedResult{}, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans`).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       scans,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// CountByPatient counts committed scan rows referencing a patient; used by
// the reconciliation job to recompute a drifted scan_count.
func (r *ScanRepository) CountByPatient(ctx context.Context, patientID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scans WHERE patient_id=?`, patientID).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*domain.Scan, error) {
	var s domain.Scan
	var patientID sql.NullString
	if err := row.Scan(
		&s.ID, &s.UserID, &patientID, &s.TumorType, &s.Confidence, &s.HasTumor,
		&s.ProcessingTime, &s.ImageURL, &s.MaskURL, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	s.PatientID = patientID.String
	return &s, nil
}

func collectScans(rows *sql.Rows) ([]*domain.Scan, error) {
	var out []*domain.Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
