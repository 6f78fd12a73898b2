package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/patients"
)

type PatientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// Create inserts a patient row; scan_count starts at zero.
func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) (*domain.Patient, error) {
	const q = `
INSERT INTO patients (id, first_name, last_name, age, status, scan_count, created_at)
VALUES (?,?,?,?,?,0,?);
`
	status := stringOrDash(string(p.Status))
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	if _, err := r.db.ExecContext(ctx, q, p.ID, p.FirstName, p.LastName, p.Age, status, created); err != nil {
		return nil, err
	}
	out := *p
	out.Status = domain.Status(status)
	out.ScanCount = 0
	out.CreatedAt = created
	return &out, nil
}

// Get by ID
func (r *PatientRepository) Get(ctx context.Context, id domain.PatientID) (*domain.Patient, error) {
	const q = `
SELECT id, first_name, last_name, age, status, scan_count, created_at
FROM patients WHERE id=? LIMIT 1;
`
	var p domain.Patient
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Age, &p.Status, &p.ScanCount, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: patient %s", scansNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List patients, newest first
func (r *PatientRepository) List(ctx context.Context, limit int) ([]*domain.Patient, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, first_name, last_name, age, status, scan_count, created_at
FROM patients ORDER BY created_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Patient
	for rows.Next() {
		var p domain.Patient
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Age, &p.Status, &p.ScanCount, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// IncrementScanCount bumps scan_count by one. The single UPDATE is atomic at
// the row level, so concurrent ingestions for the same patient serialize in
// the database without a read-modify-write race.
func (r *PatientRepository) IncrementScanCount(ctx context.Context, id domain.PatientID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE patients SET scan_count = scan_count + 1 WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: patient %s", scansNotFound, id)
	}
	return nil
}
