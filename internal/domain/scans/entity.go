package scans

import (
	"time"
)

// ID tipe untuk Scan
type ScanID string

// TumorType enum, closed set produced by the classification model
type TumorType string

const (
	TumorMeningioma TumorType = "Meningioma"
	TumorGlioma     TumorType = "Glioma"
	TumorPituitary  TumorType = "Pituitary"
	TumorNone       TumorType = "NoTumor"
)

// ValidTumorTypes allowed set, used by validation and distribution keys
var ValidTumorTypes = map[TumorType]bool{
	TumorMeningioma: true,
	TumorGlioma:     true,
	TumorPituitary:  true,
	TumorNone:       true,
}

// HasTumor derived: every class except NoTumor counts as a detection
func (t TumorType) HasTumor() bool { return t != TumorNone }

// Aggregate Root: Scan
// Append-only: a row is never mutated after Create. Patient counters and
// analytics buckets are derived from committed Scan rows.
type Scan struct {
	ID             ScanID    `json:"id"`
	UserID         string    `json:"user_id"`
	PatientID      string    `json:"patient_id,omitempty"`
	TumorType      TumorType `json:"tumor_type"`
	Confidence     float64   `json:"confidence"`
	HasTumor       bool      `json:"has_tumor"`
	ProcessingTime float64   `json:"processing_time"` // seconds
	ImageURL       string    `json:"image_url"`
	MaskURL        string    `json:"mask_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
