package reconcile

import "time"

// Entry records an aggregation-stage failure that happened after the scan
// row was already committed. The scan row stays authoritative; a maintenance
// job replays entries to recompute the drifted counter or bucket.
type Entry struct {
	ID          int64     `json:"id"`
	ScanID      string    `json:"scan_id"`
	Target      string    `json:"target"` // patient_counter | analytics
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}

const (
	TargetPatientCounter = "patient_counter"
	TargetAnalytics      = "analytics"
)
