package patients

import "time"

// PatientID identifier type
type PatientID string

// Status enum
type Status string

const (
	StatusActive     Status = "active"
	StatusMonitoring Status = "monitoring"
	StatusDischarged Status = "discharged"
)

// Patient owns zero or more scans. ScanCount is maintained incrementally by
// the ingestion pipeline and must equal the number of committed scan rows
// referencing this patient; drift after an aggregation failure is repaired
// out of band from the scan records.
type Patient struct {
	ID        PatientID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Age       int       `json:"age"`
	Status    Status    `json:"status"`
	ScanCount int       `json:"scan_count"`
	CreatedAt time.Time `json:"created_at"`
}
