package assistant

import "time"

// ReplyID identifier type
type ReplyID string

// Reply is an assistant answer stored for auditing and retrieval
type Reply struct {
	ID        ReplyID   `json:"id"`
	ScanID    string    `json:"scan_id,omitempty"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
