package users

import "time"

// User owns scans. Authentication is handled upstream; this service only
// needs the id to be resolvable when a scan is committed.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
