package notification

import "time"

// Notification is one inbox row. Rows are created by workflow transitions and
// only ever mutated by marking them read.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// InboxLimit caps how many rows a poll returns, newest first.
const InboxLimit = 20
