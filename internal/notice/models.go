package notice

import (
	"time"

	"panchayat/internal/identity"
)

const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// TypeGlobal marks a broadcast notice visible to every citizen.
const TypeGlobal = "global"

// Notice is a village notice board entry. Unpublished notices are only
// visible to staff.
type Notice struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	NoticeType  string     `json:"notice_type"`
	Priority    string     `json:"priority"`
	IsPublished bool       `json:"is_published"`
	IsGlobal    bool       `json:"is_global"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	CreatedByID string     `json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`

	Creator *identity.Ref `json:"creator,omitempty"`
}
