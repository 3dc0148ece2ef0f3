package scheme

import (
	"time"

	"panchayat/internal/identity"
)

// Scheme is a government welfare program. The application counters are
// denormalized totals maintained alongside the application rows.
type Scheme struct {
	ID                   string    `json:"id"`
	SchemeName           string    `json:"scheme_name"`
	Description          string    `json:"description"`
	IsActive             bool      `json:"is_active"`
	AllocatedFunds       float64   `json:"allocated_funds"`
	UtilizedFunds        float64   `json:"utilized_funds"`
	TotalApplications    int       `json:"total_applications"`
	ApprovedApplications int       `json:"approved_applications"`
	CreatedByID          string    `json:"created_by_id"`
	CreatedAt            time.Time `json:"created_at"`

	Creator *identity.Ref `json:"creator,omitempty"`
}

const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Application is a citizen's enrollment request for a scheme.
type Application struct {
	ID         string     `json:"id"`
	SchemeID   string     `json:"scheme_id"`
	CitizenID  string     `json:"citizen_id"`
	Status     string     `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	AppliedAt  time.Time  `json:"applied_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// FundTotals aggregates budget figures across all schemes.
type FundTotals struct {
	Allocated float64
	Utilized  float64
}
