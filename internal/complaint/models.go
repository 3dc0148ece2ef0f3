package complaint

import (
	"time"

	"panchayat/internal/identity"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// NumberPrefix is the grievance number prefix (COMP-<year>-<seq>).
const NumberPrefix = "COMP"

// Complaint is a citizen grievance. ResolvedAt is stamped on every resolve
// and survives later transitions.
type Complaint struct {
	ID              string     `json:"id"`
	ComplaintNumber string     `json:"complaint_number"`
	CitizenID       string     `json:"citizen_id"`
	ComplaintType   string     `json:"complaint_type"`
	Subject         string     `json:"subject"`
	Description     string     `json:"description"`
	Location        string     `json:"location,omitempty"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	AssignedToID    string     `json:"assigned_to_id,omitempty"`
	Resolution      string     `json:"resolution,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`

	Citizen  *identity.Ref `json:"citizen,omitempty"`
	Assignee *identity.Ref `json:"assignee,omitempty"`
}
