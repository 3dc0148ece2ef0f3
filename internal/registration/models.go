package registration

import "time"

// Status values of a registration request. pending → approved | rejected.
// Decisions are terminal for the applicant but an admin may overwrite one;
// the existing-email check in Decide is the only materialization guard.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func ValidDecision(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// Request is a citizen signup awaiting admin review. On approval it
// materializes exactly one User + CitizenProfile.
type Request struct {
	ID              string     `json:"id"`
	FullName        string     `json:"full_name"`
	DateOfBirth     time.Time  `json:"date_of_birth"`
	Gender          string     `json:"gender,omitempty"`
	AadhaarNumber   string     `json:"aadhaar_number"`
	Email           string     `json:"email"`
	Mobile          string     `json:"mobile,omitempty"`
	Address         string     `json:"address,omitempty"`
	Village         string     `json:"village,omitempty"`
	Pincode         string     `json:"pincode,omitempty"`
	PasswordHash    string     `json:"-"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedByID    string     `json:"reviewed_by_id,omitempty"`
}
