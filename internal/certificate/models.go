package certificate

import (
	"time"

	"panchayat/internal/identity"
)

// Status progression: pending → verified → approved | rejected. Verification
// is advisory; staff may jump straight from pending to a terminal status.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusVerified, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// NumberPrefix is the application number prefix (CERT-<year>-<seq>).
const NumberPrefix = "CERT"

// Certificate is a citizen's document request. Only the owning citizen or
// staff may read it; only staff transition its status.
type Certificate struct {
	ID                string         `json:"id"`
	ApplicationNumber string         `json:"application_number"`
	CitizenID         string         `json:"citizen_id"`
	CertificateType   string         `json:"certificate_type"`
	Purpose           string         `json:"purpose"`
	Data              map[string]any `json:"data"`
	Status            string         `json:"status"`
	Remarks           string         `json:"remarks,omitempty"`
	CertificateURL    string         `json:"certificate_url,omitempty"`
	SubmittedAt       time.Time      `json:"submitted_at"`
	ProcessedAt       *time.Time     `json:"processed_at,omitempty"`
	ProcessedByID     string         `json:"processed_by_id,omitempty"`

	Citizen *identity.Ref `json:"citizen,omitempty"`
}
