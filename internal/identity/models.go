package identity

import "time"

// Role is the portal-wide capability grouping. Routes declare the roles they
// allow; ownership checks compose on top for citizen-owned rows.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleClerk   Role = "clerk"
	RoleCitizen Role = "citizen"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClerk, RoleCitizen:
		return true
	}
	return false
}

// User is a portal account. Citizens own a CitizenProfile, clerks a
// ClerkProfile. Accounts are soft-deleted by clearing IsActive, never removed.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	FullName     string    `json:"full_name"`
	Mobile       string    `json:"mobile,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`

	Profile      *CitizenProfile `json:"profile,omitempty"`
	ClerkProfile *ClerkProfile   `json:"clerk_profile,omitempty"`
}

// CitizenProfile extends a citizen User with identity fields copied from the
// approved registration request.
type CitizenProfile struct {
	UserID        string    `json:"user_id"`
	AadhaarNumber string    `json:"aadhaar_number"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	Gender        string    `json:"gender,omitempty"`
	Address       string    `json:"address,omitempty"`
	Village       string    `json:"village,omitempty"`
	Pincode       string    `json:"pincode,omitempty"`
}

// ClerkProfile extends a clerk User with employment fields.
type ClerkProfile struct {
	UserID      string `json:"user_id"`
	EmployeeID  string `json:"employee_id"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
}

// Ref is the citizen/assignee sub-object embedded in workflow rows.
type Ref struct {
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
}
