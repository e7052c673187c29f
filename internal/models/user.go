package models

// Role names the dashboard a session belongs to.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDoctor    Role = "doctor"
	RolePatient   Role = "patient"
	RoleGuest     Role = "guest"
	RoleAffiliate Role = "affiliate"
)

// User is the identity attached to a session. It is never persisted outside the session keys.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	DoctorID    *int64 `json:"doctorId,omitempty"`
	AffiliateID string `json:"affiliateId,omitempty"`
}

// HasRole reports whether the user holds one of roles.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
