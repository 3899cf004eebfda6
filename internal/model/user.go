package model

import "time"

// Role is the access level assigned to a dashboard user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleRTBStaff   Role = "rtb-staff"
	RoleSchool     Role = "school"
	RoleTechnician Role = "technician"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRTBStaff, RoleSchool, RoleTechnician:
		return true
	}
	return false
}

type User struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Role        Role       `json:"role"`
	Gender      string     `json:"gender,omitempty"`
	Status      string     `json:"status"`
	SchoolID    *int64     `json:"schoolId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}
