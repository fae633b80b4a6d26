package models

// UserRole represents the available roles for the role gate.
type UserRole string

const (
	RoleAdmin           UserRole = "admin"
	RolePsychologist    UserRole = "psychologist"
	RoleTutor           UserRole = "tutor"
	RoleStudent         UserRole = "student"
	RolePsychopedagogue UserRole = "psychopedagogue"
)

// AllRoles lists every role in menu order.
var AllRoles = []UserRole{RoleAdmin, RolePsychologist, RoleTutor, RoleStudent, RolePsychopedagogue}

// IsValid reports whether the role is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RolePsychologist, RoleTutor, RoleStudent, RolePsychopedagogue:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role belongs to school staff rather than a student.
func (r UserRole) IsStaff() bool {
	return r.IsValid() && r != RoleStudent
}

// User is an entry of the credential table.
type User struct {
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	FullName     string   `json:"fullName"`
	Role         UserRole `json:"role"`
	// UserID is the opaque identifier other records use (studentId, psychologistId, ...).
	UserID string `json:"userId"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
