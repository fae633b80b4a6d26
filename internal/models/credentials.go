package models

// DemoCredential is a row of the hardcoded credential table.
type DemoCredential struct {
	Email    string
	Password string
	FullName string
	Role     UserRole
	UserID   string
}

// DemoCredentials is the fixed login table of the portal.
var DemoCredentials = []DemoCredential{
	{Email: "admin@sistema.edu", Password: "admin123", FullName: "Administrador", Role: RoleAdmin, UserID: "ADM-001"},
	{Email: "psicologo@sistema.edu", Password: "psi123", FullName: "Dr. García", Role: RolePsychologist, UserID: "PSY-001"},
	{Email: "tutor@sistema.edu", Password: "tutor123", FullName: "Prof. Ramírez", Role: RoleTutor, UserID: "TUT-001"},
	{Email: "estudiante@sistema.edu", Password: "est123", FullName: "Ana Martínez", Role: RoleStudent, UserID: "EST-1234"},
	{Email: "psicopedagogo@sistema.edu", Password: "psico123", FullName: "Lic. Herrera", Role: RolePsychopedagogue, UserID: "PSPED-001"},
}

// HomeRoute returns the landing route for a role.
func HomeRoute(role UserRole) string {
	if !role.IsValid() {
		return "/login"
	}
	return "/" + string(role)
}
