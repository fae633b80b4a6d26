package models

// RiskLevel is the tri-state severity assigned to a student.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// IsValid reports whether the level is known.
func (r RiskLevel) IsValid() bool {
	return r == RiskHigh || r == RiskMedium || r == RiskLow
}

// MoodTrend summarises the direction of recent mood entries.
type MoodTrend string

const (
	TrendUp     MoodTrend = "up"
	TrendDown   MoodTrend = "down"
	TrendStable MoodTrend = "stable"
)

// Student is an entry of the static roster. It is never persisted.
type Student struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	StudentID     string    `json:"studentId"`
	Program       string    `json:"program"`
	Semester      string    `json:"semester"`
	Risk          RiskLevel `json:"risk"`
	CurrentMood   int       `json:"currentMood"`
	MoodTrend     MoodTrend `json:"moodTrend"`
	LastSession   string    `json:"lastSession"`
	NextSession   string    `json:"nextSession"`
	SessionsCount int       `json:"sessionsCount"`
	Avatar        string    `json:"avatar"`
	Email         string    `json:"email"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search  string
	Risk    RiskLevel
	Program string
}

// Roster returns a fresh copy of the hardcoded student list.
func Roster() []Student {
	out := make([]Student, len(roster))
	copy(out, roster)
	return out
}

var roster = []Student{
	{ID: 1, Name: "Ana Martínez", StudentID: "EST-1234", Program: "Ingeniería de Sistemas", Semester: "5to Semestre", Risk: RiskHigh, CurrentMood: 2, MoodTrend: TrendDown, LastSession: "2024-01-15", NextSession: "2024-01-22", SessionsCount: 8, Avatar: "AM", Email: "ana.martinez@university.edu"},
	{ID: 2, Name: "Carlos Rodríguez", StudentID: "EST-5678", Program: "Administración de Empresas", Semester: "3er Semestre", Risk: RiskMedium, CurrentMood: 3, MoodTrend: TrendStable, LastSession: "2024-01-10", NextSession: "2024-01-24", SessionsCount: 5, Avatar: "CR", Email: "carlos.rodriguez@university.edu"},
	{ID: 3, Name: "Laura Gómez", StudentID: "EST-9012", Program: "Psicología", Semester: "7mo Semestre", Risk: RiskHigh, CurrentMood: 2, MoodTrend: TrendDown, LastSession: "2024-01-16", NextSession: "2024-01-20", SessionsCount: 12, Avatar: "LG", Email: "laura.gomez@university.edu"},
	{ID: 4, Name: "Pedro Sánchez", StudentID: "EST-3456", Program: "Medicina", Semester: "4to Semestre", Risk: RiskLow, CurrentMood: 4, MoodTrend: TrendUp, LastSession: "2024-01-12", NextSession: "2024-01-19", SessionsCount: 6, Avatar: "PS", Email: "pedro.sanchez@university.edu"},
	{ID: 5, Name: "María López", StudentID: "EST-7890", Program: "Derecho", Semester: "2do Semestre", Risk: RiskMedium, CurrentMood: 3, MoodTrend: TrendStable, LastSession: "2024-01-14", NextSession: "2024-01-21", SessionsCount: 3, Avatar: "ML", Email: "maria.lopez@university.edu"},
	{ID: 6, Name: "José Torres", StudentID: "EST-2468", Program: "Arquitectura", Semester: "6to Semestre", Risk: RiskLow, CurrentMood: 4, MoodTrend: TrendUp, LastSession: "2024-01-11", NextSession: "2024-01-25", SessionsCount: 9, Avatar: "JT", Email: "jose.torres@university.edu"},
	{ID: 7, Name: "Sofía Ramírez", StudentID: "EST-1357", Program: "Diseño Gráfico", Semester: "4to Semestre", Risk: RiskLow, CurrentMood: 5, MoodTrend: TrendUp, LastSession: "2024-01-13", NextSession: "2024-01-27", SessionsCount: 7, Avatar: "SR", Email: "sofia.ramirez@university.edu"},
	{ID: 8, Name: "Diego Fernández", StudentID: "EST-9753", Program: "Contaduría", Semester: "5to Semestre", Risk: RiskMedium, CurrentMood: 3, MoodTrend: TrendDown, LastSession: "2024-01-09", NextSession: "2024-01-23", SessionsCount: 4, Avatar: "DF", Email: "diego.fernandez@university.edu"},
}
