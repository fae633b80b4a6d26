package dto

import "github.com/noah-isme/wellness-api/internal/models"

// MoodSummary condenses a student's mood history.
type MoodSummary struct {
	Count   int               `json:"count"`
	Average float64           `json:"average"`
	Trend   models.MoodTrend  `json:"trend"`
	Latest  *models.MoodEntry `json:"latest,omitempty"`
}

// TaskCounts splits tasks by status.
type TaskCounts struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// RiskDistribution counts roster students per risk level.
type RiskDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// StudentDashboard is the landing page of the student role.
type StudentDashboard struct {
	StudentID      string          `json:"studentId"`
	Mood           MoodSummary     `json:"mood"`
	Tasks          TaskCounts      `json:"tasks"`
	NextSession    *models.Session `json:"nextSession,omitempty"`
	UnreadMessages int             `json:"unreadMessages"`
}

// PsychologistDashboard is the landing page of the psychologist role.
type PsychologistDashboard struct {
	TotalStudents    int              `json:"totalStudents"`
	HighRisk         []models.Student `json:"highRisk"`
	PendingSessions  int              `json:"pendingSessions"`
	UpcomingSessions []models.Session `json:"upcomingSessions"`
	PendingReferrals int              `json:"pendingReferrals"`
	Tasks            TaskCounts       `json:"tasks"`
	UnreadMessages   int              `json:"unreadMessages"`
}

// TutorDashboard is the landing page of the tutor role.
type TutorDashboard struct {
	TotalStudents     int               `json:"totalStudents"`
	ScheduledTutoring int               `json:"scheduledTutoring"`
	CompletedTutoring int               `json:"completedTutoring"`
	UpcomingTutoring  []models.Tutoring `json:"upcomingTutoring"`
	ReferralsMade     int               `json:"referralsMade"`
	Alerts            []models.Student  `json:"alerts"`
	UnreadMessages    int               `json:"unreadMessages"`
}

// PsychopedagogueDashboard is the landing page of the psychopedagogue role.
type PsychopedagogueDashboard struct {
	PendingReferrals int                             `json:"pendingReferrals"`
	UpcomingSessions int                             `json:"upcomingSessions"`
	ActivePlans      int                             `json:"activePlans"`
	RecentReferrals  []models.PsychopedagogyReferral `json:"recentReferrals"`
	NextSessions     []models.PsychopedagogySession  `json:"nextSessions"`
}

// AdminDashboard aggregates portal-wide indicators.
type AdminDashboard struct {
	TotalUsers        int              `json:"totalUsers"`
	TotalStudents     int              `json:"totalStudents"`
	Risk              RiskDistribution `json:"risk"`
	TotalSessions     int              `json:"totalSessions"`
	CompletedSessions int              `json:"completedSessions"`
	TotalTutoring     int              `json:"totalTutoring"`
	OpenReferrals     int              `json:"openReferrals"`
	ActivePlans       int              `json:"activePlans"`
	AverageMood       float64          `json:"averageMood"`
}

// StudentProfile is the detail page of one student for staff.
type StudentProfile struct {
	Student                models.Student                 `json:"student"`
	Mood                   MoodSummary                    `json:"mood"`
	MoodEntries            []models.MoodEntry             `json:"moodEntries"`
	Sessions               []models.Session               `json:"sessions"`
	Tasks                  []models.Task                  `json:"tasks"`
	Tutoring               []models.Tutoring              `json:"tutoring"`
	PsychopedagogySessions []models.PsychopedagogySession `json:"psychopedagogySessions"`
	SupportPlans           []models.SupportPlan           `json:"supportPlans"`
}
