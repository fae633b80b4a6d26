package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/middleware"
	"github.com/noah-isme/wellness-api/internal/models"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth           *AuthHandler
	Navigation     *NavigationHandler
	Students       *StudentHandler
	Dashboard      *DashboardHandler
	Moods          *MoodHandler
	Sessions       *SessionHandler
	Tasks          *TaskHandler
	Tutoring       *TutoringHandler
	Referrals      *ReferralHandler
	Psychopedagogy *PsychopedagogyHandler
	Messages       *MessageHandler
	Reports        *ReportHandler
	Events         *EventsHandler
	Metrics        *MetricsHandler
}

// RouterDeps carries the cross-cutting pieces the route table needs.
type RouterDeps struct {
	Gate         *middleware.Gate
	LoginLimiter *middleware.IPRateLimiter
	Logger       *zap.Logger
}

var staffRoles = []models.UserRole{
	models.RoleAdmin,
	models.RolePsychologist,
	models.RoleTutor,
	models.RolePsychopedagogue,
}

// Register mounts the role-gated API on group.
func Register(group *gin.RouterGroup, h Handlers, deps RouterDeps) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gate := deps.Gate
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(logger, action, resource)
	}

	group.Use(middleware.WithResponseMeta())

	auth := group.Group("/auth")
	if deps.LoginLimiter != nil {
		auth.POST("/login", deps.LoginLimiter.Middleware(), h.Auth.Login)
	} else {
		auth.POST("/login", h.Auth.Login)
	}
	auth.POST("/logout", gate.Require(), h.Auth.Logout)
	auth.GET("/me", gate.Require(), h.Auth.Me)

	// Reachable by every signed-in role.
	anyone := group.Group("", gate.Require())
	anyone.GET("/navigation", h.Navigation.Get)
	anyone.GET("/dashboard", h.Dashboard.Get)
	anyone.GET("/events", h.Events.Stream)
	registerMessages(anyone.Group("/messages"), h.Messages, audit)

	// The download token is the credential.
	group.GET("/reports/download/:token", h.Reports.Download)

	// Staff browse the roster; a student may open only their own record.
	students := group.Group("/students", gate.Require())
	students.GET("", middleware.RequireRoles(staffRoles...), h.Students.List)
	byStudent := students.Group("/:studentId", middleware.RBAC(append(roleNames(staffRoles), "SELF")...))
	byStudent.GET("", h.Students.Get)
	byStudent.GET("/profile", h.Students.Profile)
	byStudent.GET("/moods", h.Moods.List)
	byStudent.GET("/moods/summary", h.Moods.Summary)

	student := group.Group("/student", gate.Require(models.RoleStudent))
	student.GET("/moods", h.Moods.List)
	student.GET("/moods/summary", h.Moods.Summary)
	student.POST("/moods", audit("record", "mood"), h.Moods.Record)
	student.GET("/sessions", h.Sessions.List)
	student.GET("/tasks", h.Tasks.List)
	student.PATCH("/tasks/:id", audit("update", "task"), h.Tasks.Update)
	student.GET("/messages", h.Messages.List)
	student.POST("/messages", audit("send", "message"), h.Messages.Send)

	psychologist := group.Group("/psychologist", gate.Require(models.RolePsychologist))
	psychologist.GET("/sessions", h.Sessions.List)
	psychologist.GET("/sessions/:id", h.Sessions.Get)
	psychologist.POST("/sessions", audit("create", "session"), h.Sessions.Create)
	psychologist.PATCH("/sessions/:id", audit("reschedule", "session"), h.Sessions.Reschedule)
	psychologist.POST("/sessions/:id/complete", audit("complete", "session"), h.Sessions.Complete)
	psychologist.POST("/sessions/:id/cancel", audit("cancel", "session"), h.Sessions.Cancel)
	psychologist.DELETE("/sessions/:id", audit("delete", "session"), h.Sessions.Delete)
	psychologist.GET("/tasks", h.Tasks.List)
	psychologist.POST("/tasks", audit("assign", "task"), h.Tasks.Assign)
	psychologist.POST("/tasks/:id/feedback", audit("feedback", "task"), h.Tasks.Feedback)
	psychologist.DELETE("/tasks/:id", audit("delete", "task"), h.Tasks.Delete)
	psychologist.GET("/referrals", h.Referrals.List)
	psychologist.PATCH("/referrals/:id", audit("advance", "referral"), h.Referrals.Advance)
	psychologist.POST("/psychopedagogy-referrals", audit("create", "psychopedagogy_referral"), h.Psychopedagogy.CreateReferral)

	tutor := group.Group("/tutor", gate.Require(models.RoleTutor))
	tutor.GET("/tutorings", h.Tutoring.List)
	tutor.POST("/tutorings", audit("create", "tutoring"), h.Tutoring.Schedule)
	tutor.POST("/tutorings/:id/complete", audit("complete", "tutoring"), h.Tutoring.Complete)
	tutor.POST("/tutorings/:id/cancel", audit("cancel", "tutoring"), h.Tutoring.Cancel)
	tutor.GET("/referrals", h.Referrals.List)
	tutor.POST("/referrals", audit("create", "referral"), h.Referrals.Create)
	tutor.POST("/psychopedagogy-referrals", audit("create", "psychopedagogy_referral"), h.Psychopedagogy.CreateReferral)

	pp := group.Group("/psychopedagogue", gate.Require(models.RolePsychopedagogue))
	pp.GET("/referrals", h.Psychopedagogy.ListReferrals)
	pp.POST("/referrals/:id/accept", audit("accept", "psychopedagogy_referral"), h.Psychopedagogy.AcceptReferral)
	pp.PATCH("/referrals/:id", audit("advance", "psychopedagogy_referral"), h.Psychopedagogy.AdvanceReferral)
	pp.GET("/sessions", h.Psychopedagogy.ListSessions)
	pp.POST("/sessions", audit("create", "psychopedagogy_session"), h.Psychopedagogy.ScheduleSession)
	pp.POST("/sessions/:id/complete", audit("complete", "psychopedagogy_session"), h.Psychopedagogy.CompleteSession)
	pp.POST("/sessions/:id/cancel", audit("cancel", "psychopedagogy_session"), h.Psychopedagogy.CancelSession)
	pp.GET("/plans", h.Psychopedagogy.ListPlans)
	pp.POST("/plans", audit("create", "support_plan"), h.Psychopedagogy.CreatePlan)
	pp.PATCH("/plans/:id", audit("update", "support_plan"), h.Psychopedagogy.UpdatePlan)

	admin := group.Group("/admin", gate.Require(models.RoleAdmin))
	admin.GET("/users", h.Auth.Users)
	admin.GET("/reports", h.Reports.List)
	admin.POST("/reports", audit("create", "report"), h.Reports.Create)
	admin.GET("/reports/:id", h.Reports.Status)
	admin.GET("/metrics", h.Metrics.Summary)
}

func registerMessages(group *gin.RouterGroup, h *MessageHandler, audit func(action, resource string) gin.HandlerFunc) {
	group.GET("", h.List)
	group.POST("", audit("send", "message"), h.Send)
	group.GET("/conversations", h.Conversations)
	group.GET("/unread", h.Unread)
	group.PATCH("/:id/read", h.MarkRead)
	group.POST("/conversations/:with/read", h.MarkConversationRead)
}

func roleNames(roles []models.UserRole) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}
