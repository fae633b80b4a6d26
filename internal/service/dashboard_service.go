package service

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/dto"
	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/repository"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

type userDirectory interface {
	Users() []models.UserInfo
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	UpcomingLimit int
}

// DashboardService composes the per-role landing pages.
type DashboardService struct {
	store  *repository.DataStore
	users  userDirectory
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Store  *repository.DataStore
	Users  userDirectory
	Cache  *CacheService
	Logger *zap.Logger
	Config DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		store:  params.Store,
		users:  params.Users,
		cache:  params.Cache,
		logger: logger,
		now:    time.Now,
		cfg:    cfg,
	}
}

// For returns the dashboard of the actor's role and whether it came from cache.
func (s *DashboardService) For(ctx context.Context, actor models.Actor) (interface{}, bool, error) {
	switch actor.Role {
	case models.RoleStudent:
		return s.Student(ctx, actor.UserID)
	case models.RolePsychologist:
		return s.Psychologist(ctx, actor.UserID)
	case models.RoleTutor:
		return s.Tutor(ctx, actor.UserID)
	case models.RolePsychopedagogue:
		return s.Psychopedagogue(ctx)
	case models.RoleAdmin:
		return s.Admin(ctx)
	default:
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}
}

// Student summarises moods, tasks, next session and unread messages.
func (s *DashboardService) Student(ctx context.Context, studentID string) (*dto.StudentDashboard, bool, error) {
	return cached(ctx, s, DashboardKey(models.RoleStudent, studentID), func() (*dto.StudentDashboard, error) {
		moods, err := s.store.MoodEntries.List(ctx, studentID)
		if err != nil {
			return nil, storeError(err, "list mood entries")
		}
		tasks, err := s.store.Tasks.List(ctx, studentID)
		if err != nil {
			return nil, storeError(err, "list tasks")
		}
		sessions, err := s.store.Sessions.List(ctx, studentID)
		if err != nil {
			return nil, storeError(err, "list sessions")
		}
		unread, err := s.unread(ctx, studentID)
		if err != nil {
			return nil, err
		}
		out := &dto.StudentDashboard{
			StudentID:      studentID,
			Mood:           SummarizeMoods(moods),
			Tasks:          countTasks(tasks),
			UnreadMessages: unread,
		}
		if upcoming := s.upcomingSessions(sessions); len(upcoming) > 0 {
			out.NextSession = &upcoming[0]
		}
		return out, nil
	})
}

// Psychologist summarises caseload, sessions and referrals.
func (s *DashboardService) Psychologist(ctx context.Context, psychologistID string) (*dto.PsychologistDashboard, bool, error) {
	return cached(ctx, s, DashboardKey(models.RolePsychologist, psychologistID), func() (*dto.PsychologistDashboard, error) {
		sessions, err := s.store.Sessions.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list sessions")
		}
		referrals, err := s.store.Referrals.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list referrals")
		}
		tasks, err := s.store.Tasks.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list tasks")
		}
		unread, err := s.unread(ctx, psychologistID)
		if err != nil {
			return nil, err
		}
		students := s.store.Students()
		upcoming := s.upcomingSessions(sessions)
		return &dto.PsychologistDashboard{
			TotalStudents:    len(students),
			HighRisk:         lo.Filter(students, func(st models.Student, _ int) bool { return st.Risk == models.RiskHigh }),
			PendingSessions:  lo.CountBy(sessions, func(x models.Session) bool { return x.Status == models.SessionPending }),
			UpcomingSessions: lo.Slice(upcoming, 0, s.cfg.UpcomingLimit),
			PendingReferrals: lo.CountBy(referrals, func(r models.PsychologyReferral) bool { return r.Status == models.ReferralPending }),
			Tasks:            countTasks(tasks),
			UnreadMessages:   unread,
		}, nil
	})
}

// Tutor summarises the tutor's sessions, referrals and alerts.
func (s *DashboardService) Tutor(ctx context.Context, tutorID string) (*dto.TutorDashboard, bool, error) {
	return cached(ctx, s, DashboardKey(models.RoleTutor, tutorID), func() (*dto.TutorDashboard, error) {
		all, err := s.store.TutoringSessions.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list tutoring sessions")
		}
		referrals, err := s.store.Referrals.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list referrals")
		}
		unread, err := s.unread(ctx, tutorID)
		if err != nil {
			return nil, err
		}
		mine := lo.Filter(all, func(t models.Tutoring, _ int) bool { return t.TutorID == tutorID })
		scheduled := lo.Filter(mine, func(t models.Tutoring, _ int) bool {
			return t.Status == models.ScheduleScheduled && t.Date >= models.DateOnly(s.now())
		})
		sort.SliceStable(scheduled, func(i, j int) bool { return scheduled[i].Date+scheduled[i].Time < scheduled[j].Date+scheduled[j].Time })
		students := s.store.Students()
		return &dto.TutorDashboard{
			TotalStudents:     len(students),
			ScheduledTutoring: lo.CountBy(mine, func(t models.Tutoring) bool { return t.Status == models.ScheduleScheduled }),
			CompletedTutoring: lo.CountBy(mine, func(t models.Tutoring) bool { return t.Status == models.ScheduleCompleted }),
			UpcomingTutoring:  lo.Slice(scheduled, 0, s.cfg.UpcomingLimit),
			ReferralsMade:     lo.CountBy(referrals, func(r models.PsychologyReferral) bool { return r.ReferredBy == tutorID }),
			Alerts: lo.Filter(students, func(st models.Student, _ int) bool {
				return st.Risk == models.RiskHigh || st.MoodTrend == models.TrendDown
			}),
			UnreadMessages: unread,
		}, nil
	})
}

// Psychopedagogue counts pending referrals, scheduled sessions and active plans.
func (s *DashboardService) Psychopedagogue(ctx context.Context) (*dto.PsychopedagogueDashboard, bool, error) {
	return cached(ctx, s, DashboardKey(models.RolePsychopedagogue, ""), func() (*dto.PsychopedagogueDashboard, error) {
		referrals, err := s.store.PsychopedagogyReferrals.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list psychopedagogy referrals")
		}
		sessions, err := s.store.PsychopedagogySessions.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list psychopedagogy sessions")
		}
		plans, err := s.store.SupportPlans.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list support plans")
		}
		scheduled := lo.Filter(sessions, func(ps models.PsychopedagogySession, _ int) bool { return ps.Status == models.ScheduleScheduled })
		sort.SliceStable(scheduled, func(i, j int) bool { return scheduled[i].Date+scheduled[i].Time < scheduled[j].Date+scheduled[j].Time })
		return &dto.PsychopedagogueDashboard{
			PendingReferrals: lo.CountBy(referrals, func(r models.PsychopedagogyReferral) bool { return r.Status == models.PsychopedagogyReferralPending }),
			UpcomingSessions: len(scheduled),
			ActivePlans:      lo.CountBy(plans, func(p models.SupportPlan) bool { return p.Status == models.PlanActive }),
			RecentReferrals:  latestFirst(referrals, s.cfg.UpcomingLimit),
			NextSessions:     lo.Slice(scheduled, 0, s.cfg.UpcomingLimit),
		}, nil
	})
}

// Admin aggregates portal-wide counters.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboard, bool, error) {
	return cached(ctx, s, DashboardKey(models.RoleAdmin, ""), func() (*dto.AdminDashboard, error) {
		sessions, err := s.store.Sessions.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list sessions")
		}
		tutoring, err := s.store.TutoringSessions.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list tutoring sessions")
		}
		referrals, err := s.store.Referrals.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list referrals")
		}
		plans, err := s.store.SupportPlans.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list support plans")
		}
		moods, err := s.store.MoodEntries.List(ctx, "")
		if err != nil {
			return nil, storeError(err, "list mood entries")
		}
		students := s.store.Students()
		out := &dto.AdminDashboard{
			TotalStudents:     len(students),
			Risk:              riskDistribution(students),
			TotalSessions:     len(sessions),
			CompletedSessions: lo.CountBy(sessions, func(x models.Session) bool { return x.Status == models.SessionCompleted }),
			TotalTutoring:     len(tutoring),
			OpenReferrals:     lo.CountBy(referrals, func(r models.PsychologyReferral) bool { return r.Status != models.ReferralCompleted }),
			ActivePlans:       lo.CountBy(plans, func(p models.SupportPlan) bool { return p.Status == models.PlanActive }),
		}
		if s.users != nil {
			out.TotalUsers = len(s.users.Users())
		}
		if len(moods) > 0 {
			out.AverageMood = round1(meanMood(moods))
		} else {
			out.AverageMood = round1(float64(lo.SumBy(students, func(st models.Student) int { return st.CurrentMood })) / float64(len(students)))
		}
		return out, nil
	})
}

func (s *DashboardService) unread(ctx context.Context, userID string) (int, error) {
	msgs, err := s.store.Messages.List(ctx, userID)
	if err != nil {
		return 0, storeError(err, "list messages")
	}
	return lo.CountBy(msgs, func(m models.Message) bool { return !m.Read && m.To == userID }), nil
}

// upcomingSessions returns pending sessions from today on, soonest first.
func (s *DashboardService) upcomingSessions(sessions []models.Session) []models.Session {
	today := models.DateOnly(s.now())
	upcoming := lo.Filter(sessions, func(x models.Session, _ int) bool {
		return x.Status == models.SessionPending && x.Date >= today
	})
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Date+upcoming[i].Time < upcoming[j].Date+upcoming[j].Time })
	return upcoming
}

func cached[T any](ctx context.Context, s *DashboardService, key string, compose func() (*T, error)) (*T, bool, error) {
	var hit T
	if ok, err := s.cache.Lookup(ctx, key, &hit); err == nil && ok {
		return &hit, true, nil
	}
	gen := s.cache.Generation()
	out, err := compose()
	if err != nil {
		return nil, false, err
	}
	_, _ = s.cache.Store(ctx, key, out, gen)
	return out, false, nil
}

func countTasks(tasks []models.Task) dto.TaskCounts {
	return dto.TaskCounts{
		Pending:   lo.CountBy(tasks, func(t models.Task) bool { return t.Status == models.TaskPending }),
		Completed: lo.CountBy(tasks, func(t models.Task) bool { return t.Status == models.TaskCompleted }),
	}
}

func riskDistribution(students []models.Student) dto.RiskDistribution {
	return dto.RiskDistribution{
		High:   lo.CountBy(students, func(st models.Student) bool { return st.Risk == models.RiskHigh }),
		Medium: lo.CountBy(students, func(st models.Student) bool { return st.Risk == models.RiskMedium }),
		Low:    lo.CountBy(students, func(st models.Student) bool { return st.Risk == models.RiskLow }),
	}
}

// latestFirst returns up to limit records from the end of items, newest first.
func latestFirst[T any](items []T, limit int) []T {
	out := make([]T, 0, limit)
	for i := len(items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, items[i])
	}
	return out
}
