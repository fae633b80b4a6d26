package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/noah-isme/wellness-api/internal/models"
)

// Admin is the untyped view of a collection used by maintenance tooling.
type Admin interface {
	Name() string
	Key() string
	Count(ctx context.Context) (int, error)
	Raw(ctx context.Context) (string, bool, error)
	Reset(ctx context.Context) error
}

type (
	MoodEntries             = Collection[models.MoodEntry, *models.MoodEntry]
	Sessions                = Collection[models.Session, *models.Session]
	Tasks                   = Collection[models.Task, *models.Task]
	TutoringSessions        = Collection[models.Tutoring, *models.Tutoring]
	Referrals               = Collection[models.PsychologyReferral, *models.PsychologyReferral]
	PsychopedagogyReferrals = Collection[models.PsychopedagogyReferral, *models.PsychopedagogyReferral]
	PsychopedagogySessions  = Collection[models.PsychopedagogySession, *models.PsychopedagogySession]
	SupportPlans            = Collection[models.SupportPlan, *models.SupportPlan]
	ReportJobs              = Collection[models.ReportJob, *models.ReportJob]
)

// Messages adds read-flag handling to the message collection.
type Messages struct {
	*Collection[models.Message, *models.Message]
}

// MarkRead sets the read flag of one message.
func (m *Messages) MarkRead(ctx context.Context, id string) (models.Message, bool, error) {
	return m.Update(ctx, id, models.Patch{"read": true})
}

// MarkConversationRead flags every unread message from counterpart to userID
// and returns how many changed.
func (m *Messages) MarkConversationRead(ctx context.Context, userID, counterpart string) (int, error) {
	msgs, err := m.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	unread := lo.Filter(msgs, func(msg models.Message, _ int) bool {
		return !msg.Read && msg.From == counterpart && msg.To == userID
	})
	for _, msg := range unread {
		if _, _, err := m.MarkRead(ctx, msg.ID); err != nil {
			return 0, err
		}
	}
	return len(unread), nil
}

// DataStore is the single access point to every collection.
type DataStore struct {
	MoodEntries             *MoodEntries
	Sessions                *Sessions
	Tasks                   *Tasks
	Messages                *Messages
	TutoringSessions        *TutoringSessions
	Referrals               *Referrals
	PsychopedagogyReferrals *PsychopedagogyReferrals
	PsychopedagogySessions  *PsychopedagogySessions
	SupportPlans            *SupportPlans
	ReportJobs              *ReportJobs

	admins []Admin
}

var (
	createdAtImmutable = []string{"id", "createdAt"}
	timestampImmutable = []string{"id", "timestamp"}
)

// NewDataStore wires every collection onto deps.KV.
func NewDataStore(deps Deps) *DataStore {
	d := &DataStore{
		MoodEntries: NewCollection[models.MoodEntry, *models.MoodEntry](Spec[models.MoodEntry]{
			Name: CollectionMoodEntries, IDPrefix: prefixMood, Immutable: timestampImmutable,
		}, deps),
		Sessions: NewCollection[models.Session, *models.Session](Spec[models.Session]{
			Name: CollectionSessions, IDPrefix: prefixSession, Immutable: createdAtImmutable,
		}, deps),
		Tasks: NewCollection[models.Task, *models.Task](Spec[models.Task]{
			Name: CollectionTasks, IDPrefix: prefixTask, Immutable: createdAtImmutable,
			Hooks: Hooks[models.Task]{BeforeAdd: taskBeforeAdd, BeforePatch: taskBeforePatch},
		}, deps),
		Messages: &Messages{NewCollection[models.Message, *models.Message](Spec[models.Message]{
			Name: CollectionMessages, IDPrefix: prefixMessage, Immutable: timestampImmutable,
			Match: func(m models.Message, userID string) bool { return m.Involves(userID) },
		}, deps)},
		TutoringSessions: NewCollection[models.Tutoring, *models.Tutoring](Spec[models.Tutoring]{
			Name: CollectionTutoring, IDPrefix: prefixTutoring, Immutable: createdAtImmutable,
		}, deps),
		Referrals: NewCollection[models.PsychologyReferral, *models.PsychologyReferral](Spec[models.PsychologyReferral]{
			Name: CollectionReferrals, IDPrefix: prefixReferral, Immutable: createdAtImmutable,
		}, deps),
		PsychopedagogyReferrals: NewCollection[models.PsychopedagogyReferral, *models.PsychopedagogyReferral](Spec[models.PsychopedagogyReferral]{
			Name: CollectionPsychopedagogyReferrals, IDPrefix: prefixPsychopedagogyRef, Immutable: createdAtImmutable,
		}, deps),
		PsychopedagogySessions: NewCollection[models.PsychopedagogySession, *models.PsychopedagogySession](Spec[models.PsychopedagogySession]{
			Name: CollectionPsychopedagogySessions, IDPrefix: prefixPsychopedagogySession, Immutable: createdAtImmutable,
		}, deps),
		SupportPlans: NewCollection[models.SupportPlan, *models.SupportPlan](Spec[models.SupportPlan]{
			Name: CollectionSupportPlans, IDPrefix: prefixPlan, Immutable: createdAtImmutable,
			Hooks: Hooks[models.SupportPlan]{BeforeAdd: planBeforeAdd, Check: singleActivePlan},
		}, deps),
		ReportJobs: NewCollection[models.ReportJob, *models.ReportJob](Spec[models.ReportJob]{
			Name: CollectionReportJobs, IDPrefix: prefixReport, Immutable: createdAtImmutable,
		}, deps),
	}
	d.admins = []Admin{
		d.MoodEntries, d.Sessions, d.Tasks, d.Messages, d.TutoringSessions, d.Referrals,
		d.PsychopedagogyReferrals, d.PsychopedagogySessions, d.SupportPlans, d.ReportJobs,
	}
	return d
}

// Collections lists every collection in a stable order.
func (d *DataStore) Collections() []Admin {
	return append([]Admin(nil), d.admins...)
}

// Collection finds a collection by name.
func (d *DataStore) Collection(name string) (Admin, error) {
	a, ok := lo.Find(d.admins, func(a Admin) bool { return a.Name() == name })
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", name)
	}
	return a, nil
}

// Students returns the static roster.
func (d *DataStore) Students() []models.Student {
	return models.Roster()
}

// FindStudent looks a roster entry up by its student code.
func (d *DataStore) FindStudent(studentID string) (models.Student, bool) {
	return lo.Find(models.Roster(), func(s models.Student) bool { return s.StudentID == studentID })
}

func taskBeforeAdd(t *models.Task, now time.Time) {
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	if t.Status == models.TaskCompleted && t.CompletedDate == "" {
		t.CompletedDate = models.DateOnly(now)
	}
}

// taskBeforePatch clears the completion side-fields when a task goes back to
// pending and stamps today when it is completed without a date.
func taskBeforePatch(prev models.Task, patch models.Patch, now time.Time) {
	status, ok := patch.String(models.TaskFieldStatus)
	if !ok {
		return
	}
	switch models.TaskStatus(status) {
	case models.TaskPending:
		patch[models.TaskFieldCompletedDate] = nil
		patch[models.TaskFieldFeedback] = nil
		patch[models.TaskFieldFeedbackDate] = nil
	case models.TaskCompleted:
		date, set := patch[models.TaskFieldCompletedDate]
		if (set && date == nil) || (!set && prev.CompletedDate == "") {
			patch[models.TaskFieldCompletedDate] = models.DateOnly(now)
		}
	}
}

func planBeforeAdd(p *models.SupportPlan, _ time.Time) {
	if p.Status == "" {
		p.Status = models.PlanActive
	}
}

func singleActivePlan(next models.SupportPlan, others []models.SupportPlan) error {
	if next.Status != models.PlanActive {
		return nil
	}
	if lo.ContainsBy(others, func(p models.SupportPlan) bool {
		return p.StudentID == next.StudentID && p.Status == models.PlanActive
	}) {
		return ErrActivePlanExists
	}
	return nil
}
