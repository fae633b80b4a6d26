package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/wellness-api/internal/models"
)

// Seed fills empty collections with a small demo dataset around now and
// reports how many records each collection received. Collections that
// already hold records are left untouched.
func Seed(ctx context.Context, d *DataStore, now time.Time) (map[string]int, error) {
	day := func(offset int) string { return models.DateOnly(now.AddDate(0, 0, offset)) }
	added := make(map[string]int)

	steps := []struct {
		admin Admin
		fill  func() (int, error)
	}{
		{d.MoodEntries, func() (int, error) {
			return addAll(ctx, d.MoodEntries, []models.MoodEntry{
				{StudentID: "EST-1234", Mood: 2, Comment: "Semana de parciales"},
				{StudentID: "EST-1234", Mood: 3, Comment: "Mejor después de la sesión"},
				{StudentID: "EST-5678", Mood: 4, Comment: "Todo tranquilo"},
				{StudentID: "EST-9012", Mood: 1, Comment: "No pude dormir"},
			})
		}},
		{d.Sessions, func() (int, error) {
			return addAll(ctx, d.Sessions, []models.Session{
				{StudentID: "EST-1234", PsychologistID: "PSY-001", Type: "individual", Date: day(2), Time: "10:00", Duration: "50 min", Location: "Consultorio 2", Status: models.SessionPending},
				{StudentID: "EST-9012", PsychologistID: "PSY-001", Type: "individual", Date: day(-5), Time: "12:00", Duration: "50 min", Location: "Consultorio 2", Status: models.SessionCompleted, SessionNotes: "Primera sesión de seguimiento"},
			})
		}},
		{d.Tasks, func() (int, error) {
			return addAll(ctx, d.Tasks, []models.Task{
				{StudentID: "EST-1234", Task: "Registro diario de pensamientos", AssignedBy: "PSY-001", AssignedDate: day(-3), DueDate: day(4)},
				{StudentID: "EST-1234", Task: "Ejercicio de respiración 4-7-8", AssignedBy: "PSY-001", AssignedDate: day(-7), DueDate: day(-1), Status: models.TaskCompleted},
			})
		}},
		{d.Messages, func() (int, error) {
			return addAll(ctx, d.Messages.Collection, []models.Message{
				{From: "PSY-001", To: "EST-1234", Content: "Recuerda tu sesión de esta semana."},
				{From: "EST-1234", To: "PSY-001", Content: "Gracias, ahí estaré."},
			})
		}},
		{d.TutoringSessions, func() (int, error) {
			return addAll(ctx, d.TutoringSessions, []models.Tutoring{
				{StudentID: "EST-5678", TutorID: "TUT-001", Topic: "Plan de estudio", Type: models.TutoringStudySkills, Date: day(1), Time: "15:00", Duration: "45 min", Location: "Biblioteca", Status: models.ScheduleScheduled},
			})
		}},
		{d.Referrals, func() (int, error) {
			return addAll(ctx, d.Referrals, []models.PsychologyReferral{
				{StudentID: "EST-9012", ReferredBy: "TUT-001", Reason: "Ansiedad antes de exámenes", Urgency: models.UrgencyHigh, Symptoms: []string{"insomnio", "irritabilidad"}, Date: day(-2), Status: models.ReferralPending},
			})
		}},
		{d.PsychopedagogyReferrals, func() (int, error) {
			return addAll(ctx, d.PsychopedagogyReferrals, []models.PsychopedagogyReferral{
				{StudentID: "EST-7890", ReferredBy: "TUT-001", ReferrerRole: models.ReferrerTutor, Reason: "Dificultad de comprensión lectora", Urgency: models.UrgencyMedium, Date: day(-1), Status: models.PsychopedagogyReferralPending},
			})
		}},
		{d.SupportPlans, func() (int, error) {
			return addAll(ctx, d.SupportPlans, []models.SupportPlan{
				{
					StudentID:         "EST-3456",
					PsychopedagogueID: "PSPED-001",
					CreatedDate:       day(-10),
					Difficulties: []models.LearningDifficulty{
						{Area: models.AreaOrganization, Level: models.RiskMedium, Description: "Entrega tardía de trabajos"},
					},
					GeneralObjectives: "Mejorar la planificación semanal",
					Strategies:        []string{"Agenda semanal", "Revisión quincenal"},
					ReviewDate:        day(20),
					Status:            models.PlanActive,
				},
			})
		}},
	}

	for _, step := range steps {
		count, err := step.admin.Count(ctx)
		if err != nil {
			return added, fmt.Errorf("count %s: %w", step.admin.Name(), err)
		}
		if count > 0 {
			continue
		}
		n, err := step.fill()
		if err != nil {
			return added, fmt.Errorf("seed %s: %w", step.admin.Name(), err)
		}
		added[step.admin.Name()] = n
	}
	return added, nil
}

func addAll[T any, P entity[T]](ctx context.Context, c *Collection[T, P], records []T) (int, error) {
	for i, rec := range records {
		if _, err := c.Add(ctx, rec); err != nil {
			return i, err
		}
	}
	return len(records), nil
}
