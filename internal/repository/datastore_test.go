package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wellness-api/internal/models"
)

func TestTaskRevertClearsCompletionFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.store.Tasks.Add(ctx, practiceTask())
	require.NoError(t, err)
	_, _, err = f.store.Tasks.Update(ctx, task.ID, models.Patch{
		"status":         "completed",
		"feedback":       "Excelente trabajo",
		"feedbackDate":   "2024-01-21",
		"studentComment": "Me ayudó mucho",
	})
	require.NoError(t, err)

	reverted, found, err := f.store.Tasks.Update(ctx, task.ID, models.Patch{"status": models.TaskPending})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.TaskPending, reverted.Status)
	assert.Empty(t, reverted.CompletedDate)
	assert.Empty(t, reverted.Feedback)
	assert.Empty(t, reverted.FeedbackDate)
	assert.Equal(t, "Me ayudó mucho", reverted.StudentComment)
}

func TestTaskCompletionStampsToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.store.Tasks.Add(ctx, practiceTask())
	require.NoError(t, err)

	done, _, err := f.store.Tasks.Update(ctx, task.ID, models.Patch{"status": "completed"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-20", done.CompletedDate)

	f.now = f.now.Add(48 * time.Hour)
	again, _, err := f.store.Tasks.Update(ctx, task.ID, models.Patch{"status": "completed", "feedback": "ok"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-20", again.CompletedDate)

	added, err := f.store.Tasks.Add(ctx, models.Task{StudentID: "EST-5678", Task: "Leer", Status: models.TaskCompleted})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-22", added.CompletedDate)

	defaulted, err := f.store.Tasks.Add(ctx, models.Task{StudentID: "EST-5678", Task: "Escribir"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, defaulted.Status)
}

func TestSingleActiveSupportPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.store.SupportPlans.Add(ctx, models.SupportPlan{StudentID: "EST-1234", PsychopedagogueID: "PSPED-001"})
	require.NoError(t, err)
	assert.Equal(t, models.PlanActive, first.Status)
	assert.Equal(t, "2024-01-20", first.CreatedDate)

	_, err = f.store.SupportPlans.Add(ctx, models.SupportPlan{StudentID: "EST-1234", Status: models.PlanActive})
	assert.ErrorIs(t, err, ErrActivePlanExists)

	other, err := f.store.SupportPlans.Add(ctx, models.SupportPlan{StudentID: "EST-5678"})
	require.NoError(t, err)

	suspended, err := f.store.SupportPlans.Add(ctx, models.SupportPlan{StudentID: "EST-1234", Status: models.PlanSuspended})
	require.NoError(t, err)

	_, _, err = f.store.SupportPlans.Update(ctx, suspended.ID, models.Patch{"status": "active"})
	assert.ErrorIs(t, err, ErrActivePlanExists)

	_, _, err = f.store.SupportPlans.Update(ctx, first.ID, models.Patch{"status": "completed"})
	require.NoError(t, err)
	reactivated, _, err := f.store.SupportPlans.Update(ctx, suspended.ID, models.Patch{"status": "active"})
	require.NoError(t, err)
	assert.Equal(t, models.PlanActive, reactivated.Status)

	// Re-saving an already active plan does not conflict with itself.
	_, _, err = f.store.SupportPlans.Update(ctx, other.ID, models.Patch{"reviewDate": "2024-03-01"})
	require.NoError(t, err)

	plans, err := f.store.SupportPlans.List(ctx, "EST-1234")
	require.NoError(t, err)
	assert.Len(t, plans, 2)
}

func TestMessagesFilterAndMarkRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m1, err := f.store.Messages.Add(ctx, models.Message{From: "PSY-001", To: "EST-1234", Content: "¿Cómo estás?"})
	require.NoError(t, err)
	_, err = f.store.Messages.Add(ctx, models.Message{From: "EST-1234", To: "PSY-001", Content: "Mejor"})
	require.NoError(t, err)
	_, err = f.store.Messages.Add(ctx, models.Message{From: "PSY-001", To: "EST-1234", Content: "Me alegra"})
	require.NoError(t, err)
	_, err = f.store.Messages.Add(ctx, models.Message{From: "TUT-001", To: "EST-5678", Content: "Recordatorio"})
	require.NoError(t, err)

	mine, err := f.store.Messages.List(ctx, "EST-1234")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
	assert.Regexp(t, regexp.MustCompile(`^msg_\d+$`), m1.ID)

	read, found, err := f.store.Messages.MarkRead(ctx, m1.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, read.Read)
	assert.Equal(t, m1.Timestamp, read.Timestamp)

	changed, err := f.store.Messages.MarkConversationRead(ctx, "EST-1234", "PSY-001")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	changed, err = f.store.Messages.MarkConversationRead(ctx, "EST-1234", "PSY-001")
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestStudentsRoster(t *testing.T) {
	store := NewDataStore(Deps{})

	students := store.Students()
	assert.Len(t, students, 8)
	students[0].Name = "changed"
	assert.Equal(t, "Ana Martínez", store.Students()[0].Name)

	s, ok := store.FindStudent("EST-9012")
	require.True(t, ok)
	assert.Equal(t, "Laura Gómez", s.Name)
	_, ok = store.FindStudent("EST-0000")
	assert.False(t, ok)
}

func TestCollectionLookup(t *testing.T) {
	store := NewDataStore(Deps{KeyPrefix: "test_"})

	assert.Len(t, store.Collections(), 10)
	c, err := store.Collection("psychopedagogy_sessions")
	require.NoError(t, err)
	assert.Equal(t, "test_psychopedagogy_sessions", c.Key())

	_, err = store.Collection("grades")
	assert.Error(t, err)
}

func TestMonotonicIDsNeverRepeat(t *testing.T) {
	g := NewMonotonicIDs()
	g.now = func() time.Time { return fixedNow }

	a := g.NewID("task")
	b := g.NewID("task")
	c := g.NewID("mood")
	assert.Equal(t, "task_1705744800000", a)
	assert.Equal(t, "task_1705744800001", b)
	assert.Equal(t, "mood_1705744800002", c)
}

func TestIDGeneratorStrategy(t *testing.T) {
	_, ok := NewIDGenerator("uuid").(RandomIDs)
	assert.True(t, ok)
	_, ok = NewIDGenerator("").(*MonotonicIDs)
	assert.True(t, ok)

	id := RandomIDs{}.NewID("psych_ref")
	assert.Regexp(t, `^psych_ref_[0-9a-f-]{36}$`, id)
}

func TestAddSkipsTakenID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, "wellness_system_tasks", `[{"id":"task_1705744800000","studentId":"EST-1234"}]`))

	added, err := f.store.Tasks.Add(ctx, practiceTask())
	require.NoError(t, err)
	assert.Equal(t, "task_1705744800001", added.ID)
}
