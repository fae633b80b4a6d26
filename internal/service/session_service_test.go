package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

func TestSessionServiceCompleteAndTransitions(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewSessionService(store.Sessions, nil, nil)
	ctx := context.Background()

	session, err := svc.Create(ctx, psychologistActor, CreateSessionRequest{
		StudentID: "EST-1234", Type: "Seguimiento", Date: "2024-01-22", Time: "10:00", Location: "Consultorio 3",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionPending, session.Status)
	assert.Equal(t, "60 min", session.Duration)
	assert.Equal(t, "PSY-001", session.PsychologistID)

	mood := 4
	done, err := svc.Complete(ctx, session.ID, CompleteSessionRequest{
		SessionNotes: "Buen avance", Agreements: []string{"Dormir 8 horas"}, StudentMood: &mood,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, done.Status)
	assert.Equal(t, []string{"Dormir 8 horas"}, done.Agreements)
	require.NotNil(t, done.StudentMood)
	assert.Equal(t, 4, *done.StudentMood)

	_, err = svc.Cancel(ctx, session.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))

	_, err = svc.Reschedule(ctx, session.ID, RescheduleSessionRequest{Date: "2024-01-30", Time: "09:00"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
}

func TestSessionServiceStudentScope(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewSessionService(store.Sessions, nil, nil)
	ctx := context.Background()

	other, err := svc.Create(ctx, psychologistActor, CreateSessionRequest{StudentID: "EST-5678", Type: "Inicial", Date: "2024-01-22", Time: "11:00"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, psychologistActor, CreateSessionRequest{StudentID: "EST-1234", Type: "Inicial", Date: "2024-01-23", Time: "11:00"})
	require.NoError(t, err)

	mine, err := svc.List(ctx, studentActor, "EST-5678")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "EST-1234", mine[0].StudentID)

	_, err = svc.Get(ctx, studentActor, other.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	all, err := svc.List(ctx, psychologistActor, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.Delete(ctx, other.ID))
	assert.True(t, appErrors.Is(svc.Delete(ctx, other.ID), appErrors.ErrNotFound))
}

func TestSessionServiceReschedule(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewSessionService(store.Sessions, nil, nil)
	ctx := context.Background()

	session, err := svc.Create(ctx, psychologistActor, CreateSessionRequest{StudentID: "EST-1234", Type: "Inicial", Date: "2024-01-22", Time: "11:00"})
	require.NoError(t, err)

	moved, err := svc.Reschedule(ctx, session.ID, RescheduleSessionRequest{Date: "2024-01-29", Time: "12:30", Location: "Sala 2"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-29", moved.Date)
	assert.Equal(t, "12:30", moved.Time)
	assert.Equal(t, "Sala 2", moved.Location)
	assert.Equal(t, session.CreatedAt, moved.CreatedAt)
}
