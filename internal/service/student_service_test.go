package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

func TestStudentServiceListFilters(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewStudentService(store, nil)

	assert.Len(t, svc.List(models.StudentFilter{}), 8)
	assert.Len(t, svc.List(models.StudentFilter{Risk: models.RiskHigh}), 2)

	byName := svc.List(models.StudentFilter{Search: "laura"})
	require.Len(t, byName, 1)
	assert.Equal(t, "EST-9012", byName[0].StudentID)

	byCode := svc.List(models.StudentFilter{Search: "est-1234"})
	require.Len(t, byCode, 1)

	assert.Len(t, svc.List(models.StudentFilter{Program: "medicina"}), 1)

	_, err := svc.Get("EST-0000")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceProfile(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewStudentService(store, nil)
	ctx := context.Background()

	_, err := store.MoodEntries.Add(ctx, models.MoodEntry{StudentID: "EST-1234", Mood: 3})
	require.NoError(t, err)
	_, err = store.Tasks.Add(ctx, models.Task{StudentID: "EST-1234", Task: "Leer"})
	require.NoError(t, err)
	_, err = store.Tasks.Add(ctx, models.Task{StudentID: "EST-5678", Task: "Escribir"})
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, psychologistActor, "EST-1234")
	require.NoError(t, err)
	assert.Equal(t, "Ana Martínez", profile.Student.Name)
	assert.Len(t, profile.Tasks, 1)
	assert.Equal(t, 1, profile.Mood.Count)
	assert.Empty(t, profile.Sessions)

	_, err = svc.Profile(ctx, studentActor, "EST-5678")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	_, err = svc.Profile(ctx, adminActor, "EST-0000")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
