package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

func TestMessageServiceConversations(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewMessageService(store.Messages, nil, nil)
	ctx := context.Background()

	first, err := svc.Send(ctx, psychologistActor, SendMessageRequest{To: "EST-1234", Content: "¿Cómo estás?"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, studentActor, SendMessageRequest{To: "PSY-001", Content: "Mejor, gracias"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, tutorActor, SendMessageRequest{To: "EST-1234", Content: "Recuerda la tutoría"})
	require.NoError(t, err)

	all, err := svc.List(ctx, studentActor, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	withPsy, err := svc.List(ctx, studentActor, "PSY-001")
	require.NoError(t, err)
	assert.Len(t, withPsy, 2)

	convs, err := svc.Conversations(ctx, studentActor)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	byUser := map[string]models.Conversation{}
	for _, c := range convs {
		byUser[c.UserID] = c
	}
	assert.Equal(t, 1, byUser["PSY-001"].Unread)
	assert.Equal(t, 2, byUser["PSY-001"].Total)
	assert.Equal(t, 1, byUser["TUT-001"].Unread)

	unread, err := svc.Unread(ctx, studentActor)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	_, err = svc.MarkRead(ctx, psychologistActor, first.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	_, err = svc.MarkRead(ctx, tutorActor, first.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	read, err := svc.MarkRead(ctx, studentActor, first.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	changed, err := svc.MarkConversationRead(ctx, studentActor, "TUT-001")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	unread, err = svc.Unread(ctx, studentActor)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMessageServiceValidation(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewMessageService(store.Messages, nil, nil)

	_, err := svc.Send(context.Background(), studentActor, SendMessageRequest{To: "PSY-001"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	_, err = svc.Send(context.Background(), studentActor, SendMessageRequest{To: "EST-1234", Content: "hola"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
