package service

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

type messageStore interface {
	List(ctx context.Context, key string) ([]models.Message, error)
	Get(ctx context.Context, id string) (models.Message, bool, error)
	Add(ctx context.Context, rec models.Message) (models.Message, error)
	MarkRead(ctx context.Context, id string) (models.Message, bool, error)
	MarkConversationRead(ctx context.Context, userID, counterpart string) (int, error)
}

// SendMessageRequest is posted from any messages page.
type SendMessageRequest struct {
	To      string `json:"to" validate:"required"`
	Content string `json:"content" validate:"required,max=2000"`
}

// MessageService exchanges notes between users.
type MessageService struct {
	repo      messageStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessageService constructs the message service.
func NewMessageService(repo messageStore, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{repo: repo, validator: validate, logger: logger}
}

// List returns every message the caller sent or received, optionally only
// those exchanged with counterpart.
func (s *MessageService) List(ctx context.Context, actor models.Actor, counterpart string) ([]models.Message, error) {
	msgs, err := s.repo.List(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(err, "list messages")
	}
	if counterpart == "" {
		return msgs, nil
	}
	return lo.Filter(msgs, func(m models.Message, _ int) bool { return m.Counterpart(actor.UserID) == counterpart }), nil
}

// Conversations groups the caller's messages by counterpart, most recent first.
func (s *MessageService) Conversations(ctx context.Context, actor models.Actor) ([]models.Conversation, error) {
	msgs, err := s.repo.List(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(err, "list messages")
	}
	grouped := lo.GroupBy(msgs, func(m models.Message) string { return m.Counterpart(actor.UserID) })
	conversations := make([]models.Conversation, 0, len(grouped))
	for counterpart, thread := range grouped {
		conversations = append(conversations, models.Conversation{
			UserID:      counterpart,
			LastMessage: thread[len(thread)-1],
			Unread:      lo.CountBy(thread, func(m models.Message) bool { return !m.Read && m.To == actor.UserID }),
			Total:       len(thread),
		})
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.Timestamp > conversations[j].LastMessage.Timestamp
	})
	return conversations, nil
}

// Unread counts messages addressed to the caller that are still unread.
func (s *MessageService) Unread(ctx context.Context, actor models.Actor) (int, error) {
	msgs, err := s.repo.List(ctx, actor.UserID)
	if err != nil {
		return 0, storeError(err, "list messages")
	}
	return lo.CountBy(msgs, func(m models.Message) bool { return !m.Read && m.To == actor.UserID }), nil
}

// Send stores a new unread message from the caller.
func (s *MessageService) Send(ctx context.Context, actor models.Actor, req SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "message")
	}
	if req.To == actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot message yourself")
	}
	msg, err := s.repo.Add(ctx, models.Message{From: actor.UserID, To: req.To, Content: req.Content})
	if err != nil {
		return nil, storeError(err, "send message")
	}
	return &msg, nil
}

// MarkRead flags a message addressed to the caller as read.
func (s *MessageService) MarkRead(ctx context.Context, actor models.Actor, id string) (*models.Message, error) {
	msg, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "load message")
	}
	if !found || !msg.Involves(actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "message not found")
	}
	if msg.To != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the recipient can mark a message read")
	}
	if msg.Read {
		return &msg, nil
	}
	updated, _, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, storeError(err, "mark message read")
	}
	return &updated, nil
}

// MarkConversationRead flags every message from counterpart as read.
func (s *MessageService) MarkConversationRead(ctx context.Context, actor models.Actor, counterpart string) (int, error) {
	changed, err := s.repo.MarkConversationRead(ctx, actor.UserID, counterpart)
	if err != nil {
		return 0, storeError(err, "mark conversation read")
	}
	return changed, nil
}
