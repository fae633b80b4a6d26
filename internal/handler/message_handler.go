package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/service"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// MessageHandler exposes the shared messages page.
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler constructs handler.
func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// List godoc
// @Summary List messages
// @Description Messages the caller sent or received, optionally narrowed to one counterpart
// @Tags Messages
// @Produce json
// @Param with query string false "Counterpart user code"
// @Success 200 {object} response.Envelope
// @Router /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	messages, err := h.service.List(c.Request.Context(), actor, c.Query("with"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, messages)
}

// Conversations godoc
// @Summary List conversations
// @Tags Messages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/conversations [get]
func (h *MessageHandler) Conversations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	conversations, err := h.service.Conversations(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, conversations)
}

// Unread godoc
// @Summary Unread message count
// @Tags Messages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/unread [get]
func (h *MessageHandler) Unread(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	count, err := h.service.Unread(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"unread": count})
}

// Send godoc
// @Summary Send a message
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body service.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.SendMessageRequest
	if !bindJSON(c, &req, "message") {
		return
	}
	message, err := h.service.Send(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// MarkRead godoc
// @Summary Mark a message read
// @Tags Messages
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Router /messages/{id}/read [patch]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	message, err := h.service.MarkRead(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message)
}

// MarkConversationRead godoc
// @Summary Mark a whole conversation read
// @Tags Messages
// @Produce json
// @Param with path string true "Counterpart user code"
// @Success 200 {object} response.Envelope
// @Router /messages/conversations/{with}/read [post]
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	updated, err := h.service.MarkConversationRead(c.Request.Context(), actor, c.Param("with"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"updated": updated})
}
