package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/events"
	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/repository"
)

const eventBuffer = 32

type eventSource interface {
	Subscribe(filter events.Filter, buffer int) *events.Subscription
}

// EventsHandler streams store changes as Server-Sent Events.
type EventsHandler struct {
	source    eventSource
	heartbeat time.Duration
	logger    *zap.Logger
}

// NewEventsHandler constructs handler. A non-positive heartbeat defaults to 25s.
func NewEventsHandler(source eventSource, heartbeat time.Duration, logger *zap.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{source: source, heartbeat: heartbeat, logger: logger}
}

// Stream godoc
// @Summary Store change stream
// @Description Server-Sent Events; one "change" event per collection mutation
// @Tags Events
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sub := h.source.Subscribe(visibleTo(actor), eventBuffer)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.SSEvent("ready", gin.H{"role": actor.Role})
	c.Writer.Flush()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case e, open := <-sub.C():
			if !open {
				return false
			}
			c.SSEvent("change", e)
			return true
		case t := <-ticker.C:
			c.SSEvent("heartbeat", gin.H{"at": t.UTC()})
			return true
		}
	})
	h.logger.Debug("event stream closed", zap.String("user", actor.UserID))
}

// visibleTo hides report jobs and records of other users from students.
// Messages are matched on their participants.
func visibleTo(actor models.Actor) events.Filter {
	if actor.Role != models.RoleStudent {
		return nil
	}
	return func(e events.Event) bool {
		if e.Collection == repository.CollectionReportJobs {
			return false
		}
		return !e.Personal() || e.Involves(actor.UserID)
	}
}
