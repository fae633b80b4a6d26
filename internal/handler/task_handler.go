package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/service"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// TaskHandler exposes homework assigned in sessions.
type TaskHandler struct {
	service *service.TaskService
}

// taskActionRequest is the student PATCH body.
type taskActionRequest struct {
	Action  string `json:"action" binding:"required,oneof=toggle comment"`
	Comment string `json:"comment"`
}

// NewTaskHandler constructs handler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// List godoc
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Param studentId query string false "Student code (staff only)"
// @Success 200 {object} response.Envelope
// @Router /student/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	tasks, err := h.service.List(c.Request.Context(), actor, studentScope(c, actor))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tasks)
}

// Update godoc
// @Summary Toggle or comment a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body taskActionRequest true "Action"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /student/tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req taskActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "action must be toggle or comment"))
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	var err error
	var result interface{}
	switch req.Action {
	case "toggle":
		result, err = h.service.Toggle(ctx, actor, id)
	default:
		result, err = h.service.Comment(ctx, actor, id, service.TaskCommentRequest{Comment: req.Comment})
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Assign godoc
// @Summary Assign a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body service.AssignTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Router /psychologist/tasks [post]
func (h *TaskHandler) Assign(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.AssignTaskRequest
	if !bindJSON(c, &req, "task") {
		return
	}
	task, err := h.service.Assign(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// Feedback godoc
// @Summary Give feedback on a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body service.TaskFeedbackRequest true "Feedback"
// @Success 200 {object} response.Envelope
// @Router /psychologist/tasks/{id}/feedback [post]
func (h *TaskHandler) Feedback(c *gin.Context) {
	var req service.TaskFeedbackRequest
	if !bindJSON(c, &req, "task") {
		return
	}
	task, err := h.service.Feedback(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, task)
}

// Delete godoc
// @Summary Delete a task
// @Tags Tasks
// @Param id path string true "Task ID"
// @Success 204
// @Router /psychologist/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
