package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/service"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// StudentHandler serves the roster.
type StudentHandler struct {
	service *service.StudentService
}

// NewStudentHandler constructs handler.
func NewStudentHandler(svc *service.StudentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Name or student code"
// @Param risk query string false "high, medium or low"
// @Param program query string false "Program"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:  c.Query("search"),
		Risk:    models.RiskLevel(strings.ToLower(c.Query("risk"))),
		Program: c.Query("program"),
	}
	if filter.Risk != "" && !filter.Risk.IsValid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "risk must be high, medium or low"))
		return
	}
	students := h.service.List(filter)
	response.OK(c, students, map[string]interface{}{"total": len(students)})
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param studentId path string true "Student code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentId} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.service.Get(c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Profile godoc
// @Summary Student detail page
// @Description Roster entry plus moods, sessions, tasks, tutoring and plans
// @Tags Students
// @Produce json
// @Param studentId path string true "Student code"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/profile [get]
func (h *StudentHandler) Profile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), actor, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}
