package models

import "time"

// PsychopedagogySessionType classifies a psychopedagogy appointment.
type PsychopedagogySessionType string

const (
	PsychopedagogyEvaluation   PsychopedagogySessionType = "evaluation"
	PsychopedagogyFollowUp     PsychopedagogySessionType = "follow-up"
	PsychopedagogyIntervention PsychopedagogySessionType = "intervention"
)

// PsychopedagogySession is created scheduled and completed by filling its observation fields.
type PsychopedagogySession struct {
	ID                string                    `json:"id"`
	StudentID         string                    `json:"studentId"`
	PsychopedagogueID string                    `json:"psychopedagogueId"`
	Date              string                    `json:"date"`
	Time              string                    `json:"time"`
	Duration          string                    `json:"duration"`
	Type              PsychopedagogySessionType `json:"type"`
	Objectives        string                    `json:"objectives"`
	Activities        string                    `json:"activities"`
	Observations      string                    `json:"observations"`
	Progress          string                    `json:"progress"`
	NextSteps         string                    `json:"nextSteps"`
	Status            ScheduleStatus            `json:"status"`
	CreatedAt         int64                     `json:"createdAt"`
}

func (s PsychopedagogySession) RecordID() string { return s.ID }
func (s PsychopedagogySession) OwnerID() string  { return s.StudentID }

// Stamp assigns the identifier and creation time.
func (s *PsychopedagogySession) Stamp(id string, at time.Time) {
	s.ID = id
	s.CreatedAt = Millis(at)
}

// CreatedAtMillis returns the creation timestamp.
func (s PsychopedagogySession) CreatedAtMillis() int64 { return s.CreatedAt }

// DifficultyArea names the academic skill affected.
type DifficultyArea string

const (
	AreaReading      DifficultyArea = "reading"
	AreaMemory       DifficultyArea = "memory"
	AreaOrganization DifficultyArea = "organization"
	AreaAttention    DifficultyArea = "attention"
	AreaStudy        DifficultyArea = "study"
)

// LearningDifficulty is one identified difficulty inside a support plan.
type LearningDifficulty struct {
	Area         DifficultyArea `json:"area" validate:"required,oneof=reading memory organization attention study"`
	Level        RiskLevel      `json:"level" validate:"required,oneof=low medium high"`
	Description  string         `json:"description" validate:"required"`
	Observations string         `json:"observations"`
}

// PlanStatus tracks a support plan.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanSuspended PlanStatus = "suspended"
)

// IsValid reports whether the status is known.
func (s PlanStatus) IsValid() bool {
	return s == PlanActive || s == PlanCompleted || s == PlanSuspended
}

// SupportPlan is the academic-support document authored by a psychopedagogue.
type SupportPlan struct {
	ID                 string               `json:"id"`
	StudentID          string               `json:"studentId"`
	PsychopedagogueID  string               `json:"psychopedagogueId"`
	CreatedDate        string               `json:"createdDate"`
	Difficulties       []LearningDifficulty `json:"difficulties"`
	GeneralObjectives  string               `json:"generalObjectives"`
	SpecificObjectives []string             `json:"specificObjectives"`
	Strategies         []string             `json:"strategies"`
	Recommendations    []string             `json:"recommendations"`
	EvaluationCriteria string               `json:"evaluationCriteria"`
	ReviewDate         string               `json:"reviewDate"`
	Status             PlanStatus           `json:"status"`
	CreatedAt          int64                `json:"createdAt"`
}

func (p SupportPlan) RecordID() string { return p.ID }
func (p SupportPlan) OwnerID() string  { return p.StudentID }

// Stamp assigns the identifier and creation time.
func (p *SupportPlan) Stamp(id string, at time.Time) {
	p.ID = id
	p.CreatedAt = Millis(at)
	if p.CreatedDate == "" {
		p.CreatedDate = DateOnly(at)
	}
}

// CreatedAtMillis returns the creation timestamp.
func (p SupportPlan) CreatedAtMillis() int64 { return p.CreatedAt }
