package models

import "time"

// Urgency ranks how quickly a referral must be handled.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// IsValid reports whether the urgency is known.
func (u Urgency) IsValid() bool {
	return u == UrgencyHigh || u == UrgencyMedium || u == UrgencyLow
}

// ReferralStatus tracks a psychology referral: pending -> accepted -> in_progress -> completed.
type ReferralStatus string

const (
	ReferralPending    ReferralStatus = "pending"
	ReferralAccepted   ReferralStatus = "accepted"
	ReferralInProgress ReferralStatus = "in_progress"
	ReferralCompleted  ReferralStatus = "completed"
)

var referralOrder = map[ReferralStatus]int{
	ReferralPending:    0,
	ReferralAccepted:   1,
	ReferralInProgress: 2,
	ReferralCompleted:  3,
}

// IsValid reports whether the status is known.
func (s ReferralStatus) IsValid() bool {
	_, ok := referralOrder[s]
	return ok
}

// CanTransition only allows moving forward.
func (s ReferralStatus) CanTransition(to ReferralStatus) bool {
	from, ok := referralOrder[s]
	if !ok {
		return false
	}
	next, ok := referralOrder[to]
	return ok && next >= from
}

// PsychologyReferral hands a student over from a tutor to a psychologist.
type PsychologyReferral struct {
	ID                   string         `json:"id"`
	StudentID            string         `json:"studentId"`
	ReferredBy           string         `json:"referredBy"`
	Reason               string         `json:"reason"`
	Urgency              Urgency        `json:"urgency"`
	Symptoms             []string       `json:"symptoms"`
	PreviousSupport      string         `json:"previousSupport"`
	AcademicImpact       string         `json:"academicImpact"`
	Date                 string         `json:"date"`
	Status               ReferralStatus `json:"status"`
	AssignedPsychologist string         `json:"assignedPsychologist,omitempty"`
	CreatedAt            int64          `json:"createdAt"`
}

func (r PsychologyReferral) RecordID() string { return r.ID }
func (r PsychologyReferral) OwnerID() string  { return r.StudentID }

// Stamp assigns the identifier and creation time.
func (r *PsychologyReferral) Stamp(id string, at time.Time) {
	r.ID = id
	r.CreatedAt = Millis(at)
}

// CreatedAtMillis returns the creation timestamp.
func (r PsychologyReferral) CreatedAtMillis() int64 { return r.CreatedAt }

// PsychopedagogyReferralStatus: pending -> accepted -> in_evaluation -> completed.
type PsychopedagogyReferralStatus string

const (
	PsychopedagogyReferralPending      PsychopedagogyReferralStatus = "pending"
	PsychopedagogyReferralAccepted     PsychopedagogyReferralStatus = "accepted"
	PsychopedagogyReferralInEvaluation PsychopedagogyReferralStatus = "in_evaluation"
	PsychopedagogyReferralCompleted    PsychopedagogyReferralStatus = "completed"
)

var psychopedagogyReferralOrder = map[PsychopedagogyReferralStatus]int{
	PsychopedagogyReferralPending:      0,
	PsychopedagogyReferralAccepted:     1,
	PsychopedagogyReferralInEvaluation: 2,
	PsychopedagogyReferralCompleted:    3,
}

// IsValid reports whether the status is known.
func (s PsychopedagogyReferralStatus) IsValid() bool {
	_, ok := psychopedagogyReferralOrder[s]
	return ok
}

// CanTransition only allows moving forward.
func (s PsychopedagogyReferralStatus) CanTransition(to PsychopedagogyReferralStatus) bool {
	from, ok := psychopedagogyReferralOrder[s]
	if !ok {
		return false
	}
	next, ok := psychopedagogyReferralOrder[to]
	return ok && next >= from
}

// ReferrerRole is the role that created a psychopedagogy referral.
type ReferrerRole string

const (
	ReferrerPsychologist ReferrerRole = "psychologist"
	ReferrerTutor        ReferrerRole = "tutor"
)

// PsychopedagogyReferral hands a student over to a psychopedagogue.
type PsychopedagogyReferral struct {
	ID                      string                       `json:"id"`
	StudentID               string                       `json:"studentId"`
	ReferredBy              string                       `json:"referredBy"`
	ReferrerRole            ReferrerRole                 `json:"referrerRole"`
	Reason                  string                       `json:"reason"`
	Concerns                []string                     `json:"concerns"`
	AcademicImpact          string                       `json:"academicImpact"`
	PreviousInterventions   string                       `json:"previousInterventions"`
	Urgency                 Urgency                      `json:"urgency"`
	Date                    string                       `json:"date"`
	Status                  PsychopedagogyReferralStatus `json:"status"`
	AssignedPsychopedagogue string                       `json:"assignedPsychopedagogue,omitempty"`
	CreatedAt               int64                        `json:"createdAt"`
}

func (r PsychopedagogyReferral) RecordID() string { return r.ID }
func (r PsychopedagogyReferral) OwnerID() string  { return r.StudentID }

// Stamp assigns the identifier and creation time.
func (r *PsychopedagogyReferral) Stamp(id string, at time.Time) {
	r.ID = id
	r.CreatedAt = Millis(at)
}

// CreatedAtMillis returns the creation timestamp.
func (r PsychopedagogyReferral) CreatedAtMillis() int64 { return r.CreatedAt }
