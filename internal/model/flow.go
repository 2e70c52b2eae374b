package model

import (
	"time"

	"github.com/google/uuid"
)

// FlowStage is the intake/treatment-progress state of a single patient visit.
type FlowStage string

const (
	FlowStageScheduled  FlowStage = "scheduled"
	FlowStageCheckedIn  FlowStage = "checked_in"
	FlowStageWaiting    FlowStage = "waiting"
	FlowStageCalled     FlowStage = "called"
	FlowStageInChair    FlowStage = "in_chair"
	FlowStageCompleted  FlowStage = "completed"
	FlowStageCheckedOut FlowStage = "checked_out"
	FlowStageDeparted   FlowStage = "departed"
	FlowStageNoShow     FlowStage = "no_show"
	FlowStageCancelled  FlowStage = "cancelled"
)

// flowTransitions is the single adjacency table all flow updates go through.
// Stages only move forward; no_show and cancelled are reachable from any
// stage before the patient is in the chair.
var flowTransitions = map[FlowStage][]FlowStage{
	FlowStageScheduled:  {FlowStageCheckedIn, FlowStageNoShow, FlowStageCancelled},
	FlowStageCheckedIn:  {FlowStageWaiting, FlowStageCalled, FlowStageNoShow, FlowStageCancelled},
	FlowStageWaiting:    {FlowStageCalled, FlowStageInChair, FlowStageNoShow, FlowStageCancelled},
	FlowStageCalled:     {FlowStageInChair, FlowStageWaiting, FlowStageNoShow, FlowStageCancelled},
	FlowStageInChair:    {FlowStageCompleted, FlowStageCancelled},
	FlowStageCompleted:  {FlowStageCheckedOut, FlowStageDeparted},
	FlowStageCheckedOut: {FlowStageDeparted},
	FlowStageDeparted:   {},
	FlowStageNoShow:     {},
	FlowStageCancelled:  {},
}

// CanTransition reports whether the stage may move to next.
func (s FlowStage) CanTransition(next FlowStage) bool {
	for _, allowed := range flowTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the stage admits no further transitions.
func (s FlowStage) Terminal() bool {
	return len(flowTransitions[s]) == 0
}

// PatientFlowState is the 1:1 per-appointment record tracking intake
// progress. Timestamps are set only when the matching stage is entered.
type PatientFlowState struct {
	Base
	ClinicID             uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	AppointmentID        uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	PatientID            uuid.UUID  `db:"patient_id" json:"patient_id"`
	Stage                FlowStage  `db:"stage" json:"stage"`
	Priority             int        `db:"priority" json:"priority"`
	CheckedInAt          *time.Time `db:"checked_in_at" json:"checked_in_at,omitempty"`
	SeatedAt             *time.Time `db:"seated_at" json:"seated_at,omitempty"`
	CompletedAt          *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CheckedOutAt         *time.Time `db:"checked_out_at" json:"checked_out_at,omitempty"`
	DepartedAt           *time.Time `db:"departed_at" json:"departed_at,omitempty"`
	CurrentWaitStartedAt *time.Time `db:"current_wait_started_at" json:"current_wait_started_at,omitempty"`
}

// WaitStart returns the instant the current wait began, falling back to
// check-in time when no explicit wait start was stamped.
func (f *PatientFlowState) WaitStart() *time.Time {
	if f.CurrentWaitStartedAt != nil {
		return f.CurrentWaitStartedAt
	}
	return f.CheckedInAt
}

// WaitMinutes returns the elapsed whole minutes of the current wait as of
// now, or 0 when the visit has no wait reference point.
func (f *PatientFlowState) WaitMinutes(now time.Time) int {
	start := f.WaitStart()
	if start == nil {
		return 0
	}
	m := int(now.Sub(*start).Minutes())
	if m < 0 {
		return 0
	}
	return m
}

type TransitionFlowRequest struct {
	Stage    FlowStage  `json:"stage" validate:"required"`
	ChairID  *uuid.UUID `json:"chair_id"`
	Priority *int       `json:"priority" validate:"omitempty,min=0,max=10"`
}

type FlowFilters struct {
	ClinicID  uuid.UUID
	Stages    []FlowStage
	StartDate time.Time
	EndDate   time.Time
}
