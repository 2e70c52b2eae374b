package ops

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/orcadental/practice-api/internal/model"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 100, Percent(0, 0), "empty denominator reads as fully on time")
	assert.Equal(t, 100, Percent(5, 5))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 0, Percent(0, 4))
}

func day() time.Time {
	return time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
}

func apt(id uuid.UUID, start time.Time, status model.AppointmentStatus) *model.Appointment {
	return &model.Appointment{
		Base:      model.Base{ID: id},
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    status,
	}
}

func TestFoldDayEmpty(t *testing.T) {
	dm := foldDay(day(), nil, nil, day().Add(12*time.Hour))

	assert.Equal(t, "2026-06-10", dm.Date)
	assert.Equal(t, 0, dm.WaitingCount)
	assert.Equal(t, 0, dm.AvgWaitMinutes)
	assert.Equal(t, 100, dm.OnTimePercent)
	assert.Equal(t, 0, dm.CompletedVisits)
}

func TestFoldDayWaitingRoom(t *testing.T) {
	now := day().Add(10 * time.Hour)

	w1 := now.Add(-10 * time.Minute)
	w2 := now.Add(-30 * time.Minute)
	states := []*model.PatientFlowState{
		{Stage: model.FlowStageWaiting, CurrentWaitStartedAt: &w1},
		{Stage: model.FlowStageCalled, CurrentWaitStartedAt: &w2},
		{Stage: model.FlowStageScheduled},
	}

	dm := foldDay(day(), nil, states, now)

	assert.Equal(t, 2, dm.WaitingCount, "scheduled patients are not in the waiting room")
	assert.Equal(t, 20, dm.AvgWaitMinutes)
	assert.Equal(t, 30, dm.MaxWaitMinutes)
}

func TestFoldDayOnTime(t *testing.T) {
	now := day().Add(18 * time.Hour)
	id1, id2, id3 := uuid.New(), uuid.New(), uuid.New()

	start := day().Add(9 * time.Hour)
	appointments := []*model.Appointment{
		apt(id1, start, model.AppointmentStatusCompleted),
		apt(id2, start, model.AppointmentStatusCompleted),
		apt(id3, start, model.AppointmentStatusScheduled),
	}

	onTimeSeat := start.Add(DefaultOnTimeGrace) // exactly at the grace boundary
	lateSeat := start.Add(DefaultOnTimeGrace + time.Minute)
	done := start.Add(2 * time.Hour)

	states := []*model.PatientFlowState{
		{AppointmentID: id1, Stage: model.FlowStageDeparted, SeatedAt: &onTimeSeat, CompletedAt: &done},
		{AppointmentID: id2, Stage: model.FlowStageDeparted, SeatedAt: &lateSeat, CompletedAt: &done},
	}

	dm := foldDay(day(), appointments, states, now)

	assert.Equal(t, 50, dm.OnTimePercent, "one of two seatings was on time")
	assert.Equal(t, 2, dm.CompletedVisits)
	assert.Equal(t, 3, dm.StatusCounts["completed"]+dm.StatusCounts["scheduled"])
}

func TestFoldDayChairMinutes(t *testing.T) {
	now := day().Add(18 * time.Hour)
	id := uuid.New()

	seated := day().Add(9 * time.Hour)
	completed := seated.Add(45 * time.Minute)
	states := []*model.PatientFlowState{
		{AppointmentID: id, SeatedAt: &seated, CompletedAt: &completed},
	}

	dm := foldDay(day(), []*model.Appointment{apt(id, seated, model.AppointmentStatusCompleted)}, states, now)
	assert.Equal(t, 45, dm.AvgChairMinutes)
}
