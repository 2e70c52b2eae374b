package ops

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
)

// DefaultOnTimeGrace is how late a patient can be seated after the scheduled
// start and still count as on time.
const DefaultOnTimeGrace = 15 * time.Minute

// Service computes the day/week/month dashboards. Every call re-scans the
// date-bounded row set; results are never cached or incrementally maintained.
type Service struct {
	appointmentRepo repository.AppointmentRepository
	flowRepo        repository.FlowRepository
	chairRepo       repository.ChairRepository
	now             func() time.Time
}

func NewService(
	appointmentRepo repository.AppointmentRepository,
	flowRepo repository.FlowRepository,
	chairRepo repository.ChairRepository,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		flowRepo:        flowRepo,
		chairRepo:       chairRepo,
		now:             time.Now,
	}
}

// TodayMetrics folds the current day's appointments and flow states into the
// live dashboard payload.
func (s *Service) TodayMetrics(ctx context.Context, clinicID uuid.UUID) (*model.DayMetrics, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	appointments, err := s.appointmentRepo.ListInRange(ctx, clinicID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	states, err := s.flowRepo.ListInRange(ctx, &model.FlowFilters{
		ClinicID:  clinicID,
		StartDate: dayStart,
		EndDate:   dayEnd,
	})
	if err != nil {
		return nil, err
	}

	metrics := foldDay(dayStart, appointments, states, now)

	util, err := s.Utilization(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	metrics.ChairUtilization = util.Percent

	return &metrics, nil
}

// WeekMetrics folds the last 7 days ending today.
func (s *Service) WeekMetrics(ctx context.Context, clinicID uuid.UUID) (*model.RangeMetrics, error) {
	end := s.dayStart().AddDate(0, 0, 1)
	return s.rangeMetrics(ctx, clinicID, end.AddDate(0, 0, -7), end)
}

// MonthMetrics folds the current calendar month to date.
func (s *Service) MonthMetrics(ctx context.Context, clinicID uuid.UUID) (*model.RangeMetrics, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.rangeMetrics(ctx, clinicID, start, s.dayStart().AddDate(0, 0, 1))
}

func (s *Service) dayStart() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *Service) rangeMetrics(ctx context.Context, clinicID uuid.UUID, start, end time.Time) (*model.RangeMetrics, error) {
	now := s.now()

	appointments, err := s.appointmentRepo.ListInRange(ctx, clinicID, start, end)
	if err != nil {
		return nil, err
	}

	states, err := s.flowRepo.ListInRange(ctx, &model.FlowFilters{
		ClinicID:  clinicID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return nil, err
	}

	statesByAppointment := make(map[uuid.UUID]*model.PatientFlowState, len(states))
	for _, fs := range states {
		statesByAppointment[fs.AppointmentID] = fs
	}

	out := &model.RangeMetrics{
		StartDate:    start.Format("2006-01-02"),
		EndDate:      end.AddDate(0, 0, -1).Format("2006-01-02"),
		StatusCounts: make(map[string]int),
		ByProvider:   make(map[string]model.BreakdownRow),
		ByType:       make(map[string]model.BreakdownRow),
	}

	// Per-day fold, same computation the today dashboard uses.
	onTimeSum, onTimeDays := 0, 0
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		dayEnd := day.AddDate(0, 0, 1)
		var dayAppointments []*model.Appointment
		var dayStates []*model.PatientFlowState
		for _, apt := range appointments {
			if !apt.StartTime.Before(day) && apt.StartTime.Before(dayEnd) {
				dayAppointments = append(dayAppointments, apt)
				if fs, ok := statesByAppointment[apt.ID]; ok {
					dayStates = append(dayStates, fs)
				}
			}
		}
		dm := foldDay(day, dayAppointments, dayStates, now)
		out.Days = append(out.Days, dm)
		if dm.CompletedVisits > 0 {
			onTimeSum += dm.OnTimePercent
			onTimeDays++
		}
	}

	for _, apt := range appointments {
		out.TotalAppointments++
		out.StatusCounts[string(apt.Status)]++
		out.ByProvider[apt.ProviderID.String()] = bumpRow(out.ByProvider[apt.ProviderID.String()], apt.Status)
		out.ByType[apt.AppointmentTypeID.String()] = bumpRow(out.ByType[apt.AppointmentTypeID.String()], apt.Status)
	}

	if onTimeDays > 0 {
		out.AvgOnTimePercent = int(math.Round(float64(onTimeSum) / float64(onTimeDays)))
	} else {
		out.AvgOnTimePercent = 100
	}

	return out, nil
}

func bumpRow(row model.BreakdownRow, status model.AppointmentStatus) model.BreakdownRow {
	row.Appointments++
	switch status {
	case model.AppointmentStatusCompleted:
		row.Completed++
	case model.AppointmentStatusCancelled:
		row.Cancelled++
	case model.AppointmentStatusNoShow:
		row.NoShows++
	}
	return row
}

// Utilization returns the point-in-time chair occupancy figure. Out-of-service
// chairs leave the denominator.
func (s *Service) Utilization(ctx context.Context, clinicID uuid.UUID) (*model.ChairUtilization, error) {
	chairs, err := s.chairRepo.List(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	util := &model.ChairUtilization{}
	for _, chair := range chairs {
		switch chair.Status {
		case model.ChairStatusOccupied:
			util.Occupied++
			util.Active++
		case model.ChairStatusAvailable:
			util.Active++
		case model.ChairStatusOutOfService:
			util.OutOfService++
		}
	}
	util.Percent = Percent(util.Occupied, util.Active)
	return util, nil
}

// foldDay is the pure per-day aggregation shared by all dashboards.
func foldDay(day time.Time, appointments []*model.Appointment, states []*model.PatientFlowState, now time.Time) model.DayMetrics {
	dm := model.DayMetrics{
		Date:         day.Format("2006-01-02"),
		StatusCounts: make(map[string]int),
	}

	scheduled := make(map[uuid.UUID]time.Time, len(appointments))
	for _, apt := range appointments {
		dm.StatusCounts[string(apt.Status)]++
		scheduled[apt.ID] = apt.StartTime
	}

	waitSum, waitCount := 0, 0
	chairSum, chairCount := 0, 0
	onTime, seated := 0, 0

	for _, fs := range states {
		switch fs.Stage {
		case model.FlowStageCheckedIn, model.FlowStageWaiting, model.FlowStageCalled:
			dm.WaitingCount++
			w := fs.WaitMinutes(now)
			waitSum += w
			waitCount++
			if w > dm.MaxWaitMinutes {
				dm.MaxWaitMinutes = w
			}
		}

		if fs.SeatedAt != nil {
			if start, ok := scheduled[fs.AppointmentID]; ok {
				seated++
				if !fs.SeatedAt.After(start.Add(DefaultOnTimeGrace)) {
					onTime++
				}
			}
		}

		if fs.CompletedAt != nil && fs.SeatedAt != nil {
			dm.CompletedVisits++
			chairSum += int(fs.CompletedAt.Sub(*fs.SeatedAt).Minutes())
			chairCount++
		}
	}

	if waitCount > 0 {
		dm.AvgWaitMinutes = waitSum / waitCount
	}
	if chairCount > 0 {
		dm.AvgChairMinutes = chairSum / chairCount
	}
	dm.OnTimePercent = Percent(onTime, seated)

	return dm
}

// Percent returns round(100*k/n), defaulting to 100 when n is zero so an
// empty day reads as fully on time rather than fully late.
func Percent(k, n int) int {
	if n == 0 {
		return 100
	}
	return int(math.Round(100 * float64(k) / float64(n)))
}
