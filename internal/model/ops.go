package model

import "time"

// DayMetrics is the "today" dashboard payload: a pure fold over the day's
// appointments and flow states, recomputed on every call.
type DayMetrics struct {
	Date             string         `json:"date"`
	StatusCounts     map[string]int `json:"status_counts"`
	WaitingCount     int            `json:"waiting_count"`
	AvgWaitMinutes   int            `json:"avg_wait_minutes"`
	MaxWaitMinutes   int            `json:"max_wait_minutes"`
	AvgChairMinutes  int            `json:"avg_chair_minutes"`
	OnTimePercent    int            `json:"on_time_percent"`
	ChairUtilization int            `json:"chair_utilization_percent"`
	CompletedVisits  int            `json:"completed_visits"`
}

// RangeMetrics aggregates per-day folds across a week or month window.
type RangeMetrics struct {
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Days      []DayMetrics `json:"days"`

	TotalAppointments int            `json:"total_appointments"`
	StatusCounts      map[string]int `json:"status_counts"`
	AvgOnTimePercent  int            `json:"avg_on_time_percent"`

	ByProvider map[string]BreakdownRow `json:"by_provider"`
	ByType     map[string]BreakdownRow `json:"by_type"`
}

// BreakdownRow is one line of the provider / appointment-type tables.
type BreakdownRow struct {
	Appointments int `json:"appointments"`
	Completed    int `json:"completed"`
	Cancelled    int `json:"cancelled"`
	NoShows      int `json:"no_shows"`
}

// ChairUtilization is the point-in-time occupancy figure.
type ChairUtilization struct {
	Occupied     int `json:"occupied"`
	Active       int `json:"active"`
	OutOfService int `json:"out_of_service"`
	Percent      int `json:"percent"`
}

// OpsRangeQuery bounds a dashboard query.
type OpsRangeQuery struct {
	Start time.Time
	End   time.Time
}
