package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidSchedule = goerr.New("invalid schedule")
)

// Schedule controls how often the learning pipeline runs automatically.
type Schedule string

const (
	ScheduleManual Schedule = "manual"
	ScheduleHourly Schedule = "hourly"
	ScheduleDaily  Schedule = "daily"
	ScheduleWeekly Schedule = "weekly"
)

// Validate checks if the schedule is valid
func (s Schedule) Validate() error {
	switch s {
	case ScheduleManual, ScheduleHourly, ScheduleDaily, ScheduleWeekly:
		return nil
	default:
		return ErrInvalidSchedule
	}
}

// Interval returns the automatic run interval for the schedule. The second
// return value is false for ScheduleManual, which never runs automatically.
func (s Schedule) Interval() (time.Duration, bool) {
	switch s {
	case ScheduleHourly:
		return time.Hour, true
	case ScheduleDaily:
		return 24 * time.Hour, true
	case ScheduleWeekly:
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}
