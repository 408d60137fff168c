package learning_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/magpielabs/magpie/pkg/model"
	"github.com/magpielabs/magpie/pkg/usecase/learning"
)

func TestIsDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	cases := []struct {
		name      string
		schedule  model.Schedule
		lastRunAt *time.Time
		due       bool
	}{
		{"manual never due", model.ScheduleManual, nil, false},
		{"manual never due with baseline", model.ScheduleManual, ago(100 * time.Hour), false},
		{"no baseline is immediately due", model.ScheduleDaily, nil, true},
		{"daily at 23h not due", model.ScheduleDaily, ago(23 * time.Hour), false},
		{"daily at exactly 24h due", model.ScheduleDaily, ago(24 * time.Hour), true},
		{"daily at 25h due", model.ScheduleDaily, ago(25 * time.Hour), true},
		{"hourly at 59m not due", model.ScheduleHourly, ago(59 * time.Minute), false},
		{"hourly at 61m due", model.ScheduleHourly, ago(61 * time.Minute), true},
		{"weekly at 6d not due", model.ScheduleWeekly, ago(6 * 24 * time.Hour), false},
		{"weekly at 8d due", model.ScheduleWeekly, ago(8 * 24 * time.Hour), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, learning.IsDue(tc.schedule, tc.lastRunAt, now), tc.due)
		})
	}
}
