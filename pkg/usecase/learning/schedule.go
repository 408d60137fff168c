package learning

import (
	"context"
	"time"

	"github.com/magpielabs/magpie/pkg/model"
	"github.com/magpielabs/magpie/pkg/utils/logging"
)

// IsDue reports whether an automatic run should start now. Manual schedules
// are never automatically due. An unset baseline means the schedule has never
// completed a run, which is immediately due.
func IsDue(schedule model.Schedule, lastRunAt *time.Time, now time.Time) bool {
	interval, ok := schedule.Interval()
	if !ok {
		return false
	}
	if lastRunAt == nil {
		return true
	}
	return now.Sub(*lastRunAt) >= interval
}

// CheckAndRunIfDue triggers a run when learning is enabled and the schedule
// is due. It is fire-and-forget: run errors are logged and recorded in the
// ledger but never returned. Intended to be called once at process start and
// then on a periodic timer by the caller.
func (u *UseCase) CheckAndRunIfDue(ctx context.Context) {
	logger := logging.From(ctx)

	settings, err := u.repo.GetSettings(ctx)
	if err != nil {
		logger.Warn("failed to load settings for schedule check", "error", err)
		return
	}

	if !settings.LearningEnabled {
		return
	}
	if !IsDue(settings.Schedule, settings.LastRunAt, u.now()) {
		return
	}

	logger.Info("schedule is due, starting learning run", "schedule", settings.Schedule)
	if _, err := u.Run(ctx); err != nil {
		logger.Warn("scheduled learning run failed", "error", err)
	}
}
