package learning

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/magpielabs/magpie/pkg/model"
)

// startRun opens a new running ledger record and truncates the history to the
// most recent 20 runs.
func (u *UseCase) startRun(ctx context.Context, topicNames []string) (*model.LearningRun, error) {
	run := &model.LearningRun{
		ID:              model.NewRunID(),
		StartedAt:       u.now(),
		Status:          model.RunStatusRunning,
		TopicsProcessed: topicNames,
	}

	if err := u.repo.PutRun(ctx, run); err != nil {
		return nil, goerr.Wrap(err, "failed to record run start")
	}

	runs, err := u.repo.ListRuns(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list runs for truncation")
	}
	for _, old := range runs[min(len(runs), maxRunHistory):] {
		if err := u.repo.DeleteRun(ctx, old.ID); err != nil {
			return nil, goerr.Wrap(err, "failed to drop old run", goerr.V("id", old.ID))
		}
	}

	return run, nil
}

// completeRun transitions the run to done and advances the schedule baseline
// so the next automatic run waits a full interval from this completion.
func (u *UseCase) completeRun(ctx context.Context, id model.RunID, insightsSaved int) error {
	run, err := u.repo.GetRun(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to load run for completion", goerr.V("id", id))
	}

	completedAt := u.now()
	run.Status = model.RunStatusDone
	run.CompletedAt = &completedAt
	run.InsightsSaved = insightsSaved
	if err := u.repo.PutRun(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to record run completion", goerr.V("id", id))
	}

	settings, err := u.repo.GetSettings(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load settings for baseline update")
	}
	settings.LastRunAt = &completedAt
	if err := u.repo.PutSettings(ctx, settings); err != nil {
		return goerr.Wrap(err, "failed to advance schedule baseline")
	}

	return nil
}

// failRun transitions the run to error. The schedule baseline is deliberately
// left untouched so an overdue schedule retries on the next due-check instead
// of waiting another full interval.
func (u *UseCase) failRun(ctx context.Context, id model.RunID, message string) error {
	run, err := u.repo.GetRun(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to load run for failure", goerr.V("id", id))
	}

	completedAt := u.now()
	run.Status = model.RunStatusError
	run.CompletedAt = &completedAt
	run.Error = message
	if err := u.repo.PutRun(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to record run failure", goerr.V("id", id))
	}

	return nil
}

// History returns the run ledger, newest first.
func (u *UseCase) History(ctx context.Context) ([]*model.LearningRun, error) {
	return u.repo.ListRuns(ctx)
}
