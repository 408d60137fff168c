package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/magpielabs/magpie/pkg/model"
	"github.com/magpielabs/magpie/pkg/repository"
)

func TestLocalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	repo, err := repository.NewLocal(path)
	gt.NoError(t, err)

	entry := newEntry("Tokio is an async runtime for Rust", time.Now())
	gt.NoError(t, repo.PutEntry(ctx, entry))

	topic := &model.LearningTopic{
		ID:        model.NewTopicID(),
		Name:      "Rust async runtimes",
		Enabled:   true,
		CreatedAt: time.Now(),
	}
	gt.NoError(t, repo.PutTopic(ctx, topic))

	settings, err := repo.GetSettings(ctx)
	gt.NoError(t, err)
	settings.Schedule = model.ScheduleWeekly
	gt.NoError(t, repo.PutSettings(ctx, settings))

	// Reopen from the same file and verify everything survived
	reopened, err := repository.NewLocal(path)
	gt.NoError(t, err)

	got, err := reopened.GetEntry(ctx, entry.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Content, entry.Content)

	topics, err := reopened.ListTopics(ctx)
	gt.NoError(t, err)
	gt.A(t, topics).Length(1)
	gt.Equal(t, topics[0].Name, "Rust async runtimes")

	s, err := reopened.GetSettings(ctx)
	gt.NoError(t, err)
	gt.Equal(t, s.Schedule, model.ScheduleWeekly)
}

func TestLocalMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	ctx := context.Background()

	repo, err := repository.NewLocal(path)
	gt.NoError(t, err)

	entries, err := repo.ListEntries(ctx)
	gt.NoError(t, err)
	gt.A(t, entries).Length(0)
}

func TestLocalDeletePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	repo, err := repository.NewLocal(path)
	gt.NoError(t, err)

	entry := newEntry("temporary fact", time.Now())
	gt.NoError(t, repo.PutEntry(ctx, entry))
	gt.NoError(t, repo.DeleteEntry(ctx, entry.ID))

	reopened, err := repository.NewLocal(path)
	gt.NoError(t, err)
	_, err = reopened.GetEntry(ctx, entry.ID)
	gt.Error(t, err)
}
