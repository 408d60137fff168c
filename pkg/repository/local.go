package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/magpielabs/magpie/pkg/model"
)

// Local is a Repository persisted to a single JSON file. It keeps the full
// state in memory and rewrites the file atomically after every mutation,
// which matches the whole-value replace semantics of the in-memory store.
type Local struct {
	path string
	mem  *Memory
}

type localState struct {
	Entries  []*model.MemoryEntry   `json:"entries"`
	Topics   []*model.LearningTopic `json:"topics"`
	Runs     []*model.LearningRun   `json:"runs"`
	Settings *model.Settings        `json:"settings,omitempty"`
}

// NewLocal opens (or creates) a file-backed repository at path
func NewLocal(path string) (*Local, error) {
	r := &Local{
		path: path,
		mem:  NewMemory(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, goerr.Wrap(err, "failed to read store file", goerr.V("path", path))
	}
	if len(data) == 0 {
		return r, nil
	}

	var state localState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, goerr.Wrap(err, "failed to parse store file", goerr.V("path", path))
	}

	ctx := context.Background()
	for _, e := range state.Entries {
		if err := r.mem.PutEntry(ctx, e); err != nil {
			return nil, err
		}
	}
	for _, t := range state.Topics {
		if err := r.mem.PutTopic(ctx, t); err != nil {
			return nil, err
		}
	}
	for _, run := range state.Runs {
		if err := r.mem.PutRun(ctx, run); err != nil {
			return nil, err
		}
	}
	if state.Settings != nil {
		if err := r.mem.PutSettings(ctx, state.Settings); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// save serializes the current state and replaces the file via rename so a
// crash mid-write never leaves a truncated store behind.
func (r *Local) save(ctx context.Context) error {
	entries, err := r.mem.ListEntries(ctx)
	if err != nil {
		return err
	}
	topics, err := r.mem.ListTopics(ctx)
	if err != nil {
		return err
	}
	runs, err := r.mem.ListRuns(ctx)
	if err != nil {
		return err
	}
	settings, err := r.mem.GetSettings(ctx)
	if err != nil {
		return err
	}

	state := localState{
		Entries:  entries,
		Topics:   topics,
		Runs:     runs,
		Settings: settings,
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal store state")
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "failed to create store directory", goerr.V("dir", dir))
		}
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write store file", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return goerr.Wrap(err, "failed to replace store file", goerr.V("path", r.path))
	}

	return nil
}

func (r *Local) PutEntry(ctx context.Context, entry *model.MemoryEntry) error {
	if err := r.mem.PutEntry(ctx, entry); err != nil {
		return err
	}
	return r.save(ctx)
}

func (r *Local) GetEntry(ctx context.Context, id model.MemoryID) (*model.MemoryEntry, error) {
	return r.mem.GetEntry(ctx, id)
}

func (r *Local) ListEntries(ctx context.Context) ([]*model.MemoryEntry, error) {
	return r.mem.ListEntries(ctx)
}

func (r *Local) DeleteEntry(ctx context.Context, id model.MemoryID) error {
	if err := r.mem.DeleteEntry(ctx, id); err != nil {
		return err
	}
	return r.save(ctx)
}

func (r *Local) ClearEntries(ctx context.Context) error {
	if err := r.mem.ClearEntries(ctx); err != nil {
		return err
	}
	return r.save(ctx)
}

func (r *Local) PutTopic(ctx context.Context, topic *model.LearningTopic) error {
	if err := r.mem.PutTopic(ctx, topic); err != nil {
		return err
	}
	return r.save(ctx)
}

func (r *Local) GetTopic(ctx context.Context, id model.TopicID) (*model.LearningTopic, error) {
	return r.mem.GetTopic(ctx, id)
}

func (r *Local) ListTopics(ctx context.Context) ([]*model.LearningTopic, error) {
	return r.mem.ListTopics(ctx)
}

func (r *Local) DeleteTopic(ctx context.Context, id model.TopicID) error {
	if err := r.mem.DeleteTopic(ctx, id); err != nil {
		return err
	}
	return r.save(ctx)
}

func (r *Local) PutRun(ctx context.Context, run *model.LearningRun) error {
	if err := r.mem.PutRun(ctx, run); err != nil {
		return err
	}
	return r.save(ctx)
}

func (r *Local) GetRun(ctx context.Context, id model.RunID) (*model.LearningRun, error) {
	return r.mem.GetRun(ctx, id)
}

func (r *Local) ListRuns(ctx context.Context) ([]*model.LearningRun, error) {
	return r.mem.ListRuns(ctx)
}

func (r *Local) DeleteRun(ctx context.Context, id model.RunID) error {
	if err := r.mem.DeleteRun(ctx, id); err != nil {
		return err
	}
	return r.save(ctx)
}

func (r *Local) GetSettings(ctx context.Context) (*model.Settings, error) {
	return r.mem.GetSettings(ctx)
}

func (r *Local) PutSettings(ctx context.Context, settings *model.Settings) error {
	if err := r.mem.PutSettings(ctx, settings); err != nil {
		return err
	}
	return r.save(ctx)
}
