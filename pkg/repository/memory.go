package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/magpielabs/magpie/pkg/model"
)

// Memory is an in-process Repository backed by maps. Every value crossing the
// boundary is cloned, so readers never observe a partially mutated record even
// while a pipeline run is writing.
type Memory struct {
	mu       sync.RWMutex
	entries  map[model.MemoryID]*model.MemoryEntry
	topics   map[model.TopicID]*model.LearningTopic
	runs     map[model.RunID]*model.LearningRun
	settings *model.Settings
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[model.MemoryID]*model.MemoryEntry),
		topics:  make(map[model.TopicID]*model.LearningTopic),
		runs:    make(map[model.RunID]*model.LearningRun),
	}
}

func (r *Memory) PutEntry(ctx context.Context, entry *model.MemoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry.Clone()
	return nil
}

func (r *Memory) GetEntry(ctx context.Context, id model.MemoryID) (*model.MemoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return entry.Clone(), nil
}

func (r *Memory) ListEntries(ctx context.Context) ([]*model.MemoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*model.MemoryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e.Clone())
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (r *Memory) DeleteEntry(ctx context.Context, id model.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

func (r *Memory) ClearEntries(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[model.MemoryID]*model.MemoryEntry)
	return nil
}

func (r *Memory) PutTopic(ctx context.Context, topic *model.LearningTopic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := *topic
	r.topics[topic.ID] = &t
	return nil
}

func (r *Memory) GetTopic(ctx context.Context, id model.TopicID) (*model.LearningTopic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	topic, ok := r.topics[id]
	if !ok {
		return nil, ErrNotFound
	}
	t := *topic
	return &t, nil
}

func (r *Memory) ListTopics(ctx context.Context) ([]*model.LearningTopic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	topics := make([]*model.LearningTopic, 0, len(r.topics))
	for _, tp := range r.topics {
		t := *tp
		topics = append(topics, &t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if !topics[i].CreatedAt.Equal(topics[j].CreatedAt) {
			return topics[i].CreatedAt.Before(topics[j].CreatedAt)
		}
		return topics[i].ID < topics[j].ID
	})
	return topics, nil
}

func (r *Memory) DeleteTopic(ctx context.Context, id model.TopicID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.topics, id)
	return nil
}

func (r *Memory) PutRun(ctx context.Context, run *model.LearningRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run.Clone()
	return nil
}

func (r *Memory) GetRun(ctx context.Context, id model.RunID) (*model.LearningRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return run.Clone(), nil
}

func (r *Memory) ListRuns(ctx context.Context) ([]*model.LearningRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runs := make([]*model.LearningRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run.Clone())
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (r *Memory) DeleteRun(ctx context.Context, id model.RunID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, id)
	return nil
}

func (r *Memory) GetSettings(ctx context.Context) (*model.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return model.DefaultSettings(), nil
	}
	return r.settings.Clone(), nil
}

func (r *Memory) PutSettings(ctx context.Context, settings *model.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = settings.Clone()
	return nil
}
