package repository

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/magpielabs/magpie/pkg/model"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = goerr.New("record not found")
)

// Repository is the keyed persistence layer for memory entries, learning
// topics, run history and settings. Collections are independent; no
// cross-collection transactionality is assumed.
type Repository interface {
	// PutEntry inserts or replaces a memory entry as a whole value
	PutEntry(ctx context.Context, entry *model.MemoryEntry) error

	// GetEntry retrieves an entry by ID, returning ErrNotFound when absent
	GetEntry(ctx context.Context, id model.MemoryID) (*model.MemoryEntry, error)

	// ListEntries retrieves all memory entries
	ListEntries(ctx context.Context) ([]*model.MemoryEntry, error)

	// DeleteEntry removes an entry; deleting a missing entry is not an error
	DeleteEntry(ctx context.Context, id model.MemoryID) error

	// ClearEntries removes all memory entries
	ClearEntries(ctx context.Context) error

	// PutTopic inserts or replaces a learning topic
	PutTopic(ctx context.Context, topic *model.LearningTopic) error

	// GetTopic retrieves a topic by ID, returning ErrNotFound when absent
	GetTopic(ctx context.Context, id model.TopicID) (*model.LearningTopic, error)

	// ListTopics retrieves all topics in creation order
	ListTopics(ctx context.Context) ([]*model.LearningTopic, error)

	// DeleteTopic removes a topic
	DeleteTopic(ctx context.Context, id model.TopicID) error

	// PutRun inserts or replaces a learning run record
	PutRun(ctx context.Context, run *model.LearningRun) error

	// GetRun retrieves a run by ID, returning ErrNotFound when absent
	GetRun(ctx context.Context, id model.RunID) (*model.LearningRun, error)

	// ListRuns retrieves run records, newest first
	ListRuns(ctx context.Context) ([]*model.LearningRun, error)

	// DeleteRun removes a run record
	DeleteRun(ctx context.Context, id model.RunID) error

	// GetSettings retrieves the persisted settings, or defaults when unset
	GetSettings(ctx context.Context) (*model.Settings, error)

	// PutSettings replaces the persisted settings
	PutSettings(ctx context.Context, settings *model.Settings) error
}
