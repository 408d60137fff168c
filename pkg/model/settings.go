package model

import "time"

const (
	// DefaultMaxPagesPerTopic bounds how many search hits are fetched per topic.
	DefaultMaxPagesPerTopic = 2
	// MaxPagesPerTopicLimit is the hard upper bound for the setting.
	MaxPagesPerTopicLimit = 5
)

// Settings is the persisted configuration of the memory and learning features.
type Settings struct {
	MemoryEnabled    bool       `firestore:"memory_enabled" json:"memory_enabled"`
	LearningEnabled  bool       `firestore:"learning_enabled" json:"learning_enabled"`
	Schedule         Schedule   `firestore:"schedule" json:"schedule"`
	MaxPagesPerTopic int        `firestore:"max_pages_per_topic" json:"max_pages_per_topic"`
	LastRunAt        *time.Time `firestore:"last_run_at" json:"last_run_at,omitempty"`
}

// DefaultSettings returns the settings used before the user configures anything.
func DefaultSettings() *Settings {
	return &Settings{
		MemoryEnabled:    true,
		LearningEnabled:  true,
		Schedule:         ScheduleManual,
		MaxPagesPerTopic: DefaultMaxPagesPerTopic,
	}
}

// PagesPerTopic returns MaxPagesPerTopic clamped to the valid range [1, 5].
func (s *Settings) PagesPerTopic() int {
	n := s.MaxPagesPerTopic
	if n < 1 {
		n = DefaultMaxPagesPerTopic
	}
	if n > MaxPagesPerTopicLimit {
		n = MaxPagesPerTopicLimit
	}
	return n
}

// Clone returns a deep copy of the settings.
func (s *Settings) Clone() *Settings {
	c := *s
	if s.LastRunAt != nil {
		t := *s.LastRunAt
		c.LastRunAt = &t
	}
	return &c
}
