package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TopicID string

// NewTopicID generates a new unique TopicID
func NewTopicID() TopicID {
	return TopicID(uuid.New().String())
}

// LearningTopic is a subject the learning pipeline searches the web for.
// Only enabled topics participate in a run.
type LearningTopic struct {
	ID        TopicID   `firestore:"id" json:"id"`
	Name      string    `firestore:"name" json:"name"`
	Hint      string    `firestore:"hint" json:"hint"`
	Enabled   bool      `firestore:"enabled" json:"enabled"`
	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
}

// Query builds the search query for this topic: the name, refined by the
// optional hint when present.
func (t *LearningTopic) Query() string {
	if strings.TrimSpace(t.Hint) == "" {
		return t.Name
	}
	return t.Name + " " + t.Hint
}
