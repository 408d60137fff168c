package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidSource = goerr.New("invalid memory source")
)

type MemoryID string

// NewMemoryID generates a new unique MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// Source identifies how a memory entry was created
type Source string

const (
	SourceManual       Source = "manual"
	SourceSelfLearning Source = "self-learning"
)

// Validate checks if the source is valid
func (s Source) Validate() error {
	switch s {
	case SourceManual, SourceSelfLearning:
		return nil
	default:
		return ErrInvalidSource
	}
}

// SeedConfidence returns the initial confidence for an entry created from this source
func (s Source) SeedConfidence() float64 {
	if s == SourceManual {
		return 0.8
	}
	return 0.6
}

// MemoryEntry is a confidence-scored fact in long-lived memory.
// Confidence stays within [0, 1]; it rises on use and decays with age.
type MemoryEntry struct {
	ID         MemoryID  `firestore:"id" json:"id"`
	Content    string    `firestore:"content" json:"content"`
	Tags       []string  `firestore:"tags" json:"tags"`
	Source     Source    `firestore:"source" json:"source"`
	Confidence float64   `firestore:"confidence" json:"confidence"`
	UseCount   int       `firestore:"use_count" json:"use_count"`
	CreatedAt  time.Time `firestore:"created_at" json:"created_at"`
	UpdatedAt  time.Time `firestore:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy so callers never share mutable state with the store.
func (e *MemoryEntry) Clone() *MemoryEntry {
	c := *e
	c.Tags = append([]string(nil), e.Tags...)
	return &c
}
