package model

import (
	"time"

	"github.com/google/uuid"
)

type RunID string

// NewRunID generates a new unique RunID
func NewRunID() RunID {
	return RunID(uuid.New().String())
}

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusError   RunStatus = "error"
)

// Terminal reports whether the run reached a final state.
func (s RunStatus) Terminal() bool {
	return s == RunStatusDone || s == RunStatusError
}

// LearningRun records one execution of the learning pipeline.
// A run is immutable once its status is terminal.
type LearningRun struct {
	ID              RunID      `firestore:"id" json:"id"`
	StartedAt       time.Time  `firestore:"started_at" json:"started_at"`
	CompletedAt     *time.Time `firestore:"completed_at" json:"completed_at,omitempty"`
	Status          RunStatus  `firestore:"status" json:"status"`
	TopicsProcessed []string   `firestore:"topics_processed" json:"topics_processed"`
	InsightsSaved   int        `firestore:"insights_saved" json:"insights_saved"`
	Error           string     `firestore:"error" json:"error,omitempty"`
}

// Clone returns a deep copy of the run record.
func (r *LearningRun) Clone() *LearningRun {
	c := *r
	c.TopicsProcessed = append([]string(nil), r.TopicsProcessed...)
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
