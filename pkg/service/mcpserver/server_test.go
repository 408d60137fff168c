package mcpserver

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/magpielabs/magpie/pkg/model"
)

func TestEntryMatches(t *testing.T) {
	entry := &model.MemoryEntry{
		Content: "Tokio multiplexes tasks onto a work-stealing thread pool",
		Tags:    []string{"Rust async", "self-learning"},
	}

	gt.True(t, entryMatches(entry, "tokio"))
	gt.True(t, entryMatches(entry, "work-stealing"))
	gt.True(t, entryMatches(entry, "rust async"))
	gt.False(t, entryMatches(entry, "golang"))
}

func TestEntryToMap(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := &model.MemoryEntry{
		ID:         model.MemoryID("abc"),
		Content:    "some fact",
		Source:     model.SourceManual,
		Confidence: 0.8,
		UseCount:   3,
		UpdatedAt:  now,
	}

	m := entryToMap(entry)
	gt.Equal(t, m["id"], any(model.MemoryID("abc")))
	gt.Equal(t, m["confidence"], 0.8)
	gt.Equal(t, m["use_count"], 3)
	gt.Equal(t, m["updated_at"], "2025-06-01T12:00:00Z")
}
