package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/magpielabs/magpie/pkg/model"
)

// EntriesForContext returns entries ranked for context injection: confidence
// descending, then UpdatedAt descending, then ID ascending so the order is a
// total order. maxCount of 0 means unlimited. Whether memory is enabled at
// all is the caller's concern (Settings.MemoryEnabled).
func (u *UseCase) EntriesForContext(ctx context.Context, maxCount int) ([]*model.MemoryEntry, error) {
	entries, err := u.repo.ListEntries(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list entries for context")
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})

	if maxCount > 0 && len(entries) > maxCount {
		entries = entries[:maxCount]
	}
	return entries, nil
}

// BuildContextMessage renders entries as the numbered facts block injected
// into conversation context. Returns "" for an empty slice.
func BuildContextMessage(entries []*model.MemoryEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Known facts from memory:\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, e.Content)
	}
	return sb.String()
}
