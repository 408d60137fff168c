package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/magpielabs/magpie/pkg/model"
	"github.com/magpielabs/magpie/pkg/repository"
)

// AddEntry stores a new fact. Confidence is seeded by source (manual 0.8,
// self-learning 0.6). Uniqueness is not checked here; near-duplicate
// suppression happens upstream in the learning pipeline.
func (u *UseCase) AddEntry(ctx context.Context, content string, tags []string, source model.Source) (*model.MemoryEntry, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, goerr.New("memory content must not be empty")
	}

	now := u.now()
	entry := &model.MemoryEntry{
		ID:         model.NewMemoryID(),
		Content:    content,
		Tags:       append([]string(nil), tags...),
		Source:     source,
		Confidence: source.SeedConfidence(),
		UseCount:   0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := u.repo.PutEntry(ctx, entry); err != nil {
		return nil, goerr.Wrap(err, "failed to save memory entry")
	}

	return entry, nil
}

// Boost raises an entry's confidence by delta (clamped to 1), marks it used
// and touches UpdatedAt. Boosting a missing entry is a no-op.
func (u *UseCase) Boost(ctx context.Context, id model.MemoryID, delta float64) error {
	entry, err := u.repo.GetEntry(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return goerr.Wrap(err, "failed to load entry for boost", goerr.V("id", id))
	}

	entry.Confidence = clamp01(entry.Confidence + delta)
	entry.UseCount++
	entry.UpdatedAt = u.now()

	if err := u.repo.PutEntry(ctx, entry); err != nil {
		return goerr.Wrap(err, "failed to save boosted entry", goerr.V("id", id))
	}
	return nil
}

// Decay lowers every entry's confidence in proportion to how long it has gone
// unused (rate per week of staleness) and prunes entries that fall below the
// threshold. Intended to run periodically, not per request. Returns the
// number of decayed and pruned entries.
func (u *UseCase) Decay(ctx context.Context, rate, pruneBelow float64) (decayed, pruned int, err error) {
	entries, err := u.repo.ListEntries(ctx)
	if err != nil {
		return 0, 0, goerr.Wrap(err, "failed to list entries for decay")
	}

	now := u.now()
	for _, entry := range entries {
		ageWeeks := now.Sub(entry.UpdatedAt).Hours() / (24 * 7)
		if ageWeeks < 0 {
			ageWeeks = 0
		}

		confidence := clamp01(entry.Confidence - rate*ageWeeks)
		if confidence < pruneBelow {
			if err := u.repo.DeleteEntry(ctx, entry.ID); err != nil {
				return decayed, pruned, goerr.Wrap(err, "failed to prune entry", goerr.V("id", entry.ID))
			}
			pruned++
			continue
		}

		if confidence != entry.Confidence {
			entry.Confidence = confidence
			if err := u.repo.PutEntry(ctx, entry); err != nil {
				return decayed, pruned, goerr.Wrap(err, "failed to save decayed entry", goerr.V("id", entry.ID))
			}
			decayed++
		}
	}

	return decayed, pruned, nil
}

// Delete removes a single entry
func (u *UseCase) Delete(ctx context.Context, id model.MemoryID) error {
	return u.repo.DeleteEntry(ctx, id)
}

// Clear removes all entries
func (u *UseCase) Clear(ctx context.Context) error {
	return u.repo.ClearEntries(ctx)
}

// Contents returns the raw content strings of all entries. The learning
// pipeline snapshots these for duplicate suppression.
func (u *UseCase) Contents(ctx context.Context) ([]string, error) {
	entries, err := u.repo.ListEntries(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list entry contents")
	}

	contents := make([]string, 0, len(entries))
	for _, e := range entries {
		contents = append(contents, e.Content)
	}
	return contents, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
