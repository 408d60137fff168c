package learning_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/magpielabs/magpie/pkg/usecase/learning"
)

func TestDedupeDropsCloseParaphrase(t *testing.T) {
	existing := []string{"Python 3.13 removes the GIL in the free-threaded build"}
	candidates := []string{"The GIL is removed in Python 3.13's free-threaded build"}

	kept := learning.Dedupe(candidates, existing)
	gt.A(t, kept).Length(0)
}

func TestDedupeKeepsNovelContent(t *testing.T) {
	existing := []string{"Go 1.24 adds generic type aliases"}
	candidates := []string{
		"Rust 1.80 stabilizes LazyCell and LazyLock in the standard library",
		"Go 1.24 adds generic type aliases to the language",
	}

	kept := learning.Dedupe(candidates, existing)
	gt.A(t, kept).Length(1)
	gt.Equal(t, kept[0], candidates[0])
}

func TestDedupeShortWordsNeverMatch(t *testing.T) {
	// No word longer than four characters, so there is nothing to compare
	// against and the candidate passes through.
	existing := []string{"the cat sat on the mat"}
	candidates := []string{"the cat sat on the mat"}

	kept := learning.Dedupe(candidates, existing)
	gt.A(t, kept).Length(1)
}

func TestDedupePreservesCandidateOrder(t *testing.T) {
	candidates := []string{
		"first insight about kubernetes scheduling internals",
		"second insight about postgres vacuum behaviour",
		"third insight about linux cgroup hierarchies",
	}

	kept := learning.Dedupe(candidates, nil)
	gt.A(t, kept).Length(3)
	gt.Equal(t, kept, candidates)
}

func TestDedupeComparesAgainstStoreOnly(t *testing.T) {
	// Candidates are only compared against the existing snapshot, never
	// against each other; both paraphrases survive an empty store.
	candidates := []string{
		"TypeScript 5.5 infers predicate types automatically for filter callbacks",
		"predicate types are inferred automatically for filter callbacks in TypeScript 5.5",
	}

	kept := learning.Dedupe(candidates, nil)
	gt.A(t, kept).Length(2)
}
