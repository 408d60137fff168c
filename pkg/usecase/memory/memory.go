package memory

import (
	"time"

	"github.com/magpielabs/magpie/pkg/repository"
)

const (
	// DefaultBoostDelta is added to confidence each time an entry proves useful.
	DefaultBoostDelta = 0.05
	// DefaultDecayRate is the confidence lost per week of staleness.
	DefaultDecayRate = 0.02
	// DefaultPruneThreshold evicts entries whose confidence decays below it.
	DefaultPruneThreshold = 0.05
)

// UseCase provides the confidence lifecycle of the memory store: creation,
// boosting, decay, pruning and ranked retrieval.
type UseCase struct {
	repo repository.Repository
	now  func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClock injects a deterministic clock, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a new memory UseCase instance
func New(repo repository.Repository, opts ...Option) *UseCase {
	uc := &UseCase{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
