package learning

import (
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/magpielabs/magpie/pkg/adapter"
	"github.com/magpielabs/magpie/pkg/repository"
	"github.com/magpielabs/magpie/pkg/usecase/memory"
)

var (
	// ErrNoSummarizer means no text-generation provider is configured.
	ErrNoSummarizer = goerr.New("no summarizer configured")
	// ErrNoSearcher means no web search backend is configured.
	ErrNoSearcher = goerr.New("no search provider configured")
	// ErrNoTopics means there is no enabled learning topic to process.
	ErrNoTopics = goerr.New("no enabled learning topics")
)

const (
	// searchResultLimit is how many hits are requested per topic query.
	searchResultLimit = 4
	// minPageChars discards fetched pages too thin to distill anything from.
	minPageChars = 200
	// pageFetchTimeout bounds each page fetch; exceeding it loses that page only.
	pageFetchTimeout = 20 * time.Second
	// maxRunHistory caps the run ledger; the oldest record is dropped on overflow.
	maxRunHistory = 20
)

// UseCase drives the learning pipeline: RETRIEVE → JUDGE → DISTILL →
// CONSOLIDATE per enabled topic, with single-flight run control and a bounded
// run ledger. It owns no persistent state of its own; it borrows the
// repository and memory store for the duration of one run.
type UseCase struct {
	repo       repository.Repository
	memory     *memory.UseCase
	search     adapter.SearchProvider
	fetcher    adapter.PageFetcher
	summarizer Summarizer

	archive adapter.Archive
	policy  *Policy
	now     func() time.Time

	running atomic.Bool
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClock injects a deterministic clock, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// WithArchive enables archival of run reports to cold storage
func WithArchive(archive adapter.Archive) Option {
	return func(uc *UseCase) {
		uc.archive = archive
	}
}

// WithPolicy gates consolidation through a Rego policy
func WithPolicy(policy *Policy) Option {
	return func(uc *UseCase) {
		uc.policy = policy
	}
}

// New creates a new learning UseCase. search and summarizer may be nil; Run
// fails its pre-flight checks until both are configured.
func New(
	repo repository.Repository,
	mem *memory.UseCase,
	search adapter.SearchProvider,
	fetcher adapter.PageFetcher,
	summarizer Summarizer,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		repo:       repo,
		memory:     mem,
		search:     search,
		fetcher:    fetcher,
		summarizer: summarizer,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
