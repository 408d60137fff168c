package learning_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/magpielabs/magpie/pkg/model"
	"github.com/magpielabs/magpie/pkg/repository"
	"github.com/magpielabs/magpie/pkg/usecase/learning"
	"github.com/magpielabs/magpie/pkg/usecase/memory"
)

type stubSearch struct {
	results []model.SearchResult
	err     error
	calls   int
}

func (s *stubSearch) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.results) > limit {
		return s.results[:limit], nil
	}
	return s.results, nil
}

type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	content, ok := f.pages[url]
	if !ok {
		return "", goerr.New("fetch failed", goerr.V("url", url))
	}
	return content, nil
}

type stubSummarizer struct {
	insights []string
	err      error
}

func (s *stubSummarizer) Distill(ctx context.Context, topic string, pages []model.PageContent) ([]string, error) {
	return s.insights, s.err
}

func pageText(seed string) string {
	return strings.Repeat(seed+" ", 200/len(seed)+1)
}

func addTopic(t *testing.T, repo repository.Repository, name string, enabled bool) {
	t.Helper()
	gt.NoError(t, repo.PutTopic(t.Context(), &model.LearningTopic{
		ID:        model.NewTopicID(),
		Name:      name,
		Enabled:   enabled,
		CreatedAt: time.Now(),
	}))
}

func newPipeline(repo repository.Repository, search *stubSearch, fetcher *stubFetcher, summarizer *stubSummarizer) *learning.UseCase {
	mem := memory.New(repo)
	return learning.New(repo, mem, search, fetcher, summarizer)
}

func TestRunSavesInsights(t *testing.T) {
	ctx := t.Context()
	repo := repository.NewMemory()
	addTopic(t, repo, "Rust async", true)

	search := &stubSearch{results: []model.SearchResult{
		{Title: "Async book", URL: "https://example.com/async", Snippet: "async"},
	}}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.com/async": pageText("tokio runtime scheduling"),
	}}
	summarizer := &stubSummarizer{insights: []string{"Tokio multiplexes tasks onto a work-stealing thread pool"}}

	uc := newPipeline(repo, search, fetcher, summarizer)
	saved, err := uc.Run(ctx)
	gt.NoError(t, err)
	gt.Equal(t, saved, 1)

	entries, err := repo.ListEntries(ctx)
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)
	gt.Equal(t, entries[0].Content, summarizer.insights[0])
	gt.Equal(t, entries[0].Source, model.SourceSelfLearning)
	gt.Equal(t, entries[0].Confidence, 0.6)
	gt.Equal(t, entries[0].Tags, []string{"Rust async", "self-learning"})

	runs, err := uc.History(ctx)
	gt.NoError(t, err)
	gt.A(t, runs).Length(1)
	gt.Equal(t, runs[0].Status, model.RunStatusDone)
	gt.Equal(t, runs[0].InsightsSaved, 1)
	gt.Equal(t, runs[0].TopicsProcessed, []string{"Rust async"})
	gt.V(t, runs[0].CompletedAt).NotNil()

	settings, err := repo.GetSettings(ctx)
	gt.NoError(t, err)
	gt.V(t, settings.LastRunAt).NotNil()
}

func TestRunTwiceDeduplicates(t *testing.T) {
	ctx := t.Context()
	repo := repository.NewMemory()
	addTopic(t, repo, "Rust async", true)

	search := &stubSearch{results: []model.SearchResult{
		{Title: "Async book", URL: "https://example.com/async"},
	}}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.com/async": pageText("tokio runtime scheduling"),
	}}
	summarizer := &stubSummarizer{insights: []string{"Tokio multiplexes tasks onto a work-stealing thread pool"}}

	uc := newPipeline(repo, search, fetcher, summarizer)
	first, err := uc.Run(ctx)
	gt.NoError(t, err)
	gt.Equal(t, first, 1)

	second, err := uc.Run(ctx)
	gt.NoError(t, err)
	gt.Equal(t, second, 0)

	entries, err := repo.ListEntries(ctx)
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)

	runs, err := uc.History(ctx)
	gt.NoError(t, err)
	gt.A(t, runs).Length(2)
	for _, run := range runs {
		gt.Equal(t, run.Status, model.RunStatusDone)
	}
}

func TestRunRespectsPageBudget(t *testing.T) {
	ctx := t.Context()
	repo := repository.NewMemory()
	addTopic(t, repo, "Postgres", true)

	// Four hits but the default budget fetches only the first two.
	search := &stubSearch{results: []model.SearchResult{
		{URL: "https://example.com/1"},
		{URL: "https://example.com/2"},
		{URL: "https://example.com/3"},
		{URL: "https://example.com/4"},
	}}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.com/1": pageText("vacuum internals"),
		"https://example.com/2": pageText("wal archiving"),
	}}
	summarizer := &stubSummarizer{}

	uc := newPipeline(repo, search, fetcher, summarizer)
	_, err := uc.Run(ctx)
	gt.NoError(t, err)

	gt.A(t, fetcher.calls).Length(2)
	gt.Equal(t, fetcher.calls, []string{"https://example.com/1", "https://example.com/2"})
}

func TestRunSkipsWhenLedgerShowsRunning(t *testing.T) {
	ctx := t.Context()
	repo := repository.NewMemory()
	addTopic(t, repo, "Rust async", true)

	stale := &model.LearningRun{
		ID:        model.NewRunID(),
		StartedAt: time.Now(),
		Status:    model.RunStatusRunning,
	}
	gt.NoError(t, repo.PutRun(ctx, stale))

	search := &stubSearch{results: []model.SearchResult{{URL: "https://example.com/x"}}}
	uc := newPipeline(repo, search, &stubFetcher{}, &stubSummarizer{})

	saved, err := uc.Run(ctx)
	gt.NoError(t, err)
	gt.Equal(t, saved, 0)
	gt.Equal(t, search.calls, 0)

	runs, err := uc.History(ctx)
	gt.NoError(t, err)
	gt.A(t, runs).Length(1)
	gt.Equal(t, runs[0].ID, stale.ID)
}

func TestRunPreflightErrors(t *testing.T) {
	ctx := t.Context()
	repo := repository.NewMemory()
	mem := memory.New(repo)

	t.Run("no summarizer", func(t *testing.T) {
		uc := learning.New(repo, mem, &stubSearch{}, &stubFetcher{}, nil)
		_, err := uc.Run(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, learning.ErrNoSummarizer))
	})

	t.Run("no searcher", func(t *testing.T) {
		uc := learning.New(repo, mem, nil, &stubFetcher{}, &stubSummarizer{})
		_, err := uc.Run(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, learning.ErrNoSearcher))
	})

	t.Run("no enabled topics", func(t *testing.T) {
		addTopic(t, repo, "disabled one", false)
		uc := learning.New(repo, mem, &stubSearch{}, &stubFetcher{}, &stubSummarizer{})
		_, err := uc.Run(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, learning.ErrNoTopics))
	})

	// Pre-flight failures leave no trace in the ledger.
	runs, err := repo.ListRuns(ctx)
	gt.NoError(t, err)
	gt.A(t, runs).Length(0)
}

func TestRunLedgerTrimmedToCap(t *testing.T) {
	ctx := t.Context()
	repo := repository.NewMemory()
	addTopic(t, repo, "Rust async", true)

	// Empty search results: each run completes with zero insights.
	uc := newPipeline(repo, &stubSearch{}, &stubFetcher{}, &stubSummarizer{})
	for range 25 {
		_, err := uc.Run(ctx)
		gt.NoError(t, err)
	}

	runs, err := uc.History(ctx)
	gt.NoError(t, err)
	gt.A(t, runs).Length(20)
}

// listEntriesFailer makes memory reads fail after the pipeline has started,
// forcing the run down the failure path.
type listEntriesFailer struct {
	repository.Repository
}

func (r *listEntriesFailer) ListEntries(ctx context.Context) ([]*model.MemoryEntry, error) {
	return nil, goerr.New("store unavailable")
}

func TestFailedRunKeepsScheduleBaseline(t *testing.T) {
	ctx := t.Context()
	repo := &listEntriesFailer{Repository: repository.NewMemory()}
	addTopic(t, repo, "Rust async", true)

	search := &stubSearch{results: []model.SearchResult{{URL: "https://example.com/a"}}}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.com/a": pageText("content"),
	}}
	summarizer := &stubSummarizer{insights: []string{"some fresh insight about async runtimes"}}

	mem := memory.New(repo)
	uc := learning.New(repo, mem, search, fetcher, summarizer)

	saved, err := uc.Run(ctx)
	gt.NoError(t, err)
	gt.Equal(t, saved, 0)

	runs, err := uc.History(ctx)
	gt.NoError(t, err)
	gt.A(t, runs).Length(1)
	gt.Equal(t, runs[0].Status, model.RunStatusError)
	gt.S(t, runs[0].Error).Contains("store unavailable")

	settings, err := repo.GetSettings(ctx)
	gt.NoError(t, err)
	gt.True(t, settings.LastRunAt == nil)
}

func TestRunAbsorbsCollaboratorFailures(t *testing.T) {
	ctx := t.Context()
	repo := repository.NewMemory()
	addTopic(t, repo, "flaky topic", true)

	t.Run("search error skips topic", func(t *testing.T) {
		uc := newPipeline(repo, &stubSearch{err: goerr.New("quota exceeded")}, &stubFetcher{}, &stubSummarizer{})
		saved, err := uc.Run(ctx)
		gt.NoError(t, err)
		gt.Equal(t, saved, 0)
	})

	t.Run("all fetches fail skips topic", func(t *testing.T) {
		search := &stubSearch{results: []model.SearchResult{{URL: "https://example.com/gone"}}}
		uc := newPipeline(repo, search, &stubFetcher{}, &stubSummarizer{insights: []string{"never reached"}})
		saved, err := uc.Run(ctx)
		gt.NoError(t, err)
		gt.Equal(t, saved, 0)
	})

	t.Run("distill error yields zero insights", func(t *testing.T) {
		search := &stubSearch{results: []model.SearchResult{{URL: "https://example.com/ok"}}}
		fetcher := &stubFetcher{pages: map[string]string{"https://example.com/ok": pageText("fine content here")}}
		uc := newPipeline(repo, search, fetcher, &stubSummarizer{err: goerr.New("model overloaded")})
		saved, err := uc.Run(ctx)
		gt.NoError(t, err)
		gt.Equal(t, saved, 0)
	})

	t.Run("thin page dropped", func(t *testing.T) {
		search := &stubSearch{results: []model.SearchResult{{URL: "https://example.com/thin"}}}
		fetcher := &stubFetcher{pages: map[string]string{"https://example.com/thin": "too short"}}
		uc := newPipeline(repo, search, fetcher, &stubSummarizer{insights: []string{"never reached"}})
		saved, err := uc.Run(ctx)
		gt.NoError(t, err)
		gt.Equal(t, saved, 0)
	})

	// Every absorbed failure still produced a completed run record.
	runs, err := repo.ListRuns(ctx)
	gt.NoError(t, err)
	gt.A(t, runs).Length(4)
	for _, run := range runs {
		gt.Equal(t, run.Status, model.RunStatusDone)
	}
}

// blockingSearch parks the first run inside Search so a second Run can be
// issued while the guard is held.
type blockingSearch struct {
	stubSearch
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSearch) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	close(s.entered)
	<-s.release
	return s.stubSearch.Search(ctx, query, limit)
}

func TestRunConcurrentInvocationIsNoOp(t *testing.T) {
	ctx := t.Context()
	repo := repository.NewMemory()
	addTopic(t, repo, "Rust async", true)

	search := &blockingSearch{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	mem := memory.New(repo)
	uc := learning.New(repo, mem, search, &stubFetcher{}, &stubSummarizer{})

	firstDone := make(chan error, 1)
	go func() {
		_, err := uc.Run(ctx)
		firstDone <- err
	}()
	<-search.entered

	// The first run is still in flight, so this one must bail out silently.
	saved, err := uc.Run(ctx)
	gt.NoError(t, err)
	gt.Equal(t, saved, 0)

	close(search.release)
	gt.NoError(t, <-firstDone)
	gt.Equal(t, search.calls, 1)

	// Only the first run left a ledger record.
	runs, err := uc.History(ctx)
	gt.NoError(t, err)
	gt.A(t, runs).Length(1)
	gt.Equal(t, runs[0].Status, model.RunStatusDone)
}

func TestRunPolicyDeniesInsight(t *testing.T) {
	ctx := t.Context()
	repo := repository.NewMemory()
	addTopic(t, repo, "rust", true)

	search := &stubSearch{results: []model.SearchResult{{URL: "https://example.com/a"}}}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.com/a": pageText("release notes content"),
	}}
	summarizer := &stubSummarizer{insights: []string{
		"Sponsored: a promotional insight about tooling",
		"Rust 1.80 stabilizes LazyCell in the standard library",
	}}

	policy, err := learning.LoadPolicy(ctx, writePolicy(t, denyPromotional))
	gt.NoError(t, err)
	mem := memory.New(repo)
	uc := learning.New(repo, mem, search, fetcher, summarizer, learning.WithPolicy(policy))

	saved, err := uc.Run(ctx)
	gt.NoError(t, err)
	gt.Equal(t, saved, 1)

	entries, err := repo.ListEntries(ctx)
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)
	gt.S(t, entries[0].Content).Contains("LazyCell")
}
