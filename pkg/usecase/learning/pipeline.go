package learning

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/magpielabs/magpie/pkg/model"
	"github.com/magpielabs/magpie/pkg/utils/logging"
)

// Run executes one learning pass over all enabled topics and returns the
// number of insights saved. Only configuration problems (no summarizer, no
// search provider, no enabled topics) are returned as errors; everything
// after pre-flight degrades per topic or per page and is recorded in the run
// ledger instead. A call while another run is in flight is a silent no-op
// that creates no ledger record.
func (u *UseCase) Run(ctx context.Context) (int, error) {
	logger := logging.From(ctx)

	if !u.running.CompareAndSwap(false, true) {
		logger.Debug("learning run already in flight, skipping")
		return 0, nil
	}
	defer u.running.Store(false)

	// Pre-flight: fatal, surfaced to the caller, no run record.
	if u.summarizer == nil {
		return 0, ErrNoSummarizer
	}
	if u.search == nil {
		return 0, ErrNoSearcher
	}

	topics, err := u.enabledTopics(ctx)
	if err != nil {
		return 0, err
	}
	if len(topics) == 0 {
		return 0, ErrNoTopics
	}

	// A running record left by another process also blocks the run.
	if runs, err := u.repo.ListRuns(ctx); err == nil && len(runs) > 0 &&
		runs[0].Status == model.RunStatusRunning {
		logger.Debug("most recent ledger run still running, skipping")
		return 0, nil
	}

	settings, err := u.repo.GetSettings(ctx)
	if err != nil {
		return 0, err
	}

	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, t.Name)
	}

	run, err := u.startRun(ctx, names)
	if err != nil {
		return 0, err
	}
	logger.Info("learning run started", "run_id", run.ID, "topics", names)

	saved, runErr := u.processTopics(ctx, topics, settings.PagesPerTopic())
	if runErr != nil {
		logger.Error("learning run failed", "run_id", run.ID, "error", runErr)
		if err := u.failRun(ctx, run.ID, runErr.Error()); err != nil {
			logger.Error("failed to record run failure", "run_id", run.ID, "error", err)
		}
	} else {
		if err := u.completeRun(ctx, run.ID, saved); err != nil {
			logger.Error("failed to record run completion", "run_id", run.ID, "error", err)
		}
		logger.Info("learning run completed", "run_id", run.ID, "insights_saved", saved)
	}

	u.archiveRun(ctx, run.ID)
	return saved, nil
}

func (u *UseCase) enabledTopics(ctx context.Context) ([]*model.LearningTopic, error) {
	topics, err := u.repo.ListTopics(ctx)
	if err != nil {
		return nil, err
	}

	enabled := make([]*model.LearningTopic, 0, len(topics))
	for _, t := range topics {
		if t.Enabled {
			enabled = append(enabled, t)
		}
	}
	return enabled, nil
}

// processTopics walks the per-topic pipeline. Collaborator failures degrade
// to empty results within a topic; only store failures (or a panic) abort the
// run and surface as the run-level error.
func (u *UseCase) processTopics(ctx context.Context, topics []*model.LearningTopic, maxPages int) (saved int, runErr error) {
	defer func() {
		if r := recover(); r != nil {
			runErr = goerr.New("panic during learning run", goerr.V("recovered", r))
		}
	}()

	for _, topic := range topics {
		n, err := u.processTopic(ctx, topic, maxPages)
		if err != nil {
			return saved, err
		}
		saved += n
	}
	return saved, nil
}

func (u *UseCase) processTopic(ctx context.Context, topic *model.LearningTopic, maxPages int) (int, error) {
	logger := logging.From(ctx).With("topic", topic.Name)

	// RETRIEVE
	results, err := u.search.Search(ctx, topic.Query(), searchResultLimit)
	if err != nil {
		logger.Warn("search failed, skipping topic", "error", err)
		return 0, nil
	}
	if len(results) == 0 {
		logger.Debug("no search results, skipping topic")
		return 0, nil
	}

	// JUDGE: trust the provider's ranking, just cap and drop empty URLs.
	selected := make([]model.SearchResult, 0, maxPages)
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		selected = append(selected, r)
		if len(selected) >= maxPages {
			break
		}
	}

	// DISTILL
	pages := u.fetchPages(ctx, selected)
	if len(pages) == 0 {
		logger.Debug("no usable pages, skipping topic")
		return 0, nil
	}

	insights, err := u.summarizer.Distill(ctx, topic.Name, pages)
	if err != nil {
		logger.Warn("distill failed, treating as zero insights", "error", err)
		insights = nil
	}
	if len(insights) == 0 {
		return 0, nil
	}

	// CONSOLIDATE
	existing, err := u.memory.Contents(ctx)
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, insight := range Dedupe(insights, existing) {
		if !u.policy.Allow(ctx, topic.Name, insight) {
			continue
		}
		tags := []string{topic.Name, string(model.SourceSelfLearning)}
		if _, err := u.memory.AddEntry(ctx, insight, tags, model.SourceSelfLearning); err != nil {
			return saved, err
		}
		saved++
	}

	logger.Info("topic processed", "pages", len(pages), "insights", len(insights), "saved", saved)
	return saved, nil
}

// fetchPages retrieves the selected pages sequentially. Fetch errors and
// timeouts lose that page only; pages below the minimum length are too thin
// to distill and are dropped.
func (u *UseCase) fetchPages(ctx context.Context, selected []model.SearchResult) []model.PageContent {
	logger := logging.From(ctx)

	pages := make([]model.PageContent, 0, len(selected))
	for _, r := range selected {
		pctx, cancel := context.WithTimeout(ctx, pageFetchTimeout)
		content, err := u.fetcher.Fetch(pctx, r.URL)
		cancel()
		if err != nil {
			logger.Debug("page fetch failed", "url", r.URL, "error", err)
			continue
		}
		if len(content) < minPageChars {
			logger.Debug("page too thin, dropped", "url", r.URL, "chars", len(content))
			continue
		}
		pages = append(pages, model.PageContent{
			URL:     r.URL,
			Title:   r.Title,
			Content: content,
		})
	}
	return pages
}

// archiveRun writes the terminal run record to cold storage when an archive
// is configured. Archive failures are logged, never fatal.
func (u *UseCase) archiveRun(ctx context.Context, id model.RunID) {
	if u.archive == nil {
		return
	}
	logger := logging.From(ctx)

	run, err := u.repo.GetRun(ctx, id)
	if err != nil {
		logger.Warn("failed to load run for archive", "run_id", id, "error", err)
		return
	}

	w, err := u.archive.Put(ctx, "runs/"+string(id)+".json")
	if err != nil {
		logger.Warn("failed to open archive writer", "run_id", id, "error", err)
		return
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		logger.Warn("failed to archive run", "run_id", id, "error", err)
	}
	if err := w.Close(); err != nil {
		logger.Warn("failed to close archive writer", "run_id", id, "error", err)
	}
}
