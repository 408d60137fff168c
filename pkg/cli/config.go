package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/magpielabs/magpie/pkg/adapter"
	"github.com/magpielabs/magpie/pkg/repository"
	"github.com/magpielabs/magpie/pkg/usecase/learning"
	"github.com/magpielabs/magpie/pkg/usecase/memory"
)

// config holds configuration values
type config struct {
	// Repository
	storePath string
	project   string
	database  string

	// LLM
	geminiProject  string
	geminiLocation string
	geminiModel    string

	// Search
	braveAPIKey string
	searxngURL  string

	// Learning
	fetchTimeout  time.Duration
	policyDir     string
	archiveBucket string
}

// storeFlags returns persistence flags with destination config. The local
// JSON store is the default; setting --project switches to Firestore.
func storeFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store",
			Aliases:     []string{"s"},
			Usage:       "Path to local JSON store",
			Value:       "magpie.json",
			Sources:     cli.EnvVars("MAGPIE_STORE"),
			Destination: &cfg.storePath,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID (uses Firestore instead of the local store)",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model for insight distillation",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// searchFlags returns flags for the web search backends
func searchFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "brave-api-key",
			Usage:       "Brave Search API key",
			Sources:     cli.EnvVars("BRAVE_API_KEY"),
			Destination: &cfg.braveAPIKey,
		},
		&cli.StringFlag{
			Name:        "searxng-url",
			Usage:       "SearXNG instance base URL (fallback search backend)",
			Sources:     cli.EnvVars("SEARXNG_URL"),
			Destination: &cfg.searxngURL,
		},
	}
}

// learningFlags returns flags for the learning pipeline
func learningFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "fetch-timeout",
			Usage:       "Per-page fetch timeout",
			Value:       20 * time.Second,
			Sources:     cli.EnvVars("MAGPIE_FETCH_TIMEOUT"),
			Destination: &cfg.fetchTimeout,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego policies gating insight consolidation",
			Sources:     cli.EnvVars("MAGPIE_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket for run report archival",
			Sources:     cli.EnvVars("MAGPIE_ARCHIVE_BUCKET"),
			Destination: &cfg.archiveBucket,
		},
	}
}

// newRepository creates a repository: Firestore when a project is set, the
// local JSON store otherwise.
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.project != "" {
		if cfg.database == "" {
			return nil, goerr.New("database is required")
		}
		repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create firestore repository")
		}
		return repo, nil
	}

	if cfg.storePath == "" {
		return nil, goerr.New("store path is required")
	}
	repo, err := repository.NewLocal(cfg.storePath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open local store")
	}
	return repo, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	var opts []adapter.GeminiOption
	if cfg.geminiModel != "" {
		opts = append(opts, adapter.WithGenerativeModel(cfg.geminiModel))
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
}

// newSearchProvider picks the search backend: Brave when a key is set,
// SearXNG otherwise. Returns nil when neither is configured; the learning
// usecase rejects that at pre-flight.
func (cfg *config) newSearchProvider() adapter.SearchProvider {
	if cfg.braveAPIKey != "" {
		return adapter.NewBraveSearch(cfg.braveAPIKey)
	}
	if cfg.searxngURL != "" {
		return adapter.NewSearXNG(cfg.searxngURL)
	}
	return nil
}

// newFetcher creates the page fetcher
func (cfg *config) newFetcher() adapter.PageFetcher {
	return adapter.NewHTTPFetcher(adapter.WithFetchTimeout(cfg.fetchTimeout))
}

// newLearning assembles the full learning pipeline from the configured
// collaborators.
func (cfg *config) newLearning(ctx context.Context, repo repository.Repository, mem *memory.UseCase) (*learning.UseCase, error) {
	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}

	opts := []learning.Option{}
	if cfg.policyDir != "" {
		policy, err := learning.LoadPolicy(ctx, cfg.policyDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, learning.WithPolicy(policy))
	}
	if cfg.archiveBucket != "" {
		archive, err := adapter.NewArchive(ctx, cfg.archiveBucket)
		if err != nil {
			return nil, err
		}
		opts = append(opts, learning.WithArchive(archive))
	}

	return learning.New(
		repo,
		mem,
		cfg.newSearchProvider(),
		cfg.newFetcher(),
		learning.NewDistiller(gemini),
		opts...,
	), nil
}
