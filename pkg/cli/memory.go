package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/magpielabs/magpie/pkg/model"
	"github.com/magpielabs/magpie/pkg/usecase/memory"
)

func memoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "memory",
		Usage: "Manage the confidence-scored memory store",
		Commands: []*cli.Command{
			memoryAddCommand(),
			memoryListCommand(),
			memoryBoostCommand(),
			memoryDeleteCommand(),
			memoryClearCommand(),
			memoryDecayCommand(),
		},
	}
}

func memoryAddCommand() *cli.Command {
	var (
		cfg  config
		tags []string
	)

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "tag",
			Aliases:     []string{"t"},
			Usage:       "Tag for the entry (repeatable)",
			Destination: &tags,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)

	return &cli.Command{
		Name:      "add",
		Usage:     "Store a fact manually (seeds confidence 0.8)",
		ArgsUsage: "<content>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			content := c.Args().First()
			if content == "" {
				return goerr.New("content is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			entry, err := memory.New(repo).AddEntry(ctx, content, tags, model.SourceManual)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Memory saved: %s (confidence %.2f)\n", entry.ID, entry.Confidence)
			return nil
		},
	}
}

func memoryListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List all entries, most trusted first",
		Flags: storeFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			entries, err := memory.New(repo).EntriesForContext(ctx, 0)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(c.Root().Writer, "No memories\n")
				return nil
			}

			for _, e := range entries {
				fmt.Fprintf(c.Root().Writer, "%.2f  [%-13s]  %s  %s\n", e.Confidence, e.Source, e.ID, e.Content)
			}
			return nil
		},
	}
}

func memoryBoostCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "boost",
		Usage:     "Mark an entry as useful, raising its confidence",
		ArgsUsage: "<memory-id>",
		Flags:     storeFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("memory ID is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			if err := memory.New(repo).Boost(ctx, model.MemoryID(id), memory.DefaultBoostDelta); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Boosted: %s\n", id)
			return nil
		},
	}
}

func memoryDeleteCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a single entry",
		ArgsUsage: "<memory-id>",
		Flags:     storeFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("memory ID is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			if err := memory.New(repo).Delete(ctx, model.MemoryID(id)); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Deleted: %s\n", id)
			return nil
		},
	}
}

func memoryClearCommand() *cli.Command {
	var (
		cfg   config
		force bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "force",
			Aliases:     []string{"f"},
			Usage:       "Skip confirmation",
			Destination: &force,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)

	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all entries",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if !force {
				return goerr.New("refusing to clear all memories without --force")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			if err := memory.New(repo).Clear(ctx); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "All memories cleared\n")
			return nil
		},
	}
}

func memoryDecayCommand() *cli.Command {
	var (
		cfg        config
		rate       float64
		pruneBelow float64
	)

	flags := []cli.Flag{
		&cli.FloatFlag{
			Name:        "rate",
			Usage:       "Confidence lost per week of staleness",
			Value:       memory.DefaultDecayRate,
			Destination: &rate,
		},
		&cli.FloatFlag{
			Name:        "prune-below",
			Usage:       "Prune entries whose confidence falls below this",
			Value:       memory.DefaultPruneThreshold,
			Destination: &pruneBelow,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)

	return &cli.Command{
		Name:  "decay",
		Usage: "Age all entries and prune the ones nobody trusts anymore",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			decayed, pruned, err := memory.New(repo).Decay(ctx, rate, pruneBelow)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Decayed %d entr(ies), pruned %d\n", decayed, pruned)
			return nil
		},
	}
}
