package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/magpielabs/magpie/pkg/usecase/memory"
)

func contextCommand() *cli.Command {
	var (
		cfg      config
		maxCount int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "max",
			Aliases:     []string{"m"},
			Usage:       "Max entries to include (0 = all)",
			Destination: &maxCount,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)

	return &cli.Command{
		Name:  "context",
		Usage: "Print the memory block injected into conversation context",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			settings, err := repo.GetSettings(ctx)
			if err != nil {
				return err
			}
			if !settings.MemoryEnabled {
				fmt.Fprintf(c.Root().Writer, "Memory is disabled; nothing would be injected\n")
				return nil
			}

			entries, err := memory.New(repo).EntriesForContext(ctx, int(maxCount))
			if err != nil {
				return err
			}

			message := memory.BuildContextMessage(entries)
			if message == "" {
				fmt.Fprintf(c.Root().Writer, "No memories to inject\n")
				return nil
			}

			fmt.Fprint(c.Root().Writer, message)
			return nil
		},
	}
}
