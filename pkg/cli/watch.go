package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/magpielabs/magpie/pkg/usecase/memory"
)

func watchCommand() *cli.Command {
	var (
		cfg   config
		every time.Duration
	)

	flags := []cli.Flag{
		&cli.DurationFlag{
			Name:        "every",
			Aliases:     []string{"e"},
			Usage:       "How often to check whether the schedule is due",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("MAGPIE_WATCH_EVERY"),
			Destination: &every,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, searchFlags(&cfg)...)
	flags = append(flags, learningFlags(&cfg)...)

	return &cli.Command{
		Name:  "watch",
		Usage: "Check the learning schedule periodically and run when due",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if every <= 0 {
				return goerr.New("check interval must be positive")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			mem := memory.New(repo)
			uc, err := cfg.newLearning(ctx, repo, mem)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Watching schedule (checking every %s). Ctrl-C to stop.\n", every)

			uc.CheckAndRunIfDue(ctx)

			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					uc.CheckAndRunIfDue(ctx)
				}
			}
		},
	}
}
