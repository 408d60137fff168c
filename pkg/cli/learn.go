package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/urfave/cli/v3"

	"github.com/magpielabs/magpie/pkg/usecase/memory"
)

func learnCommand() *cli.Command {
	var cfg config

	flags := storeFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, searchFlags(&cfg)...)
	flags = append(flags, learningFlags(&cfg)...)

	return &cli.Command{
		Name:  "learn",
		Usage: "Run the learning pipeline once over all enabled topics",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			mem := memory.New(repo)
			uc, err := cfg.newLearning(ctx, repo, mem)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " learning..."
			sp.Start()
			saved, err := uc.Run(ctx)
			sp.Stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Learning run completed: %d new insight(s) saved\n", saved)
			return nil
		},
	}
}
