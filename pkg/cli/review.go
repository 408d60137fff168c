package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/magpielabs/magpie/pkg/usecase/memory"
)

func reviewCommand() *cli.Command {
	var (
		cfg      config
		maxCount int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "max",
			Aliases:     []string{"m"},
			Usage:       "Max entries to review",
			Value:       20,
			Destination: &maxCount,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)

	return &cli.Command{
		Name:  "review",
		Usage: "Interactively curate the least trusted memories",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			mem := memory.New(repo)
			entries, err := mem.EntriesForContext(ctx, 0)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(c.Root().Writer, "No memories to review\n")
				return nil
			}

			// Lowest confidence first: those are the review candidates.
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].Confidence < entries[j].Confidence
			})
			if int64(len(entries)) > maxCount {
				entries = entries[:maxCount]
			}

			rl, err := readline.New("keep/boost/delete/quit [k/b/d/q] > ")
			if err != nil {
				return goerr.Wrap(err, "failed to open terminal")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Reviewing %d entr(ies), least trusted first\n\n", len(entries))

			for _, e := range entries {
				fmt.Fprintf(c.Root().Writer, "%.2f [%s] %s\n", e.Confidence, e.Source, e.Content)

				line, err := rl.Readline()
				if err != nil {
					if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
						fmt.Fprintf(c.Root().Writer, "Review stopped\n")
						return nil
					}
					return goerr.Wrap(err, "failed to read input")
				}

				switch strings.ToLower(strings.TrimSpace(line)) {
				case "b", "boost":
					if err := mem.Boost(ctx, e.ID, memory.DefaultBoostDelta); err != nil {
						return err
					}
					fmt.Fprintf(c.Root().Writer, "boosted\n\n")
				case "d", "delete":
					if err := mem.Delete(ctx, e.ID); err != nil {
						return err
					}
					fmt.Fprintf(c.Root().Writer, "deleted\n\n")
				case "q", "quit":
					fmt.Fprintf(c.Root().Writer, "Review stopped\n")
					return nil
				default:
					fmt.Fprintf(c.Root().Writer, "kept\n\n")
				}
			}

			fmt.Fprintf(c.Root().Writer, "Review complete\n")
			return nil
		},
	}
}
