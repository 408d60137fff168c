package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

func runsCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "runs",
		Usage: "Show recent learning runs, newest first",
		Flags: storeFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			runs, err := repo.ListRuns(ctx)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintf(c.Root().Writer, "No runs yet\n")
				return nil
			}

			for _, run := range runs {
				duration := "-"
				if run.CompletedAt != nil {
					duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Second).String()
				}
				fmt.Fprintf(c.Root().Writer, "%s  %-7s  %8s  insights=%-3d  topics=%s",
					run.StartedAt.Format(time.RFC3339), run.Status, duration,
					run.InsightsSaved, strings.Join(run.TopicsProcessed, ","))
				if run.Error != "" {
					fmt.Fprintf(c.Root().Writer, "  error=%s", run.Error)
				}
				fmt.Fprintln(c.Root().Writer)
			}
			return nil
		},
	}
}
