package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/magpielabs/magpie/pkg/service/mcpserver"
	"github.com/magpielabs/magpie/pkg/usecase/learning"
	"github.com/magpielabs/magpie/pkg/usecase/memory"
	"github.com/magpielabs/magpie/pkg/utils/logging"
)

func mcpCommand() *cli.Command {
	var cfg config

	flags := storeFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, searchFlags(&cfg)...)
	flags = append(flags, learningFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve memory tools over MCP stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			mem := memory.New(repo)

			// The learning pipeline is optional here: without Gemini the
			// server still exposes the memory tools.
			var learn *learning.UseCase
			if uc, err := cfg.newLearning(ctx, repo, mem); err == nil {
				learn = uc
			} else {
				logging.From(ctx).Warn("learn_now tool disabled", "error", err)
			}

			return mcpserver.New(mem, learn).Run(ctx, Version)
		},
	}
}
