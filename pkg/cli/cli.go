package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/magpielabs/magpie/pkg/utils/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	var logLevel string

	cmd := &cli.Command{
		Name:  "magpie",
		Usage: "Self-learning knowledge base with confidence-scored memory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Log level (debug, info, warn, error)",
				Value:       "info",
				Sources:     cli.EnvVars("MAGPIE_LOG_LEVEL"),
				Destination: &logLevel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger := logging.New(logLevel, os.Stderr)
			logging.SetDefault(logger)
			return logging.With(ctx, logger), nil
		},
		Commands: []*cli.Command{
			learnCommand(),
			watchCommand(),
			topicCommand(),
			memoryCommand(),
			runsCommand(),
			contextCommand(),
			reviewCommand(),
			settingsCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
