package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/magpielabs/magpie/pkg/model"
)

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change memory and learning settings",
		Commands: []*cli.Command{
			settingsShowCommand(),
			settingsSetCommand(),
		},
	}
}

func settingsShowCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "show",
		Usage: "Show current settings",
		Flags: storeFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			settings, err := repo.GetSettings(ctx)
			if err != nil {
				return err
			}

			lastRun := "never"
			if settings.LastRunAt != nil {
				lastRun = settings.LastRunAt.String()
			}
			fmt.Fprintf(c.Root().Writer, "memory enabled:   %v\n", settings.MemoryEnabled)
			fmt.Fprintf(c.Root().Writer, "learning enabled: %v\n", settings.LearningEnabled)
			fmt.Fprintf(c.Root().Writer, "schedule:         %s\n", settings.Schedule)
			fmt.Fprintf(c.Root().Writer, "pages per topic:  %d\n", settings.PagesPerTopic())
			fmt.Fprintf(c.Root().Writer, "last run:         %s\n", lastRun)
			return nil
		},
	}
}

func settingsSetCommand() *cli.Command {
	var (
		cfg      config
		memoryOn string
		learnOn  string
		schedule string
		maxPages int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "memory",
			Usage:       "Enable or disable memory injection (on/off)",
			Destination: &memoryOn,
		},
		&cli.StringFlag{
			Name:        "learning",
			Usage:       "Enable or disable scheduled learning (on/off)",
			Destination: &learnOn,
		},
		&cli.StringFlag{
			Name:        "schedule",
			Usage:       "Learning schedule (manual, hourly, daily, weekly)",
			Destination: &schedule,
		},
		&cli.IntFlag{
			Name:        "max-pages",
			Usage:       "Pages fetched per topic per run (1-5)",
			Destination: &maxPages,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)

	return &cli.Command{
		Name:  "set",
		Usage: "Change one or more settings",
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

			if memoryOn != "" {
				v, err := parseOnOff(memoryOn)
				if err != nil {
					return err
				}
				settings.MemoryEnabled = v
			}
			if learnOn != "" {
				v, err := parseOnOff(learnOn)
				if err != nil {
					return err
				}
				settings.LearningEnabled = v
			}
			if schedule != "" {
				s := model.Schedule(schedule)
				if err := s.Validate(); err != nil {
					return err
				}
				settings.Schedule = s
			}
			if maxPages != 0 {
				if maxPages < 1 || maxPages > 5 {
					return goerr.New("max-pages must be between 1 and 5", goerr.V("value", maxPages))
				}
				settings.MaxPagesPerTopic = int(maxPages)
			}

			if err := repo.PutSettings(ctx, settings); err != nil {
				return goerr.Wrap(err, "failed to save settings")
			}

			fmt.Fprintf(c.Root().Writer, "Settings updated\n")
			return nil
		},
	}
}

func parseOnOff(v string) (bool, error) {
	switch v {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, goerr.New("expected on or off", goerr.V("value", v))
	}
}
