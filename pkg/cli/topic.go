package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/magpielabs/magpie/pkg/model"
	"github.com/magpielabs/magpie/pkg/repository"
)

func topicCommand() *cli.Command {
	return &cli.Command{
		Name:  "topic",
		Usage: "Manage learning topics",
		Commands: []*cli.Command{
			topicAddCommand(),
			topicListCommand(),
			topicEnableCommand(),
			topicDisableCommand(),
			topicRemoveCommand(),
			topicImportCommand(),
		},
	}
}

func topicAddCommand() *cli.Command {
	var (
		cfg  config
		name string
		hint string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "Topic name, used as the search query",
			Required:    true,
			Destination: &name,
		},
		&cli.StringFlag{
			Name:        "hint",
			Usage:       "Extra search hint appended to the query",
			Destination: &hint,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)

	return &cli.Command{
		Name:  "add",
		Usage: "Add a learning topic (enabled by default)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			topic := &model.LearningTopic{
				ID:        model.NewTopicID(),
				Name:      name,
				Hint:      hint,
				Enabled:   true,
				CreatedAt: time.Now(),
			}
			if err := repo.PutTopic(ctx, topic); err != nil {
				return goerr.Wrap(err, "failed to save topic")
			}

			fmt.Fprintf(c.Root().Writer, "Topic added: %s (%s)\n", topic.Name, topic.ID)
			return nil
		},
	}
}

func topicListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List all learning topics",
		Flags: storeFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			topics, err := repo.ListTopics(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list topics")
			}
			if len(topics) == 0 {
				fmt.Fprintf(c.Root().Writer, "No topics\n")
				return nil
			}

			for _, t := range topics {
				state := "enabled"
				if !t.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(c.Root().Writer, "%-10s %-36s %s", state, t.ID, t.Name)
				if t.Hint != "" {
					fmt.Fprintf(c.Root().Writer, " (hint: %s)", t.Hint)
				}
				fmt.Fprintln(c.Root().Writer)
			}
			return nil
		},
	}
}

func topicEnableCommand() *cli.Command {
	return topicToggleCommand("enable", "Enable a learning topic", true)
}

func topicDisableCommand() *cli.Command {
	return topicToggleCommand("disable", "Disable a learning topic", false)
}

func topicToggleCommand(name, usage string, enabled bool) *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<topic-id-or-name>",
		Flags:     storeFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			topic, err := findTopic(ctx, repo, c.Args().First())
			if err != nil {
				return err
			}

			topic.Enabled = enabled
			if err := repo.PutTopic(ctx, topic); err != nil {
				return goerr.Wrap(err, "failed to update topic")
			}

			fmt.Fprintf(c.Root().Writer, "Topic %s: %s\n", name+"d", topic.Name)
			return nil
		},
	}
}

func topicRemoveCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove a learning topic",
		ArgsUsage: "<topic-id-or-name>",
		Flags:     storeFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			topic, err := findTopic(ctx, repo, c.Args().First())
			if err != nil {
				return err
			}

			if err := repo.DeleteTopic(ctx, topic.ID); err != nil {
				return goerr.Wrap(err, "failed to remove topic")
			}

			fmt.Fprintf(c.Root().Writer, "Topic removed: %s\n", topic.Name)
			return nil
		},
	}
}

// topicImportFile is the YAML shape accepted by `topic import`.
type topicImportFile struct {
	Topics []struct {
		Name    string `yaml:"name"`
		Hint    string `yaml:"hint"`
		Enabled *bool  `yaml:"enabled"`
	} `yaml:"topics"`
}

func topicImportCommand() *cli.Command {
	var (
		cfg  config
		path string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to YAML file of topics",
			Required:    true,
			Destination: &path,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)

	return &cli.Command{
		Name:  "import",
		Usage: "Bulk-import topics from a YAML file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			data, err := os.ReadFile(path)
			if err != nil {
				return goerr.Wrap(err, "failed to read topic file", goerr.V("path", path))
			}

			var file topicImportFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return goerr.Wrap(err, "failed to parse topic file")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			imported := 0
			for _, t := range file.Topics {
				if t.Name == "" {
					continue
				}
				enabled := true
				if t.Enabled != nil {
					enabled = *t.Enabled
				}
				topic := &model.LearningTopic{
					ID:        model.NewTopicID(),
					Name:      t.Name,
					Hint:      t.Hint,
					Enabled:   enabled,
					CreatedAt: time.Now(),
				}
				if err := repo.PutTopic(ctx, topic); err != nil {
					return goerr.Wrap(err, "failed to save topic", goerr.V("name", t.Name))
				}
				imported++
			}

			fmt.Fprintf(c.Root().Writer, "Imported %d topic(s)\n", imported)
			return nil
		},
	}
}

// findTopic resolves a topic by ID first, then by exact name.
func findTopic(ctx context.Context, repo repository.Repository, key string) (*model.LearningTopic, error) {
	if key == "" {
		return nil, goerr.New("topic ID or name is required")
	}

	topic, err := repo.GetTopic(ctx, model.TopicID(key))
	if err == nil {
		return topic, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to get topic", goerr.V("key", key))
	}

	topics, err := repo.ListTopics(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list topics")
	}
	for _, t := range topics {
		if t.Name == key {
			return t, nil
		}
	}
	return nil, goerr.New("topic not found", goerr.V("key", key))
}
