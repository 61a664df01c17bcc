// taskctl manages the task corpus offline: the running server only draws
// tasks, it never writes them.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nitzanf/fakergame-go/internal/dependencies/random"
	"github.com/nitzanf/fakergame-go/internal/model"
	"github.com/nitzanf/fakergame-go/internal/storage"
	"github.com/nitzanf/fakergame-go/internal/storage/memory"
	redisstorage "github.com/nitzanf/fakergame-go/internal/storage/redis"
	"github.com/nitzanf/fakergame-go/internal/tasks"
)

var (
	storageType string
	redisURL    string
)

func newService() (*tasks.Service, error) {
	var store storage.Storage
	switch storageType {
	case "memory":
		store = memory.New()
	case "redis":
		cfg := redisstorage.DefaultConfig()
		if redisURL != "" {
			cfg.URL = redisURL
		}
		redisStore, err := redisstorage.New(cfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, fmt.Errorf("unknown storage type %q", storageType)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return tasks.New(store, random.New(), logger), nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskctl",
		Short: "Manage the faker game task corpus",
		Long: `taskctl adds, bulk-loads and counts tasks in the corpus the game
server draws from.

With the memory backend nothing persists past the process; it is only
useful to validate a corpus file. Use the redis backend to manage the
corpus a running server reads.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&storageType, "storage", "redis", "storage backend: memory or redis")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis-url", "", "redis connection URL")

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newLoadCmd())
	rootCmd.AddCommand(newCountCmd())

	return rootCmd
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <category> <task text>",
		Short: "Add one task to a category",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, ok := model.ParseCategory(strings.ToUpper(args[0]))
			if !ok {
				return fmt.Errorf("%w: %q (want POINT, NUMBER or RAISE)", model.ErrUnknownCategory, args[0])
			}
			service, err := newService()
			if err != nil {
				return err
			}
			id, err := service.Add(cmd.Context(), category, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Printf("added task %d to %s\n", id, category)
			return nil
		},
	}
}

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Bulk-load a tab-separated corpus file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService()
			if err != nil {
				return err
			}
			loaded, err := service.LoadFromFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("loaded %d tasks before failing: %w", loaded, err)
			}
			fmt.Printf("loaded %d tasks\n", loaded)
			return nil
		},
	}
}

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the number of tasks per category",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService()
			if err != nil {
				return err
			}
			for _, category := range model.Categories {
				count, err := service.Count(cmd.Context(), category)
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%d\n", category, count)
			}
			return nil
		},
	}
}

func main() {
	cobra.CheckErr(newRootCmd().Execute())
}
