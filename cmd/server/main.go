package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nitzanf/fakergame-go/internal/admin"
	"github.com/nitzanf/fakergame-go/internal/comms"
	"github.com/nitzanf/fakergame-go/internal/factory"
	redisstorage "github.com/nitzanf/fakergame-go/internal/storage/redis"
)

type config struct {
	listen    string
	adminPort int
	storage   string
	redisURL  string
	tasksPath string
	verbose   bool
}

func (c *config) validate() error {
	if c.storage == factory.StorageTypeRedis && c.redisURL == "" {
		return errors.New("--redis-url required when --storage is redis")
	}
	if c.adminPort < 1 || c.adminPort > 65535 {
		return fmt.Errorf("invalid admin port: %d", c.adminPort)
	}
	return nil
}

func newCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FAKERGAME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "fakergame-server",
		Short:         "Game server for the faker party game",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.listen, "listen", "l", ":7878", "game TCP listen address (env: FAKERGAME_LISTEN)")
	fs.IntVar(&cfg.adminPort, "admin-port", 8080, "admin HTTP port (env: FAKERGAME_ADMIN_PORT)")
	fs.StringVar(&cfg.storage, "storage", factory.StorageTypeMemory, "task storage backend, memory or redis (env: FAKERGAME_STORAGE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection URL (env: FAKERGAME_REDIS_URL)")
	fs.StringVar(&cfg.tasksPath, "tasks", "data/tasks.tsv", "task corpus file to load at startup (env: FAKERGAME_TASKS)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "enable debug logging (env: FAKERGAME_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func run(ctx context.Context, cfg *config) error {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	commsCfg := comms.DefaultConfig()
	commsCfg.Addr = cfg.listen

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.storage,
		CommsConfig: commsCfg,
	}
	if cfg.storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.redisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	if cfg.tasksPath != "" {
		if _, err := app.TaskService.LoadFromFile(ctx, cfg.tasksPath); err != nil {
			logger.Warn("could not load task corpus", slog.String("error", err.Error()))
		}
	}

	adminRouter := admin.NewRouter(admin.RouterConfig{
		Logger: logger,
		Game:   app.Game,
		Tasks:  app.TaskService,
	})
	adminCfg := admin.DefaultServerConfig()
	adminCfg.Port = cfg.adminPort
	adminServer := admin.NewServer(adminRouter, adminCfg, logger)

	if err := app.Comms.Start(); err != nil {
		return fmt.Errorf("start game listener: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
			logger.Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- adminServer.Start()
	}()
	go func() {
		errCh <- app.Game.Run(ctx)
	}()

	logger.Info("server started",
		slog.String("game_addr", app.Comms.Addr()),
		slog.String("admin_addr", adminServer.Addr()),
	)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-ctx.Done():
	}

	if err := app.Comms.Close(); err != nil {
		logger.Warn("game listener close", slog.String("error", err.Error()))
	}
	if err := adminServer.Shutdown(context.Background()); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func main() {
	cobra.CheckErr(newCmd(&config{}).Execute())
}
