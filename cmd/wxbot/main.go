package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wxbot/internal/bus"
	"wxbot/internal/config"
	"wxbot/internal/contacts"
	"wxbot/internal/gateway"
	"wxbot/internal/metrics"
	"wxbot/internal/news"
	"wxbot/internal/notify"
	"wxbot/internal/ocr"
	"wxbot/internal/provider"
	"wxbot/internal/robot"
	"wxbot/internal/sched"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "wxbot",
		Short: "wxbot: WeChat group auto-responder",
		Long:  "wxbot watches configured group chats through a gateway bridge and answers media triggers, idiom queries, OCR requests, and @-mentions.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default: ~/.wxbot/config.yaml)")

	root.AddCommand(initCmd())
	root.AddCommand(runCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(configCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize config and data directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			cfgPath := config.DefaultConfigPath()
			if err := os.MkdirAll(cfgDir, 0o755); err != nil {
				return err
			}
			cfg := config.Defaults()
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			for _, dir := range []string{cfg.General.DataDir, cfg.Gateway.DownloadDir} {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			logger.Info("initialized", "config", cfgPath, "data", cfg.General.DataDir)
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to the gateway and start responding",
		RunE:  run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfgPath := resolveConfigPath()
	mgr, err := config.NewManager(cfgPath, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Current()

	for _, dir := range []string{cfg.General.DataDir, cfg.Gateway.DownloadDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := gateway.New(gateway.Config{Addr: cfg.Gateway.Addr, Logger: logger})
	if err := gw.Connect(ctx); err != nil {
		return err
	}

	store, err := contacts.NewStore(cfg.Contacts.DBPath, logger)
	if err != nil {
		return fmt.Errorf("open contact store: %w", err)
	}
	defer store.Close()

	directory := contacts.NewDirectory(store, logger)
	if err := directory.Bootstrap(ctx, gw); err != nil {
		return fmt.Errorf("bootstrap contacts: %w", err)
	}

	chat, err := provider.SelectFromConfig(cfg.Providers, logger)
	if err != nil {
		logger.Warn("no usable conversational backend, @-mentions get the canned reply", "err", err)
	}

	bot := robot.New(robot.Config{
		Manager:   mgr,
		Gateway:   gw,
		Contacts:  directory,
		Chat:      chat,
		Extractor: ocr.New(cfg.OCR, logger),
		Logger:    logger,
	})
	logger.Info("starting", "version", version, "bot", bot.String())

	var notifier *notify.Notifier
	if cfg.Notify.Enabled {
		notifier, err = notify.New(cfg.Notify.Token, cfg.Notify.ChatID, logger)
		if err != nil {
			logger.Warn("ops notifier disabled", "err", err)
		}
	}
	notifier.Sendf("wxbot %s started: %s", version, bot.String())

	eventBus := bus.New(256, logger)
	defer eventBus.Close()

	if len(cfg.News.Receivers) > 0 {
		runner := sched.NewRunner(logger)
		digest := news.NewClient(cfg.News.APIBase, logger)
		err := runner.Add(cfg.News.Cron, "news-digest", func() {
			current := mgr.Current()
			digest.Report(ctx, gw, current.News.Receivers)
		})
		if err != nil {
			return err
		}
		runner.Start(ctx)
	}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.HandleFunc(cfg.Metrics.Endpoint, metrics.Collector.Handler())
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			logger.Info("metrics listening", "addr", addr, "endpoint", cfg.Metrics.Endpoint)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server stopped", "err", err)
			}
		}()
	}

	go func() {
		if err := gw.Run(ctx, eventBus); err != nil {
			logger.Error("gateway loop ended", "err", err)
			notifier.Sendf("wxbot gateway loop ended: %v", err)
			stop()
		}
	}()

	bot.Dispatch(ctx, eventBus)
	notifier.Send("wxbot stopped")
	return nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show config and backend status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				logger.Info("config", "path", cfgPath, "loaded", false)
				cfg = config.Defaults()
			} else {
				logger.Info("config", "path", cfgPath, "loaded", true)
			}
			logger.Info("groups", "monitored", len(cfg.Groups), "withExpiry", len(cfg.Expiry))

			chat, err := provider.SelectFromConfig(cfg.Providers, logger)
			if err != nil {
				logger.Info("backend", "available", false)
				return nil
			}
			logger.Info("backend", "available", true, "name", chat.Name())
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Long:  "Get, set, and list configuration values. Changes are saved to the config file.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Get a config value (e.g. providers.active)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			val, err := config.GetByPath(cfg, args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(val, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [path] [value]",
		Short: "Set a config value (e.g. chitchat.enableBackend true)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.SetByPath(cfg, args[0], args[1]); err != nil {
				return fmt.Errorf("set value: %w", err)
			}
			if err := config.Save(cfgPath, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			logger.Info("config updated", "path", args[0], "value", args[1], "file", cfgPath)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all config values (secrets masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			data, _ := json.MarshalIndent(config.Sanitize(cfg), "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolveConfigPath())
		},
	})

	return cmd
}
