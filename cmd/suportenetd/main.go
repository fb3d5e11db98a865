package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/suportenet-io/suportenet/internal/api"
	"github.com/suportenet-io/suportenet/internal/config"
	"github.com/suportenet-io/suportenet/internal/fulfill"
	"github.com/suportenet-io/suportenet/internal/logbuf"
	"github.com/suportenet-io/suportenet/internal/notify"
	"github.com/suportenet-io/suportenet/internal/schedule"
	"github.com/suportenet-io/suportenet/internal/ticket"
	"github.com/suportenet-io/suportenet/internal/webhook"
)

func main() {
	configPath := flag.String("config", "", "Path to config JSON file")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	// Set up logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logBuf := logbuf.New(2000)
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logbuf.NewHandler(jsonHandler, logBuf))

	// Load config (file or env)
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("suportenetd starting", "port", cfg.Server.Port)

	// 1. Ticket store: in-memory by default, SQLite when a path is set
	var store ticket.Store
	if cfg.Store.Path != "" {
		sqlStore, err := ticket.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			logger.Error("failed to open ticket store", "path", cfg.Store.Path, "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		store = sqlStore
		logger.Info("ticket store ready", "backend", "sqlite", "path", cfg.Store.Path)
	} else {
		store = ticket.NewMemoryStore()
		logger.Info("ticket store ready", "backend", "memory")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Operational notifiers
	var notifiers notify.Multi
	if tg := cfg.Notify.Telegram; tg != nil {
		tn, err := notify.NewTelegram(tg.Token, tg.ChatID, logger.With("notifier", "telegram"))
		if err != nil {
			logger.Error("failed to init telegram notifier", "error", err)
			os.Exit(1)
		}
		notifiers = append(notifiers, tn)
	}
	if sl := cfg.Notify.Slack; sl != nil {
		notifiers = append(notifiers, notify.NewSlack(sl.Token, sl.Channel))
	}
	var notifier fulfill.Notifier
	if len(notifiers) > 0 {
		notifier = notifiers
		logger.Info("notifiers ready", "count", len(notifiers))
	}

	// 3. Intent router + fulfillment server
	router := fulfill.New(store, notifier, logger.With("component", "fulfill"))
	webhookSrv := webhook.NewServer(webhook.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		Secret:      cfg.Server.Secret,
		BearerToken: cfg.Server.BearerToken,
	}, router, logger.With("component", "webhook"))
	go safeGo(logger, "webhook-server", func() { webhookSrv.Start(ctx) })

	// 4. Operations API
	if cfg.API.Port > 0 {
		apiSrv := api.NewServer(store, api.Config{
			Host: cfg.API.Host,
			Port: cfg.API.Port,
			Key:  cfg.API.Key,
		}, logger.With("component", "api"), logBuf)
		go safeGo(logger, "api-server", func() { apiSrv.Start(ctx) })
		logger.Info("api server started", "port", cfg.API.Port)
	}

	// 5. Upcoming-visits digest
	if cfg.Digest.Schedule != "" {
		var notifyFn schedule.NotifyFunc
		if notifier != nil {
			notifyFn = notifier.Notify
		}
		digest := schedule.NewDigest(store, notifyFn, logger.With("component", "digest"))
		if err := digest.Register(cfg.Digest.Schedule); err != nil {
			logger.Error("failed to register digest", "error", err)
			os.Exit(1)
		}
		go safeGo(logger, "digest", func() { digest.Start(ctx) })
	}

	// 6. Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)
	cancel()
	logger.Info("suportenetd stopped")
}

// safeGo runs fn with panic recovery.
func safeGo(logger *slog.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("goroutine panicked", "name", name, "panic", fmt.Sprintf("%v", r))
		}
	}()
	fn()
}
