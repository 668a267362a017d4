package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benoitkugler/icondup/batch"
	"github.com/benoitkugler/icondup/config"
	"github.com/benoitkugler/icondup/server"
	"go.uber.org/zap"
)

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath(), "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (library changes, skipped icons, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg := loadConfig(*configPath)
	debugMode := cfg.Debug || *debug
	logger := newLogger(debugMode)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", *configPath),
		zap.Bool("debug", debugMode),
	)

	cat, err := newCatalog(cfg, cfg.Library.ThemeIcons, logger)
	if err != nil {
		logger.Fatal("Failed to load icons", zap.Error(err))
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Library.Watch && cat.lib != nil {
		if err := cat.lib.Watch(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	orchestrator := batch.New(batch.WithLogger(logger))
	srv := server.NewServer(orchestrator, cat, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	orchestrator.Reset()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}
