package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/lineage/internal/api"
	"github.com/gyaneshwarpardhi/lineage/internal/config"
	"github.com/gyaneshwarpardhi/lineage/internal/lineage"
	"github.com/gyaneshwarpardhi/lineage/internal/query"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPath := flag.String("config", "configs/lineages.yaml", "Path to lineages YAML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath, config.Validate)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()

	// ── Build lineages ────────────────────────────────────────────────────────
	forest, err := lineage.Build(cfg)
	if err != nil {
		slog.Error("failed to build lineages", "err", err)
		os.Exit(1)
	}
	slog.Info("lineages built", "lineages", forest.Len(), "vampires", forest.NodeCount())

	// ── Query engine ──────────────────────────────────────────────────────────
	reg := query.NewRegistry()
	query.RegisterBuiltins(reg, cfg.Engine.Threshold())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := query.NewEngine(ctx, forest, reg, cfg.Engine)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	eng.Follow(loader)
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.New(eng, loader),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	eng.Shutdown()
	cancel()
	slog.Info("goodbye")
}
