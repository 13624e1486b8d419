package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"signal-engine/config"
	"signal-engine/internal/logger"
	"signal-engine/internal/metrics"
	"signal-engine/internal/scanner"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	cfg := config.Load()
	logger.Init("livescan", cfg.LogLevel)
	slog.Info("starting live scan", "symbols", cfg.Symbols, "interval", cfg.Interval, "window_size", cfg.WindowSize)

	met := metrics.New()
	metrics.Serve(cfg.MetricsAddr)

	svc, err := scanner.New(cfg, slog.Default(), met)
	if err != nil {
		log.Fatalf("[livescan] init failed: %v", err)
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := svc.RunLive(ctx); err != nil && err != context.Canceled {
		log.Fatalf("[livescan] fatal: %v", err)
	}
	slog.Info("livescan stopped")
}
