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
	"signal-engine/internal/scanner"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	cfg := config.Load()
	logger.Init("scan", cfg.LogLevel)
	slog.Info("starting scan", "symbols", cfg.Symbols, "interval", cfg.Interval, "window", cfg.ScanWindow)

	svc, err := scanner.New(cfg, slog.Default(), nil)
	if err != nil {
		log.Fatalf("[scan] init failed: %v", err)
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

	if err := svc.ScanOnce(ctx); err != nil {
		log.Fatalf("[scan] fatal: %v", err)
	}
}
