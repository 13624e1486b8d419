package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/go-redis/redis/v8"

	"signal-engine/config"
	"signal-engine/internal/gateway"
	"signal-engine/internal/logger"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	cfg := config.Load()
	logger.Init("gateway", cfg.LogLevel)

	if cfg.RedisAddr == "" {
		log.Fatal("[gateway] REDIS_ADDR is required")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("[gateway] redis ping failed: %v", err)
	}

	hub := gateway.NewHub(rdb, cfg.ReplaySize)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/api/signals/recent", hub.RecentHandler)

	srv := &http.Server{Addr: cfg.GatewayAddr, Handler: mux}
	go func() {
		slog.Info("gateway listening", "addr", cfg.GatewayAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[gateway] server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	cancel()
	srv.Shutdown(context.Background())
	slog.Info("gateway stopped")
}
