// Package main runs the bar reconstruction service: it keeps one session
// to the broker quote gateway for live ticks and history fetches, and
// serves the reconstruction API over HTTP.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"txf-bar-engine/internal/config"
	"txf-bar-engine/internal/feed/gateway"
	"txf-bar-engine/internal/history"
	"txf-bar-engine/internal/normalize"
	"txf-bar-engine/internal/observability"
	"txf-bar-engine/internal/server"
)

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	loc, err := cfg.Engine.Location()
	if err != nil {
		logger.Fatalf("Failed to resolve exchange timezone: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The gateway session is kept even when login fails: the API stays up
	// and reports disconnected status until the next restart.
	client, err := gateway.New(ctx, gateway.Config{
		Endpoint:  cfg.Gateway.Endpoint,
		APIKey:    cfg.Gateway.APIKey,
		SecretKey: cfg.Gateway.SecretKey,
		Contract:  cfg.Gateway.Contract,
	}, logger)
	if err != nil {
		logger.Printf("Gateway session not established: %v", err)
	}
	defer client.Close()
	observability.SetFeedConnected(client.Status().Connected)

	engine := history.New(history.Options{
		Feed: client,
		Rules: normalize.Rules{
			NightShift: cfg.Engine.NightShift,
			TickSkew:   cfg.Engine.TickSkew,
		},
		Location:     loc,
		LiveCapacity: cfg.Engine.LiveCapacity,
		Logger:       logger,
	})

	api := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(engine, cfg.Server.AllowedOrigin, logger),
	}

	go func() {
		logger.Printf("API listening on %s", cfg.Server.Addr)
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("API server error: %v", err)
		}
	}()

	if cfg.Server.MetricsAddr != "" && cfg.Server.MetricsAddr != cfg.Server.Addr {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Printf("Metrics listening on %s", cfg.Server.MetricsAddr)
			if err := http.ListenAndServe(cfg.Server.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Wait for shutdown signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Printf("Received signal %v, shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		logger.Printf("API shutdown: %v", err)
	}

	logger.Println("Shutdown complete")
}
