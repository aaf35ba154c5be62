// Package main fetches one session's reconstructed bars and prints them,
// for spot checks against the broker's own charts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"txf-bar-engine/internal/config"
	"txf-bar-engine/internal/feed/gateway"
	"txf-bar-engine/internal/history"
	"txf-bar-engine/internal/normalize"
	"txf-bar-engine/internal/reporting"
	"txf-bar-engine/internal/session"
)

func main() {
	date := flag.String("date", time.Now().Format(session.DateLayout), "Trading date (YYYY-MM-DD)")
	night := flag.Bool("night", false, "Night session instead of day session")
	format := flag.String("format", "csv", "Output format: csv or json")
	output := flag.String("output", "", "Output file (default stdout)")
	flag.Parse()

	logger := log.New(os.Stderr, "[history] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	loc, err := cfg.Engine.Location()
	if err != nil {
		logger.Fatalf("Failed to resolve exchange timezone: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := gateway.New(ctx, gateway.Config{
		Endpoint:  cfg.Gateway.Endpoint,
		APIKey:    cfg.Gateway.APIKey,
		SecretKey: cfg.Gateway.SecretKey,
		Contract:  cfg.Gateway.Contract,
	}, logger)
	if err != nil {
		logger.Fatalf("Gateway session failed: %v", err)
	}
	defer client.Close()

	engine := history.New(history.Options{
		Feed: client,
		Rules: normalize.Rules{
			NightShift: cfg.Engine.NightShift,
			TickSkew:   cfg.Engine.TickSkew,
		},
		Location: loc,
		Logger:   logger,
	})

	bars, err := engine.GetHistory(ctx, *date, *night)
	if err != nil {
		logger.Fatalf("Reconstruction failed: %v", err)
	}
	logger.Printf("Reconstructed %d bars for %s (%s session)", len(bars), *date, sessionName(*night))

	var rendered []byte
	switch *format {
	case "csv":
		rendered = []byte(reporting.RenderCSV(bars))
	case "json":
		rendered, err = json.MarshalIndent(bars, "", "  ")
		if err != nil {
			logger.Fatalf("Encode failed: %v", err)
		}
		rendered = append(rendered, '\n')
	default:
		logger.Fatalf("Unknown format %q (want csv or json)", *format)
	}

	if *output == "" {
		fmt.Print(string(rendered))
		return
	}
	if err := os.WriteFile(*output, rendered, 0o644); err != nil {
		logger.Fatalf("Write %s: %v", *output, err)
	}
	logger.Printf("Wrote %s", *output)
}

func sessionName(night bool) string {
	if night {
		return "night"
	}
	return "day"
}
