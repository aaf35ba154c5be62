// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Gateway holds broker quote-gateway connection details.
type Gateway struct {
	Endpoint  string `envconfig:"GATEWAY_ENDPOINT" default:"wss://localhost:9443/quote"`
	APIKey    string `envconfig:"GATEWAY_API_KEY"`
	SecretKey string `envconfig:"GATEWAY_SECRET_KEY"`
	Contract  string `envconfig:"GATEWAY_CONTRACT" default:"TXFR1"`
}

// Server holds HTTP listener details.
type Server struct {
	Addr          string `envconfig:"HTTP_ADDR" default:":8000"`
	MetricsAddr   string `envconfig:"METRICS_ADDR" default:":9090"`
	AllowedOrigin string `envconfig:"CORS_ORIGIN" default:"*"`
}

// Engine holds reconstruction knobs. The two correction durations mirror
// the provider defects observed so far and may need adjusting when the
// provider changes behavior.
type Engine struct {
	Timezone     string        `envconfig:"EXCHANGE_TZ" default:"Asia/Taipei"`
	LiveCapacity int           `envconfig:"LIVE_BUFFER_CAP" default:"1000"`
	NightShift   time.Duration `envconfig:"BAR_NIGHT_SHIFT" default:"24h"`
	TickSkew     time.Duration `envconfig:"TICK_SKEW" default:"8h"`
}

// Location resolves the configured exchange timezone.
func (e Engine) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", e.Timezone, err)
	}
	return loc, nil
}

// Config is the full server configuration.
type Config struct {
	Gateway Gateway
	Server  Server
	Engine  Engine
}

// Load reads .env when present and fills Config from the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}
