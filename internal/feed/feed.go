// Package feed defines the engine's contract with the market-data provider.
// The engine only ever consumes these three capabilities; fetch timeouts,
// retries and reconnection all belong to the implementation behind them.
package feed

import (
	"context"
	"errors"
	"time"

	"txf-bar-engine/internal/domain"
)

// ErrNotConnected is returned by fetch calls when no provider session is
// active. Callers treat it the same as "no data yet".
var ErrNotConnected = errors.New("feed not connected")

// TickHandler receives one live trade pushed by the provider. It is invoked
// from the provider connection's goroutine and must return quickly.
type TickHandler func(exchange string, tick domain.RawTick)

// Client is the engine-facing surface of the market-data provider.
type Client interface {
	// FetchBars returns pre-aggregated one-minute bars for the calendar
	// date range [start, end], both inclusive.
	FetchBars(ctx context.Context, contract string, start, end time.Time) ([]domain.RawBar, error)

	// FetchTicks returns the raw trades recorded under the given calendar
	// date label.
	FetchTicks(ctx context.Context, contract string, date time.Time) ([]domain.RawTick, error)

	// OnTick registers the handler for live trades. Only one handler is
	// active at a time; a later call replaces the earlier one.
	OnTick(h TickHandler)

	// Status reports connection state and the subscribed contract code.
	Status() domain.FeedStatus
}
