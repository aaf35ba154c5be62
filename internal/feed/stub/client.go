// Package stub provides an in-memory feed.Client for testing.
package stub

import (
	"context"
	"sync"
	"time"

	"txf-bar-engine/internal/domain"
	"txf-bar-engine/internal/feed"
)

const dateLayout = "2006-01-02"

// BarCall records one FetchBars invocation.
type BarCall struct {
	Contract string
	Start    time.Time
	End      time.Time
}

// Client implements feed.Client from canned data.
// Populate Bars and Ticks before use; set BarsErr/TicksErr to inject
// failures, or Connected=false to simulate a missing provider session.
type Client struct {
	mu sync.Mutex

	Bars      []domain.RawBar
	Ticks     map[string][]domain.RawTick // keyed by date in YYYY-MM-DD
	BarsErr   error
	TicksErr  error
	Connected bool
	Contract  string

	handler feed.TickHandler

	BarCalls  []BarCall
	TickCalls []string
}

// NewClient creates a connected stub with no data.
func NewClient() *Client {
	return &Client{
		Ticks:     make(map[string][]domain.RawTick),
		Connected: true,
		Contract:  "TXFA6",
	}
}

// FetchBars returns the canned bars regardless of the requested range, and
// records the call so tests can assert on the fetch range.
func (c *Client) FetchBars(_ context.Context, contract string, start, end time.Time) ([]domain.RawBar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.BarCalls = append(c.BarCalls, BarCall{Contract: contract, Start: start, End: end})
	if !c.Connected {
		return nil, feed.ErrNotConnected
	}
	if c.BarsErr != nil {
		return nil, c.BarsErr
	}
	out := make([]domain.RawBar, len(c.Bars))
	copy(out, c.Bars)
	return out, nil
}

// FetchTicks returns the canned ticks stored under the date label.
func (c *Client) FetchTicks(_ context.Context, _ string, date time.Time) ([]domain.RawTick, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := date.Format(dateLayout)
	c.TickCalls = append(c.TickCalls, key)
	if !c.Connected {
		return nil, feed.ErrNotConnected
	}
	if c.TicksErr != nil {
		return nil, c.TicksErr
	}
	return append([]domain.RawTick(nil), c.Ticks[key]...), nil
}

// OnTick registers the live tick handler.
func (c *Client) OnTick(h feed.TickHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

// PushTick delivers a tick to the registered handler, as the provider would.
func (c *Client) PushTick(exchange string, tick domain.RawTick) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()

	if h != nil {
		h(exchange, tick)
	}
}

// Status reports the stub's connection state.
func (c *Client) Status() domain.FeedStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.FeedStatus{Connected: c.Connected, Contract: c.Contract}
}
