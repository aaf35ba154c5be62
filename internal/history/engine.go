// Package history reconstructs session bar series from provider data.
// It coordinates: window resolution → bar fetch → normalization/filter →
// (night sessions) tick fetch → aggregation → merge.
package history

import (
	"context"
	"log"
	"time"

	"txf-bar-engine/internal/domain"
	"txf-bar-engine/internal/feed"
	"txf-bar-engine/internal/live"
	"txf-bar-engine/internal/normalize"
	"txf-bar-engine/internal/observability"
	"txf-bar-engine/internal/series"
	"txf-bar-engine/internal/session"
)

// Engine owns the reconstruction pipeline and the live tick buffer.
// Reconstruction requests share no mutable state and may run in parallel;
// the only guarded state is the live buffer behind its own mutex.
type Engine struct {
	feed   feed.Client
	rules  normalize.Rules
	loc    *time.Location
	live   *live.Buffer
	logger *log.Logger
	now    func() time.Time
}

// Options for creating an Engine.
type Options struct {
	// Feed is the market-data provider. Required.
	Feed feed.Client

	// Rules are the provider timestamp corrections. Zero value falls back
	// to normalize.DefaultRules.
	Rules normalize.Rules

	// Location is the exchange-local timezone. Defaults to time.Local.
	Location *time.Location

	// LiveCapacity bounds the live tick buffer. Non-positive values fall
	// back to live.DefaultCapacity.
	LiveCapacity int

	// Logger for degraded-result reporting. Defaults to log.Default().
	Logger *log.Logger

	// Now is the wall clock, overridable in tests.
	Now func() time.Time
}

// New creates an Engine and registers its live tick handler on the feed.
func New(opts Options) *Engine {
	e := &Engine{
		feed:   opts.Feed,
		rules:  opts.Rules,
		loc:    opts.Location,
		live:   live.NewBuffer(opts.LiveCapacity),
		logger: opts.Logger,
		now:    opts.Now,
	}
	if e.rules == (normalize.Rules{}) {
		e.rules = normalize.DefaultRules()
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}

	e.feed.OnTick(e.handleTick)
	return e
}

// GetHistory reconstructs the bar series for one trading date and session.
// The only error returned is for malformed input; every downstream failure
// degrades to a smaller result, so callers always receive a valid,
// ascending, timestamp-unique series.
func (e *Engine) GetHistory(ctx context.Context, dateStr string, night bool) ([]domain.Bar, error) {
	kind := domain.SessionDay
	if night {
		kind = domain.SessionNight
	}

	w, err := session.Resolve(dateStr, kind, e.loc)
	if err != nil {
		return nil, err
	}
	observability.RecordHistoryRequest(kind.String())

	bars := e.fetchSessionBars(ctx, w)

	// Tick-based reconstruction backfills the currently forming night
	// session, which the bar feed often omits. Best effort only.
	var tickBars []domain.Bar
	if kind == domain.SessionNight {
		tickBars = e.fetchTickBars(ctx, w)
	}

	merged := series.Merge(bars, tickBars)
	if merged == nil {
		merged = []domain.Bar{}
	}
	return merged, nil
}

// fetchSessionBars loads provider bars for the window's fetch range and
// keeps the ones that, after correction, fall inside the session. Fetch
// failures and a missing provider session both yield an empty slice:
// callers treat "no data yet" and "fetch failed" identically.
func (e *Engine) fetchSessionBars(ctx context.Context, w *domain.SessionWindow) []domain.Bar {
	status := e.feed.Status()
	if !status.Connected || status.Contract == "" {
		e.logger.Printf("history %s %s: feed not connected, returning empty series",
			w.TradingDate.Format(session.DateLayout), w.Kind)
		return nil
	}

	began := time.Now()
	raw, err := e.feed.FetchBars(ctx, status.Contract, w.FetchStart, w.FetchEnd)
	observability.RecordFetchLatency("kbars", time.Since(began).Seconds())
	if err != nil {
		observability.RecordFetchFailure("kbars")
		e.logger.Printf("history %s %s: fetch bars: %v",
			w.TradingDate.Format(session.DateLayout), w.Kind, err)
		return nil
	}

	now := e.now()
	var out []domain.Bar
	for _, rb := range raw {
		t, verdict := e.rules.BarTime(time.Unix(0, rb.TS).In(e.loc), w, now)
		if verdict != normalize.Keep {
			observability.RecordAnomalyDropped(verdict.String())
			continue
		}
		if !w.Admits(t) {
			continue
		}
		out = append(out, domain.Bar{
			Time:        t,
			TimestampMs: t.UnixMilli(),
			Open:        rb.Open,
			High:        rb.High,
			Low:         rb.Low,
			Close:       rb.Close,
			Volume:      rb.Volume,
		})
	}
	observability.RecordProviderBarsKept(len(out))
	return out
}

// fetchTickBars loads raw ticks for the night session and aggregates them
// into minute bars. The provider stores a night session's ticks under the
// next trading day's date label. Failures are non-fatal: the provider bars
// already assembled stand on their own.
func (e *Engine) fetchTickBars(ctx context.Context, w *domain.SessionWindow) []domain.Bar {
	status := e.feed.Status()
	if !status.Connected || status.Contract == "" {
		return nil
	}

	tickDate := w.TradingDate.AddDate(0, 0, 1)

	began := time.Now()
	raw, err := e.feed.FetchTicks(ctx, status.Contract, tickDate)
	observability.RecordFetchLatency("ticks", time.Since(began).Seconds())
	if err != nil {
		observability.RecordFetchFailure("ticks")
		e.logger.Printf("history %s %s: fetch ticks: %v",
			w.TradingDate.Format(session.DateLayout), w.Kind, err)
		return nil
	}

	ticks := make([]domain.Tick, 0, len(raw))
	for _, rt := range raw {
		ticks = append(ticks, domain.Tick{
			Time:   e.rules.TickTime(time.Unix(0, rt.TS).In(e.loc)),
			Price:  rt.Price,
			Volume: rt.Volume,
		})
	}

	bars := series.AggregateTicks(ticks, w.Start, w.End)
	observability.RecordTickBarsBuilt(len(bars))
	return bars
}

// handleTick is the live-feed callback. The stream's own timestamps are
// not trusted; each point is stamped with the system clock and stored as a
// flat bar. Invoked from the feed connection's goroutine.
func (e *Engine) handleTick(_ string, tick domain.RawTick) {
	now := e.now().In(e.loc)
	e.live.Append(domain.Bar{
		Time:        now,
		TimestampMs: now.UnixMilli(),
		Open:        tick.Price,
		High:        tick.Price,
		Low:         tick.Price,
		Close:       tick.Price,
		Volume:      tick.Volume,
	})
	observability.RecordLiveTick(e.live.Len())
}

// LiveSnapshot returns a copy of the points streamed since process start.
func (e *Engine) LiveSnapshot() []domain.Bar {
	return e.live.Snapshot()
}

// Status reports the provider connection state.
func (e *Engine) Status() domain.FeedStatus {
	status := e.feed.Status()
	observability.SetFeedConnected(status.Connected)
	return status
}
