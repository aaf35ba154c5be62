package domain

import "time"

// Tick is a single trade after timestamp normalization.
// Ticks are read-only inputs to aggregation and are never mutated.
type Tick struct {
	Time   time.Time
	Price  float64
	Volume int64
}

// RawBar is one pre-aggregated minute bar as returned by the provider
// bar feed, timestamped with the provider's nanosecond clock.
type RawBar struct {
	TS     int64 // nanoseconds epoch, provider clock
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// RawTick is one trade as returned by the provider tick feed.
// The provider clock behind TS is known to carry a constant skew.
type RawTick struct {
	TS     int64 // nanoseconds epoch, provider clock
	Price  float64
	Volume int64
}
