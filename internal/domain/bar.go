package domain

import "time"

// Bar is one minute-resolution OHLCV point of a reconstructed series.
// JSON field names follow the frontend contract: time is the bar's instant
// in exchange-local time, timestamp its Unix milliseconds. TimestampMs is
// the canonical sort and dedup key; it is unique within one merged series.
type Bar struct {
	Time        time.Time `json:"time"`
	TimestampMs int64     `json:"timestamp"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      int64     `json:"volume"`
}
