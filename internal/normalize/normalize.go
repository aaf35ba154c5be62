// Package normalize corrects provider timestamp anomalies.
// It is the single place both known feed defects are handled: the night
// session T+1 shift on the bar feed and the constant clock skew on the
// tick feed.
package normalize

import (
	"time"

	"txf-bar-engine/internal/domain"
)

// Verdict classifies the outcome of a bar-time correction.
type Verdict int

const (
	// Keep means the corrected instant belongs to the requested session.
	Keep Verdict = iota

	// DropMislabeled means the bar belongs to the previous trading day's
	// night session, stored by the provider under the current date label.
	DropMislabeled

	// DropFuture means the corrected instant is after the current wall
	// clock; the provider returns full-session placeholder rows before the
	// session completes.
	DropFuture
)

// String returns the verdict's metric label.
func (v Verdict) String() string {
	switch v {
	case Keep:
		return "keep"
	case DropMislabeled:
		return "mislabeled_night"
	case DropFuture:
		return "future"
	default:
		return "unknown"
	}
}

// Rules holds the provider timestamp corrections. Both magnitudes are
// reverse-engineered from observed feed behavior and may change with the
// provider version, so they are configuration rather than constants.
type Rules struct {
	// NightShift is the forward shift the provider bar feed applies to
	// night-session bars, and also the offset from session start to the
	// shift threshold.
	NightShift time.Duration

	// TickSkew is the constant forward skew carried by tick-feed
	// timestamps (the provider records local time as if it were a
	// different reference zone).
	TickSkew time.Duration
}

// DefaultRules returns the corrections observed on the current provider:
// night bars shifted forward one day, ticks skewed forward eight hours.
func DefaultRules() Rules {
	return Rules{
		NightShift: 24 * time.Hour,
		TickSkew:   8 * time.Hour,
	}
}

// BarTime maps a provider bar-feed instant to the real wall-clock instant
// for the given session window and decides whether the bar is admissible.
//
// Night sessions only: an instant at or after start+NightShift carries the
// provider's T+1 label and is shifted back by NightShift; an instant before
// the threshold is the previous trading day's night session mislabeled
// under this date and is dropped. After correction, any instant past now is
// dropped regardless of session kind.
func (r Rules) BarTime(raw time.Time, w *domain.SessionWindow, now time.Time) (time.Time, Verdict) {
	t := raw
	if w.Kind == domain.SessionNight {
		threshold := w.Start.Add(r.NightShift)
		if t.Before(threshold) {
			return time.Time{}, DropMislabeled
		}
		t = t.Add(-r.NightShift)
	}
	if t.After(now) {
		return time.Time{}, DropFuture
	}
	return t, Keep
}

// TickTime maps a provider tick-feed instant to the real wall-clock
// instant. The skew applies unconditionally, before any window filtering.
func (r Rules) TickTime(raw time.Time) time.Time {
	return raw.Add(-r.TickSkew)
}
