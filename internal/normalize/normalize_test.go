package normalize

import (
	"testing"
	"time"

	"txf-bar-engine/internal/domain"
)

var taipei = time.FixedZone("CST", 8*3600)

func nightWindow(t *testing.T) *domain.SessionWindow {
	t.Helper()
	start := time.Date(2024, 11, 22, 15, 0, 0, 0, taipei)
	return &domain.SessionWindow{
		Kind:        domain.SessionNight,
		TradingDate: time.Date(2024, 11, 22, 0, 0, 0, 0, taipei),
		Start:       start,
		End:         time.Date(2024, 11, 23, 5, 0, 0, 0, taipei),
	}
}

func TestBarTime_NightShiftAtThreshold(t *testing.T) {
	rules := DefaultRules()
	w := nightWindow(t)
	now := time.Date(2024, 11, 25, 12, 0, 0, 0, taipei)

	// Exactly at start+24h: shifted back to the real session start.
	raw := w.Start.Add(24 * time.Hour)
	got, verdict := rules.BarTime(raw, w, now)
	if verdict != Keep {
		t.Fatalf("verdict = %v, want Keep", verdict)
	}
	if !got.Equal(w.Start) {
		t.Errorf("corrected = %v, want %v", got, w.Start)
	}
}

func TestBarTime_NightDropsBelowThreshold(t *testing.T) {
	rules := DefaultRules()
	w := nightWindow(t)
	now := time.Date(2024, 11, 25, 12, 0, 0, 0, taipei)

	// One nanosecond before the threshold: previous trading day's night
	// session mislabeled under this date.
	raw := w.Start.Add(24*time.Hour - time.Nanosecond)
	_, verdict := rules.BarTime(raw, w, now)
	if verdict != DropMislabeled {
		t.Errorf("verdict = %v, want DropMislabeled", verdict)
	}
}

func TestBarTime_DayPassesThrough(t *testing.T) {
	rules := DefaultRules()
	w := &domain.SessionWindow{
		Kind:  domain.SessionDay,
		Start: time.Date(2024, 11, 22, 8, 45, 0, 0, taipei),
		End:   time.Date(2024, 11, 22, 13, 45, 0, 0, taipei),
	}
	now := time.Date(2024, 11, 22, 14, 0, 0, 0, taipei)

	raw := time.Date(2024, 11, 22, 9, 30, 0, 0, taipei)
	got, verdict := rules.BarTime(raw, w, now)
	if verdict != Keep {
		t.Fatalf("verdict = %v, want Keep", verdict)
	}
	if !got.Equal(raw) {
		t.Errorf("day session instant must be unchanged, got %v", got)
	}
}

func TestBarTime_FutureGuard(t *testing.T) {
	rules := DefaultRules()
	w := nightWindow(t)

	// Session placeholder rows: corrected instant lands after now.
	now := time.Date(2024, 11, 22, 16, 0, 0, 0, taipei)
	raw := time.Date(2024, 11, 23, 18, 0, 0, 0, taipei) // corrects to 22nd 18:00 > now

	_, verdict := rules.BarTime(raw, w, now)
	if verdict != DropFuture {
		t.Errorf("verdict = %v, want DropFuture", verdict)
	}

	// At exactly now the bar is kept.
	rawAtNow := now.Add(24 * time.Hour)
	got, verdict := rules.BarTime(rawAtNow, w, now)
	if verdict != Keep {
		t.Fatalf("verdict = %v, want Keep", verdict)
	}
	if !got.Equal(now) {
		t.Errorf("corrected = %v, want %v", got, now)
	}
}

func TestTickTime_SkewAppliesUnconditionally(t *testing.T) {
	rules := DefaultRules()

	raw := time.Date(2024, 11, 23, 8, 28, 0, 0, taipei)
	want := time.Date(2024, 11, 23, 0, 28, 0, 0, taipei)
	if got := rules.TickTime(raw); !got.Equal(want) {
		t.Errorf("TickTime = %v, want %v", got, want)
	}
}

func TestRules_Configurable(t *testing.T) {
	rules := Rules{NightShift: 12 * time.Hour, TickSkew: 30 * time.Minute}
	w := nightWindow(t)
	now := time.Date(2024, 11, 25, 12, 0, 0, 0, taipei)

	raw := w.Start.Add(12 * time.Hour)
	got, verdict := rules.BarTime(raw, w, now)
	if verdict != Keep {
		t.Fatalf("verdict = %v, want Keep", verdict)
	}
	if !got.Equal(w.Start) {
		t.Errorf("corrected = %v, want %v", got, w.Start)
	}

	tick := time.Date(2024, 11, 23, 1, 0, 0, 0, taipei)
	if got := rules.TickTime(tick); !got.Equal(tick.Add(-30 * time.Minute)) {
		t.Errorf("TickTime = %v, want %v", got, tick.Add(-30*time.Minute))
	}
}
