package session

import (
	"errors"
	"testing"
	"time"

	"txf-bar-engine/internal/domain"
)

var taipei = time.FixedZone("CST", 8*3600)

func TestResolve_DayWindow(t *testing.T) {
	w, err := Resolve("2024-11-22", domain.SessionDay, taipei)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	wantStart := time.Date(2024, 11, 22, 8, 45, 0, 0, taipei)
	wantEnd := time.Date(2024, 11, 22, 13, 45, 0, 0, taipei)

	if !w.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", w.End, wantEnd)
	}
	if !w.FetchStart.Equal(w.TradingDate) || !w.FetchEnd.Equal(w.TradingDate) {
		t.Errorf("day fetch range should be the trading date itself, got [%v, %v]", w.FetchStart, w.FetchEnd)
	}
	if w.SaturdayExtension != nil {
		t.Error("day session should not have a Saturday extension")
	}
}

func TestResolve_NightWindowSpansFourteenHours(t *testing.T) {
	// 15:00 -> 05:00 next day, for every day of one full week.
	for day := 18; day <= 24; day++ {
		w, err := Resolve(time.Date(2024, 11, day, 0, 0, 0, 0, taipei).Format(DateLayout), domain.SessionNight, taipei)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got := w.End.Sub(w.Start); got != 14*time.Hour {
			t.Errorf("day %d: night window length = %v, want 14h", day, got)
		}
		if w.Start.Hour() != 15 || w.End.Hour() != 5 {
			t.Errorf("day %d: window %v-%v, want 15:00-05:00", day, w.Start, w.End)
		}
	}
}

func TestResolve_NightFetchRangeCoversTwoExtraDays(t *testing.T) {
	w, err := Resolve("2024-11-20", domain.SessionNight, taipei)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got := w.FetchEnd.Sub(w.FetchStart); got != 48*time.Hour {
		t.Errorf("night fetch range = %v, want 48h", got)
	}
}

func TestResolve_FridayNightHasSaturdayExtension(t *testing.T) {
	// 2024-11-22 is a Friday.
	w, err := Resolve("2024-11-22", domain.SessionNight, taipei)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	ext := w.SaturdayExtension
	if ext == nil {
		t.Fatal("Friday night session must carry a Saturday extension")
	}

	// Extension equals Saturday's regular day window.
	sat, err := Resolve("2024-11-23", domain.SessionDay, taipei)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !ext.Start.Equal(sat.Start) || !ext.End.Equal(sat.End) {
		t.Errorf("extension window [%v, %v], want [%v, %v]", ext.Start, ext.End, sat.Start, sat.End)
	}
	if ext.SaturdayExtension != nil {
		t.Error("extension must not recurse")
	}
}

func TestResolve_NonFridayNightHasNoExtension(t *testing.T) {
	// Saturday through Thursday around the 2024-11-22 Friday.
	for _, dateStr := range []string{"2024-11-18", "2024-11-19", "2024-11-20", "2024-11-21", "2024-11-23", "2024-11-24"} {
		w, err := Resolve(dateStr, domain.SessionNight, taipei)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", dateStr, err)
		}
		if w.SaturdayExtension != nil {
			t.Errorf("%s: unexpected Saturday extension", dateStr)
		}
	}
}

func TestResolve_InvalidInput(t *testing.T) {
	if _, err := Resolve("22-11-2024", domain.SessionDay, taipei); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("malformed date: got %v, want ErrInvalidInput", err)
	}
	if _, err := Resolve("2024-11-22", domain.SessionKind("afternoon"), taipei); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad kind: got %v, want ErrInvalidInput", err)
	}
}

func TestSessionWindow_Admits(t *testing.T) {
	w, err := Resolve("2024-11-22", domain.SessionNight, taipei)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"session start", w.Start, true},
		{"just before start", w.Start.Add(-time.Nanosecond), false},
		{"midnight crossing", time.Date(2024, 11, 23, 0, 30, 0, 0, taipei), true},
		{"session end", w.End, true},
		{"gap between night and Saturday open", time.Date(2024, 11, 23, 7, 0, 0, 0, taipei), false},
		{"inside Saturday extension", time.Date(2024, 11, 23, 10, 0, 0, 0, taipei), true},
		{"after Saturday close", time.Date(2024, 11, 23, 14, 0, 0, 0, taipei), false},
	}
	for _, tc := range cases {
		if got := w.Admits(tc.t); got != tc.want {
			t.Errorf("%s: Admits(%v) = %v, want %v", tc.name, tc.t, got, tc.want)
		}
	}
}
