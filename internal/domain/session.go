package domain

import "time"

// SessionKind identifies which trading session a request targets.
type SessionKind string

const (
	SessionDay   SessionKind = "day"
	SessionNight SessionKind = "night"
)

// String returns the string representation of SessionKind.
func (k SessionKind) String() string {
	return string(k)
}

// IsValid checks if the kind is a valid value.
func (k SessionKind) IsValid() bool {
	return k == SessionDay || k == SessionNight
}

// SessionWindow is the wall-clock window belonging to one trading date and
// session kind, plus the calendar range the provider bar feed must be
// queried with. Windows are built per request and never modified.
type SessionWindow struct {
	Kind        SessionKind
	TradingDate time.Time // midnight, exchange-local
	Start       time.Time
	End         time.Time
	FetchStart  time.Time // calendar date, inclusive
	FetchEnd    time.Time // calendar date, inclusive

	// SaturdayExtension holds Saturday's day session when this window is a
	// Friday night session; nil otherwise.
	SaturdayExtension *SessionWindow
}

// Contains reports whether t falls inside [Start, End].
func (w *SessionWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Admits reports whether t belongs to the session, including the Saturday
// extension of a Friday night session.
func (w *SessionWindow) Admits(t time.Time) bool {
	if w.Contains(t) {
		return true
	}
	return w.SaturdayExtension != nil && w.SaturdayExtension.Contains(t)
}
