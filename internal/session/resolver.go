// Package session computes wall-clock trading windows for TXF sessions.
// A trading date is the calendar label a broker assigns to a day+night
// session pair; the night portion of it crosses midnight.
package session

import (
	"errors"
	"fmt"
	"time"

	"txf-bar-engine/internal/domain"
)

// ErrInvalidInput is returned for a malformed trading date or session kind.
var ErrInvalidInput = errors.New("invalid input")

// DateLayout is the wire format for trading dates.
const DateLayout = "2006-01-02"

// Session boundaries in exchange-local time.
const (
	dayOpenHour    = 8
	dayOpenMinute  = 45
	dayCloseHour   = 13
	dayCloseMinute = 45
	nightOpenHour  = 15
	nightCloseHour = 5
)

// ParseTradingDate parses a YYYY-MM-DD trading date in the given location.
func ParseTradingDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: trading date %q", ErrInvalidInput, s)
	}
	return d, nil
}

// Resolve computes the session window for a trading date and session kind.
//
// Day sessions run 08:45-13:45 on the trading date itself and the provider
// bar feed is queried for that single date. Night sessions run 15:00 on the
// trading date until 05:00 the next morning; the provider labels overnight
// bars with the following trading day (T+1) and is itself off by one on
// occasion, so the fetch range is widened to two extra days. A Friday night
// session is immediately followed by Saturday's regular day session,
// returned as the window's SaturdayExtension.
func Resolve(dateStr string, kind domain.SessionKind, loc *time.Location) (*domain.SessionWindow, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: session kind %q", ErrInvalidInput, kind)
	}
	date, err := ParseTradingDate(dateStr, loc)
	if err != nil {
		return nil, err
	}
	return resolve(date, kind), nil
}

func resolve(date time.Time, kind domain.SessionKind) *domain.SessionWindow {
	if kind == domain.SessionDay {
		return dayWindow(date)
	}

	w := &domain.SessionWindow{
		Kind:        domain.SessionNight,
		TradingDate: date,
		Start:       at(date, nightOpenHour, 0),
		End:         at(date.AddDate(0, 0, 1), nightCloseHour, 0),
		FetchStart:  date,
		FetchEnd:    date.AddDate(0, 0, 2),
	}
	if date.Weekday() == time.Friday {
		w.SaturdayExtension = dayWindow(date.AddDate(0, 0, 1))
	}
	return w
}

func dayWindow(date time.Time) *domain.SessionWindow {
	return &domain.SessionWindow{
		Kind:        domain.SessionDay,
		TradingDate: date,
		Start:       at(date, dayOpenHour, dayOpenMinute),
		End:         at(date, dayCloseHour, dayCloseMinute),
		FetchStart:  date,
		FetchEnd:    date,
	}
}

func at(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}
