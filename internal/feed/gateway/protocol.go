package gateway

import (
	"time"

	"txf-bar-engine/internal/domain"
)

// Wire operations.
const (
	opLogin     = "login"
	opSubscribe = "subscribe"
	opKBars     = "kbars"
	opTicks     = "ticks"
	opTick      = "tick"
)

const dateLayout = "2006-01-02"

// envelope is the single wire frame exchanged with the quote gateway.
// Requests carry ID, Op and the operation's arguments; responses echo the
// request ID; pushed ticks carry Op only.
type envelope struct {
	ID    uint64 `json:"id,omitempty"`
	Op    string `json:"op,omitempty"`
	Error string `json:"error,omitempty"`

	// login
	APIKey    string `json:"api_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`

	// subscribe / fetch arguments
	Contract string `json:"contract,omitempty"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Date     string `json:"date,omitempty"`

	// payloads
	Exchange string     `json:"exchange,omitempty"`
	Tick     *wireTick  `json:"tick,omitempty"`
	Bars     []wireBar  `json:"bars,omitempty"`
	Ticks    []wireTick `json:"ticks,omitempty"`
}

// wireBar is one pre-aggregated bar on the wire.
type wireBar struct {
	TS     int64   `json:"ts"` // nanoseconds epoch
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// wireTick is one trade on the wire.
type wireTick struct {
	TS     int64   `json:"ts"` // nanoseconds epoch
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

func (b wireBar) toRawBar() domain.RawBar {
	return domain.RawBar{
		TS:     b.TS,
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Close:  b.Close,
		Volume: b.Volume,
	}
}

func (t wireTick) toRawTick() domain.RawTick {
	return domain.RawTick{
		TS:     t.TS,
		Price:  t.Close,
		Volume: t.Volume,
	}
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
