// Package series builds and combines minute-resolution bar series.
package series

import (
	"sort"
	"time"

	"txf-bar-engine/internal/domain"
)

// AggregateTicks folds normalized ticks into one-minute OHLCV bars.
//
// Ticks outside [start, end] are dropped before bucketing. Within a minute
// bucket the first tick opens the bar, later ticks extend high/low, the last
// tick closes it, and volumes sum. Minutes with no trades produce no bar.
// Close prices are last-write-wins, so unsorted input is sorted by instant
// first; the input slice itself is never reordered.
func AggregateTicks(ticks []domain.Tick, start, end time.Time) []domain.Bar {
	if len(ticks) == 0 {
		return nil
	}

	inOrder := func(i, j int) bool { return ticks[i].Time.Before(ticks[j].Time) }
	if !sort.SliceIsSorted(ticks, inOrder) {
		sorted := make([]domain.Tick, len(ticks))
		copy(sorted, ticks)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
		ticks = sorted
	}

	buckets := make(map[int64]*domain.Bar)
	for _, tk := range ticks {
		if tk.Time.Before(start) || tk.Time.After(end) {
			continue
		}

		minute := tk.Time.Truncate(time.Minute)
		key := minute.UnixMilli()

		b, ok := buckets[key]
		if !ok {
			buckets[key] = &domain.Bar{
				Time:        minute,
				TimestampMs: key,
				Open:        tk.Price,
				High:        tk.Price,
				Low:         tk.Price,
				Close:       tk.Price,
				Volume:      tk.Volume,
			}
			continue
		}

		if tk.Price > b.High {
			b.High = tk.Price
		}
		if tk.Price < b.Low {
			b.Low = tk.Price
		}
		b.Close = tk.Price
		b.Volume += tk.Volume
	}

	out := make([]domain.Bar, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimestampMs < out[j].TimestampMs })
	return out
}
