package series

import (
	"sort"

	"txf-bar-engine/internal/domain"
)

// Merge combines bar series into one ascending, timestamp-deduplicated
// series. When more than one source carries a bar for the same TimestampMs
// the earlier-passed source wins, so callers list authoritative sources
// first (provider bars before tick-derived approximations). Gaps are not
// filled; the result is sparse wherever no source traded.
func Merge(sources ...[]domain.Bar) []domain.Bar {
	seen := make(map[int64]struct{})
	var out []domain.Bar
	for _, src := range sources {
		for _, b := range src {
			if _, ok := seen[b.TimestampMs]; ok {
				continue
			}
			seen[b.TimestampMs] = struct{}{}
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimestampMs < out[j].TimestampMs })
	return out
}
