// Package reporting renders reconstructed bar series for offline inspection.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"txf-bar-engine/internal/domain"
)

// RenderCSV renders a bar series as CSV with a header row.
// Prices keep two decimals, matching the exchange tick size.
func RenderCSV(bars []domain.Bar) string {
	var sb strings.Builder

	sb.WriteString("time,timestamp,open,high,low,close,volume\n")

	for _, b := range bars {
		sb.WriteString(fmt.Sprintf("%s,%d,%.2f,%.2f,%.2f,%.2f,%d\n",
			b.Time.Format(time.RFC3339),
			b.TimestampMs,
			b.Open,
			b.High,
			b.Low,
			b.Close,
			b.Volume,
		))
	}

	return sb.String()
}
