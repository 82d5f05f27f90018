package timefmt

import (
	"fmt"
	"time"
)

// Elapsed returns a compact duration for status lines, e.g. "0.42s",
// "1m 05s", or "2h 03m". Negative durations are treated as zero.
func Elapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d / time.Minute)
		seconds := int((d % time.Minute) / time.Second)
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %02dm", hours, minutes)
}

// Since is Elapsed(now - start). If now is zero, time.Now() is used.
func Since(start, now time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	return Elapsed(now.Sub(start))
}
