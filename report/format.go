package report

import (
	"fmt"
	"math"
	"time"
)

// Colors used to highlight the levels.
const (
	DefaultColor   = "\x1b[0m"
	RelatedColor   = "\x1b[36m"
	SimilarColor   = "\x1b[33m"
	DuplicateColor = "\x1b[31m"
)

// decorate shows the levels in different colors.
func decorate(s string, level Level) string {
	switch level {
	case Related:
		s = RelatedColor + s
	case Similar:
		s = SimilarColor + s
	case Duplicate:
		s = DuplicateColor + s
	default:
		return s
	}
	return s + DefaultColor
}

// FormatTime formats a duration to a human readable value.
func FormatTime(d time.Duration) string {
	if d.Seconds() < 60.0 {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d.Minutes() < 60.0 {
		remainingSeconds := math.Mod(d.Seconds(), 60)
		return fmt.Sprintf("%dm %.2fs", int64(d.Minutes()), remainingSeconds)
	}
	remainingMinutes := math.Mod(d.Minutes(), 60)
	remainingSeconds := math.Mod(d.Seconds(), 60)
	return fmt.Sprintf("%dh %dm %.2fs", int64(d.Hours()), int64(remainingMinutes), remainingSeconds)
}
