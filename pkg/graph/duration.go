package graph

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	msPerSecond int64 = 1000
	msPerMinute int64 = 60 * msPerSecond
	msPerHour   int64 = 60 * msPerMinute
	msPerDay    int64 = 24 * msPerHour
)

// FormatDuration renders a millisecond duration as the label the editor
// shows on delay nodes ("1 days", "6 hours", "90 ms"). Only durations that
// are a clean multiple of a unit use that unit, so the label parses back to
// the exact same millisecond value.
func FormatDuration(ms int64) string {
	switch {
	case ms >= msPerDay && ms%msPerDay == 0:
		return fmt.Sprintf("%d days", ms/msPerDay)
	case ms >= msPerHour && ms%msPerHour == 0:
		return fmt.Sprintf("%d hours", ms/msPerHour)
	case ms >= msPerMinute && ms%msPerMinute == 0:
		return fmt.Sprintf("%d minutes", ms/msPerMinute)
	case ms >= msPerSecond && ms%msPerSecond == 0:
		return fmt.Sprintf("%d seconds", ms/msPerSecond)
	default:
		return fmt.Sprintf("%d ms", ms)
	}
}

// ParseDuration is the inverse of FormatDuration.
func ParseDuration(label string) (int64, error) {
	fields := strings.Fields(label)
	if len(fields) != 2 {
		return 0, fmt.Errorf("duration %q must look like \"<count> <unit>\"", label)
	}

	count, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("duration %q has a non-integer count", label)
	}

	if count < 0 {
		return 0, fmt.Errorf("duration %q must be non-negative", label)
	}

	switch fields[1] {
	case "days", "day":
		return count * msPerDay, nil
	case "hours", "hour":
		return count * msPerHour, nil
	case "minutes", "minute":
		return count * msPerMinute, nil
	case "seconds", "second":
		return count * msPerSecond, nil
	case "ms":
		return count, nil
	default:
		return 0, fmt.Errorf("duration %q has unknown unit %q", label, fields[1])
	}
}
