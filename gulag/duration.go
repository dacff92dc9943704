package gulag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var durationPattern = regexp.MustCompile(`^(\d+)([smhdw])$`)

// ParseDuration converts a duration string like "30m" or "1d" to seconds.
// Empty input, the "indefinite" sentinel and anything not matching the
// pattern exactly fall back to defaultSeconds.
func ParseDuration(text string, defaultSeconds int) int {
	if text == "" || strings.EqualFold(text, "indefinite") {
		return defaultSeconds
	}

	match := durationPattern.FindStringSubmatch(text)
	if match == nil {
		return defaultSeconds
	}

	value, err := strconv.Atoi(match[1])
	if err != nil {
		// can only happen on absurdly long digit runs
		return defaultSeconds
	}

	switch match[2] {
	case "s":
		return value
	case "m":
		return value * 60
	case "h":
		return value * 3600
	case "d":
		return value * 86400
	case "w":
		return value * 604800
	}

	return defaultSeconds
}

// ClampDuration bounds seconds to [min, max].
func ClampDuration(seconds, min, max int) int {
	if seconds < min {
		return min
	}
	if seconds > max {
		return max
	}
	return seconds
}

// FormatDuration renders seconds in the coarsest whole unit that fits.
// Lossy on purpose, display only.
func FormatDuration(seconds int) string {
	switch {
	case seconds < 60:
		return plural(seconds, "second")
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 604800:
		return plural(seconds/86400, "day")
	default:
		return plural(seconds/604800, "week")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
