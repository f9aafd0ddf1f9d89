package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var relativeAgePattern = regexp.MustCompile(`^(\d+)([smhdw])$`)

// ParseAge parses how long ago something happened.
//
// Accepts:
//   - a single unit: "45s", "30m", "1h", "2d", "1w"
//   - any Go duration: "1h30m", "90s"
//
// Negative ages are rejected.
func ParseAge(s string) (time.Duration, error) {
	if match := relativeAgePattern.FindStringSubmatch(s); match != nil {
		amount, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, fmt.Errorf("invalid number in age %q: %w", s, err)
		}

		unit := time.Second
		switch match[2] {
		case "m":
			unit = time.Minute
		case "h":
			unit = time.Hour
		case "d":
			unit = 24 * time.Hour
		case "w":
			unit = 7 * 24 * time.Hour
		}
		return time.Duration(amount) * unit, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid age %q. Use a relative time ('w|d|h|m|s') or a duration such as 1h30m", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid age %q: must not be negative", s)
	}
	return d, nil
}
