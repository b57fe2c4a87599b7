package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse marks a clock string that is not a valid 24-hour "HH:MM" value.
var ErrParse = errors.New("invalid clock time")

// ParseClock converts a 24-hour "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrParse, s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, s)
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, s)
	}
	if hours < 0 || hours > 23 || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("%w: %q", ErrParse, s)
	}
	return hours*60 + mins, nil
}

// FormatClock renders minutes since midnight as a zero-padded "HH:MM" string.
// Valid for 0 <= m < 1440; callers keep results within a single day.
func FormatClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// IsParse reports whether err originated from clock parsing.
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}
