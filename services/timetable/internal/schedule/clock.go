package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidClock = errors.New("invalid time of day")

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock accepts HH:MM and HH:MM:SS. Seconds are dropped.
func ParseClock(value string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, ErrInvalidClock
	}
	if !digits(parts[0], 1, 2) || !digits(parts[1], 2, 2) {
		return 0, ErrInvalidClock
	}
	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])
	if hours > 23 || minutes > 59 {
		return 0, ErrInvalidClock
	}
	if len(parts) == 3 {
		if !digits(parts[2], 2, 2) {
			return 0, ErrInvalidClock
		}
		if seconds, _ := strconv.Atoi(parts[2]); seconds > 59 {
			return 0, ErrInvalidClock
		}
	}
	return Clock(hours*60 + minutes), nil
}

// digits reports whether value is between minLen and maxLen ASCII digits long.
func digits(value string, minLen, maxLen int) bool {
	if len(value) < minLen || len(value) > maxLen {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func MustClock(value string) Clock {
	c, err := ParseClock(value)
	if err != nil {
		panic(fmt.Sprintf("schedule: bad clock %q", value))
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}
