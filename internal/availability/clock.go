// Package availability computes lane availability, week windows and booking
// statistics from business hours and bookings. Every function is pure: the
// current time is always passed in by the caller.
package availability

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock parses "15:04", "15:04:05" and "3:04 PM" style values.
// The boolean is false for anything it cannot read.
func ParseClock(s string) (Clock, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	meridiem := ""
	switch {
	case strings.HasSuffix(s, "AM"):
		meridiem, s = "AM", strings.TrimSpace(strings.TrimSuffix(s, "AM"))
	case strings.HasSuffix(s, "PM"):
		meridiem, s = "PM", strings.TrimSpace(strings.TrimSuffix(s, "PM"))
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, false
		}
	}

	switch meridiem {
	case "":
		if hour == 24 && minute == 0 {
			return minutesPerDay, true
		}
		if hour < 0 || hour > 23 {
			return 0, false
		}
	default:
		if hour < 1 || hour > 12 {
			return 0, false
		}
		hour %= 12
		if meridiem == "PM" {
			hour += 12
		}
	}

	return Clock(hour*60 + minute), true
}

// ClockOf returns the wall-clock time of day of t.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// Add shifts the clock by the given number of minutes.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// On returns the wall-clock instant of c on the calendar date of day, in day's location.
func (c Clock) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, int(c), 0, 0, day.Location())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := ParseClock(s)
	if !ok {
		return fmt.Errorf("invalid time of day %q", s)
	}
	*c = v
	return nil
}

// parseSpan reads a [start, end) pair. An end of "00:00" after a later start
// means midnight closing.
func parseSpan(start, end string) (Clock, Clock, bool) {
	s, ok := ParseClock(start)
	if !ok {
		return 0, 0, false
	}
	e, ok := ParseClock(end)
	if !ok {
		return 0, 0, false
	}
	if e == 0 && s > 0 {
		e = minutesPerDay
	}
	if s >= e {
		return 0, 0, false
	}
	return s, e, true
}

// IsSlotInPast reports whether hhmm on date is strictly before now.
// Both sides are compared as local wall-clock values, so a date in one zone and
// now in another are not converted. Unreadable times are never past.
func IsSlotInPast(date time.Time, hhmm string, now time.Time) bool {
	c, ok := ParseClock(hhmm)
	if !ok {
		return false
	}
	return clockInPast(date, c, now)
}

func clockInPast(date time.Time, c Clock, now time.Time) bool {
	slot := dayIndex(date)*86400 + int64(c)*60
	current := dayIndex(now)*86400 + int64(now.Hour()*3600+now.Minute()*60+now.Second())
	if slot != current {
		return slot < current
	}
	return now.Nanosecond() > 0
}

func dayIndex(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400
}
