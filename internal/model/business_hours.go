package model

import (
	"strconv"
	"strings"
	"time"
)

// BusinessHourWindow is the opening window configured for one weekday.
type BusinessHourWindow struct {
	DayOfWeek time.Weekday `json:"day_of_week"` // 0-6 (Sunday-Saturday)
	Opens     string       `json:"opens"`       // "12:00"
	Closes    string       `json:"closes"`      // "23:00"
	IsClosed  bool         `json:"is_closed"`   // opens/closes ignored when set
}

// ClosedWindow returns a closed window for day.
func ClosedWindow(day time.Weekday) BusinessHourWindow {
	return BusinessHourWindow{DayOfWeek: day, IsClosed: true}
}

// WeekHours holds at most one window per weekday.
type WeekHours map[time.Weekday]BusinessHourWindow

// NewWeekHours indexes windows by weekday. When a weekday appears more than once
// the first open window wins; a later closed entry never hides an open one.
func NewWeekHours(windows []BusinessHourWindow) WeekHours {
	wh := make(WeekHours, len(windows))
	for _, w := range windows {
		existing, ok := wh[w.DayOfWeek]
		if ok && !existing.IsClosed {
			continue
		}
		wh[w.DayOfWeek] = w
	}
	return wh
}

// For returns the window for day, or a closed window when none is configured.
func (wh WeekHours) For(day time.Weekday) BusinessHourWindow {
	if w, ok := wh[day]; ok {
		return w
	}
	return ClosedWindow(day)
}

// OnDate returns the window that applies to the weekday of date.
func (wh WeekHours) OnDate(date time.Time) BusinessHourWindow {
	return wh.For(date.Weekday())
}

// Slice returns the windows ordered Sunday through Saturday, filling gaps with closed days.
func (wh WeekHours) Slice() []BusinessHourWindow {
	out := make([]BusinessHourWindow, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		out = append(out, wh.For(d))
	}
	return out
}

// ParseWeekday accepts 0-6 (Sunday first), 7 (Sunday, Monday-first ordinal)
// and English day names or their prefixes of three letters or more.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		switch {
		case n >= 0 && n <= 6:
			return time.Weekday(n), true
		case n == 7:
			return time.Sunday, true
		}
		return 0, false
	}

	s = strings.ToLower(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return d, true
		}
	}
	return 0, false
}
