package availability

import (
	"strings"
	"time"

	"lanebook/internal/model"
)

const DaysPerWeek = 7

// WeekDates returns the 7 consecutive calendar dates of the week containing
// anchor, starting at weekStart. Only the calendar date of anchor matters; the
// result is at midnight in anchor's location.
func WeekDates(anchor time.Time, weekStart time.Weekday) []time.Time {
	day := model.DateOnly(anchor)
	offset := (int(day.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek
	first := day.AddDate(0, 0, -offset)

	days := make([]time.Time, DaysPerWeek)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

// WeekWindow is a derived 7-day window.
type WeekWindow struct {
	Start     time.Time    `json:"start"`
	WeekStart time.Weekday `json:"week_start"`
	Days      []time.Time  `json:"days"`
}

// NewWeekWindow builds the window containing anchor.
func NewWeekWindow(anchor time.Time, weekStart time.Weekday) WeekWindow {
	days := WeekDates(anchor, weekStart)
	return WeekWindow{Start: days[0], WeekStart: weekStart, Days: days}
}

// End returns the last day of the window.
func (w WeekWindow) End() time.Time {
	return w.Days[len(w.Days)-1]
}

// Contains reports whether the calendar date of d lies within the window.
func (w WeekWindow) Contains(d time.Time) bool {
	for _, day := range w.Days {
		if model.SameDate(day, d) {
			return true
		}
	}
	return false
}

// Shift moves the window by n weeks (negative for earlier weeks).
func (w WeekWindow) Shift(n int) WeekWindow {
	return NewWeekWindow(w.Start.AddDate(0, 0, n*DaysPerWeek), w.WeekStart)
}

// ParseWeekStart accepts "monday" or "sunday" in any case.
func ParseWeekStart(s string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday", "mon":
		return time.Monday, true
	case "sunday", "sun":
		return time.Sunday, true
	}
	return time.Monday, false
}
