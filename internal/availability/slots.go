package availability

import (
	"time"

	"lanebook/internal/model"
)

// DefaultGranularity is used whenever a caller passes a non-positive slot width.
const DefaultGranularity = 60

// SlotState classifies a slot for one lane on one date.
type SlotState string

const (
	StateAvailable SlotState = "available"
	StateBooked    SlotState = "booked"
	StatePast      SlotState = "past"
)

// TimeSlot is a fixed-width interval [Label, Label+Minutes).
type TimeSlot struct {
	Label   Clock `json:"label"`
	Minutes int   `json:"minutes"`
}

// End returns the exclusive end of the slot.
func (s TimeSlot) End() Clock {
	return s.Label.Add(s.Minutes)
}

func (s TimeSlot) String() string {
	return s.Label.String()
}

// Classification is the state of a slot for a lane and date.
type Classification struct {
	Slot      TimeSlot  `json:"slot"`
	State     SlotState `json:"state"`
	IsPast    bool      `json:"is_past"`
	Occupancy int       `json:"occupancy"`
}

// NormalizeGranularity maps non-positive widths to DefaultGranularity.
func NormalizeGranularity(minutes int) int {
	if minutes <= 0 {
		return DefaultGranularity
	}
	return minutes
}

// GenerateTimeSlots partitions an opening window into fixed-width slots.
// A slot that would run past closing is dropped, not truncated. Closed days and
// windows with unreadable or inverted times yield no slots.
func GenerateTimeSlots(window model.BusinessHourWindow, granularityMinutes int) []TimeSlot {
	if window.IsClosed {
		return nil
	}
	opens, closes, ok := parseSpan(window.Opens, window.Closes)
	if !ok {
		return nil
	}

	g := NormalizeGranularity(granularityMinutes)
	var slots []TimeSlot
	for cursor := opens; cursor.Add(g) <= closes; cursor = cursor.Add(g) {
		slots = append(slots, TimeSlot{Label: cursor, Minutes: g})
	}
	return slots
}

// OpeningSpan returns the opening and closing clocks of an open window.
// The boolean is false for closed days and unreadable or inverted times.
func OpeningSpan(window model.BusinessHourWindow) (opens, closes Clock, ok bool) {
	if window.IsClosed {
		return 0, 0, false
	}
	return parseSpan(window.Opens, window.Closes)
}

// ClassifySlot decides whether slot is past, booked or available for lane on date.
// Cancelled bookings and bookings with unreadable times never occupy a slot.
// Occupancy is reported even for past slots.
func ClassifySlot(slot TimeSlot, bookings []model.Booking, date time.Time, lane int, now time.Time) Classification {
	slot.Minutes = NormalizeGranularity(slot.Minutes)
	c := Classification{
		Slot:      slot,
		Occupancy: occupancy(slot, bookings, date, lane),
		IsPast:    clockInPast(date, slot.Label, now),
	}

	switch {
	case c.IsPast:
		c.State = StatePast
	case c.Occupancy > 0:
		c.State = StateBooked
	default:
		c.State = StateAvailable
	}
	return c
}

func occupancy(slot TimeSlot, bookings []model.Booking, date time.Time, lane int) int {
	slotStart, slotEnd := slot.Label, slot.End()
	count := 0
	for i := range bookings {
		b := &bookings[i]
		if b.Lane != lane || b.IsCancelled() || !b.OnDate(date) {
			continue
		}
		start, end, ok := parseSpan(b.StartTime, b.EndTime)
		if !ok {
			continue
		}
		if start < slotEnd && end > slotStart {
			count++
		}
	}
	return count
}

// ClassifyDay generates and classifies every slot of window for one lane.
func ClassifyDay(window model.BusinessHourWindow, bookings []model.Booking, date time.Time, lane, granularityMinutes int, now time.Time) []Classification {
	slots := GenerateTimeSlots(window, granularityMinutes)
	if len(slots) == 0 {
		return nil
	}
	out := make([]Classification, len(slots))
	for i, s := range slots {
		out[i] = ClassifySlot(s, bookings, date, lane, now)
	}
	return out
}

// Summary counts classified slots by state.
type Summary struct {
	Available int `json:"available"`
	Booked    int `json:"booked"`
	Past      int `json:"past"`
}

// Total returns the number of slots counted.
func (s Summary) Total() int {
	return s.Available + s.Booked + s.Past
}

// Add merges another summary into s.
func (s *Summary) Add(other Summary) {
	s.Available += other.Available
	s.Booked += other.Booked
	s.Past += other.Past
}

// Summarize counts slots per state.
func Summarize(cls []Classification) Summary {
	var s Summary
	for _, c := range cls {
		switch c.State {
		case StateAvailable:
			s.Available++
		case StateBooked:
			s.Booked++
		case StatePast:
			s.Past++
		}
	}
	return s
}
