package timeline

import (
	"fmt"
	"time"

	"lanebook/internal/availability"
	"lanebook/internal/model"
)

const dateLayout = "2006-01-02"

// WeekView is the dashboard grid: one column per day, one row of slots per lane.
type WeekView struct {
	Venue       string               `json:"venue,omitempty"`
	Start       string               `json:"start"`
	End         string               `json:"end"`
	WeekStart   string               `json:"week_start"`
	Previous    string               `json:"previous"`
	Next        string               `json:"next"`
	Lanes       []int                `json:"lanes"`
	Days        []DayColumn          `json:"days"`
	Summary     availability.Summary `json:"summary"`
	Stats       availability.Stats   `json:"stats"`
	Bookings    []model.Booking      `json:"-"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// DayColumn is one day of the week grid.
type DayColumn struct {
	Date     string                   `json:"date"`
	Weekday  string                   `json:"weekday"`
	Hours    model.BusinessHourWindow `json:"hours"`
	Open     bool                     `json:"open"`
	IsToday  bool                     `json:"is_today"`
	Slots    []string                 `json:"slots"`
	Lanes    []LaneDay                `json:"lanes"`
	Summary  availability.Summary     `json:"summary"`
	Bookings int                      `json:"bookings"`
}

// LaneDay holds the classified slots of one lane on one day.
type LaneDay struct {
	Lane    int                           `json:"lane"`
	Slots   []availability.Classification `json:"slots"`
	Summary availability.Summary          `json:"summary"`
}

// DayFilter narrows the booking list of a day view. Zero values match everything.
type DayFilter struct {
	Lane   int                 `json:"lane,omitempty"`
	Status model.BookingStatus `json:"status,omitempty"`
}

func (f DayFilter) validate(set Settings) error {
	if f.Lane != 0 && !containsLane(set.Lanes, f.Lane) {
		return fmt.Errorf("%w: unknown lane %d", ErrInvalidInput, f.Lane)
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	return nil
}

func (f DayFilter) matches(b *model.Booking) bool {
	if f.Lane != 0 && b.Lane != f.Lane {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}

// DayView is what the dashboard shows after a day is clicked.
type DayView struct {
	Date     string                   `json:"date"`
	Weekday  string                   `json:"weekday"`
	Filter   DayFilter                `json:"filter"`
	Hours    model.BusinessHourWindow `json:"hours"`
	Open     bool                     `json:"open"`
	IsToday  bool                     `json:"is_today"`
	Bookings []model.Booking          `json:"bookings"`
	Lanes    []LaneDay                `json:"lanes"`
	Summary  availability.Summary     `json:"summary"`
	Stats    availability.Stats       `json:"stats"`
}

// AvailabilityView is the public per-lane availability of one date.
type AvailabilityView struct {
	Date        string                   `json:"date"`
	Weekday     string                   `json:"weekday"`
	Open        bool                     `json:"open"`
	Hours       model.BusinessHourWindow `json:"hours"`
	SlotMinutes int                      `json:"slot_minutes"`
	Lanes       []LaneAvailability       `json:"lanes"`
}

// LaneAvailability lists free start times and free windows of one lane.
type LaneAvailability struct {
	Lane    int          `json:"lane"`
	Free    []FreeSlot   `json:"free"`
	Windows []FreeWindow `json:"windows"`
}

// FreeSlot is a start time with the lengths that can be booked from it.
type FreeSlot struct {
	Start     string     `json:"start"`
	Durations []Duration `json:"durations"`
}

type Duration struct {
	Minutes int    `json:"minutes"`
	Label   string `json:"label"`
}

// FreeWindow is a maximal run of free slots, end exclusive.
type FreeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
