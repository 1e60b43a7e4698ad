package model

import "time"

// Snapshot is one consistent read of the backend: bookings for [From, To]
// together with the business hours and packages they are evaluated against.
type Snapshot struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Bookings []Booking `json:"bookings"`
	Hours    WeekHours `json:"hours"`
	Packages []Package `json:"packages"`
}

// BookingsOn returns the bookings that fall on the calendar date of d.
func (s *Snapshot) BookingsOn(d time.Time) []Booking {
	var out []Booking
	for _, b := range s.Bookings {
		if b.OnDate(d) {
			out = append(out, b)
		}
	}
	return out
}
