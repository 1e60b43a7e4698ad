package model

import "time"

// BookingStatus is the lifecycle state reported by the backend.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus maps backend spellings onto the canonical statuses.
// Unknown values are reported as pending.
func ParseBookingStatus(s string) BookingStatus {
	switch s {
	case "confirmed", "Confirmed", "CONFIRMED", "approved":
		return StatusConfirmed
	case "cancelled", "canceled", "Cancelled", "Canceled", "CANCELLED", "CANCELED", "rejected":
		return StatusCancelled
	default:
		return StatusPending
	}
}

// Valid reports whether s is one of the canonical statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Booking is a lane reservation as normalized from the backend.
type Booking struct {
	ID           string        `json:"id"`
	Date         time.Time     `json:"date"`       // midnight, venue location
	StartTime    string        `json:"start_time"` // "15:00"
	EndTime      string        `json:"end_time"`   // "16:30", exclusive
	Lane         int           `json:"lane"`
	GuestCount   int           `json:"guest_count"`
	Status       BookingStatus `json:"status"`
	PackageID    string        `json:"package_id,omitempty"`
	PackageName  string        `json:"package_name,omitempty"`
	PackageCost  *Money        `json:"package_cost,omitempty"`
	CustomerName string        `json:"customer_name,omitempty"`
	Email        string        `json:"email,omitempty"`
	Phone        string        `json:"phone,omitempty"`
}

// IsCancelled reports whether the booking no longer holds its lane.
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// HasPackage reports whether the booking references a package.
func (b *Booking) HasPackage() bool {
	return b.PackageID != "" || b.PackageCost != nil
}

// OnDate checks whether the booking falls on the calendar date of d.
func (b *Booking) OnDate(d time.Time) bool {
	return SameDate(b.Date, d)
}

// SameDate compares calendar dates only, ignoring time of day and location.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateBetween reports whether the calendar date of d lies in [from, to]. Each
// value is read in its own location.
func DateBetween(d, from, to time.Time) bool {
	k := dateKey(d)
	return k >= dateKey(from) && k <= dateKey(to)
}

func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
