package availability

import "lanebook/internal/model"

// Stats summarizes a set of bookings.
type Stats struct {
	TotalRevenue model.Money `json:"total_revenue"`
	TotalHours   float64     `json:"total_hours"`
	TotalGuests  int         `json:"total_guests"`
	Bookings     int         `json:"bookings"`
}

// StatsOptions tunes AggregateStats.
type StatsOptions struct {
	ExcludeCancelled bool
}

// AggregateWeeklyStats sums revenue, hours and guests over every booking,
// cancelled ones included.
func AggregateWeeklyStats(bookings []model.Booking) Stats {
	return AggregateStats(bookings, StatsOptions{})
}

// AggregateStats sums bookings. A booking with unreadable times adds no hours
// but still counts toward guests and revenue.
func AggregateStats(bookings []model.Booking, opts StatsOptions) Stats {
	var (
		s       Stats
		minutes int
	)
	for i := range bookings {
		b := &bookings[i]
		if opts.ExcludeCancelled && b.IsCancelled() {
			continue
		}
		s.Bookings++
		if b.GuestCount > 0 {
			s.TotalGuests += b.GuestCount
		}
		if m, ok := BookingMinutes(b); ok {
			minutes += m
		}
		if b.PackageCost != nil {
			s.TotalRevenue += *b.PackageCost
		}
	}
	s.TotalHours = float64(minutes) / 60
	return s
}

// BookingMinutes returns the wall-clock length of b.
func BookingMinutes(b *model.Booking) (int, bool) {
	start, end, ok := parseSpan(b.StartTime, b.EndTime)
	if !ok {
		return 0, false
	}
	return int(end - start), true
}
