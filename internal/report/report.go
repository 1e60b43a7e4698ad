// Package report renders a week timeline as an Excel workbook for the front desk.
package report

import (
	"fmt"
	"io"
	"strings"

	"lanebook/internal/availability"
	"lanebook/internal/model"
	"lanebook/internal/timeline"
)

const (
	SheetSummary      = "Summary"
	SheetBookings     = "Bookings"
	SheetAvailability = "Availability"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Filename returns e.g. "lanebook_week_2024-01-15.xlsx".
func Filename(view *timeline.WeekView) string {
	return fmt.Sprintf("lanebook_week_%s.xlsx", view.Start)
}

// WriteWeek writes the workbook for view to out.
func WriteWeek(out io.Writer, view *timeline.WeekView) error {
	w := newSheetWriter()
	defer w.close()

	if err := writeSummary(w, view); err != nil {
		return err
	}
	if err := writeBookings(w, view); err != nil {
		return err
	}
	if err := writeAvailability(w, view); err != nil {
		return err
	}
	if err := w.save(out); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummary(w *sheetWriter, view *timeline.WeekView) error {
	if err := w.addSheet(SheetSummary); err != nil {
		return err
	}
	rows := [][]any{
		{"Venue", view.Venue},
		{"Week", view.Start + " to " + view.End},
		{"Bookings", view.Stats.Bookings},
		{"Guests", view.Stats.TotalGuests},
		{"Lane hours", view.Stats.TotalHours},
		{"Package revenue", view.Stats.TotalRevenue.Float()},
		{"Slots available", view.Summary.Available},
		{"Slots booked", view.Summary.Booked},
		{"Generated", view.GeneratedAt.Format("2006-01-02 15:04")},
	}
	for _, r := range rows {
		if err := w.writeRow(r...); err != nil {
			return err
		}
	}

	w.blank()
	if err := w.writeHeader("Date", "Day", "Hours", "Bookings", "Available", "Booked", "Past"); err != nil {
		return err
	}
	for _, d := range view.Days {
		if err := w.writeRow(d.Date, d.Weekday, hoursLabel(d.Hours, d.Open), d.Bookings,
			d.Summary.Available, d.Summary.Booked, d.Summary.Past); err != nil {
			return err
		}
	}
	return nil
}

func writeBookings(w *sheetWriter, view *timeline.WeekView) error {
	if err := w.addSheet(SheetBookings); err != nil {
		return err
	}
	if err := w.writeHeader("Date", "Start", "End", "Length", "Lane", "Guests", "Status",
		"Customer", "Phone", "Package", "Package cost"); err != nil {
		return err
	}
	for i := range view.Bookings {
		b := &view.Bookings[i]
		date := ""
		if !b.Date.IsZero() {
			date = b.Date.Format("2006-01-02")
		}
		length := ""
		if m, ok := availability.BookingMinutes(b); ok {
			length = availability.FormatDuration(m)
		}
		var cost any = ""
		if b.PackageCost != nil {
			cost = b.PackageCost.Float()
		}
		if err := w.writeRow(date, b.StartTime, b.EndTime, length, b.Lane, b.GuestCount,
			string(b.Status), b.CustomerName, b.Phone, packageLabel(b), cost); err != nil {
			return err
		}
	}
	return nil
}

func writeAvailability(w *sheetWriter, view *timeline.WeekView) error {
	if err := w.addSheet(SheetAvailability); err != nil {
		return err
	}
	if err := w.writeHeader("Date", "Lane", "Free", "Booked", "Past", "Free slots"); err != nil {
		return err
	}
	for _, d := range view.Days {
		if !d.Open {
			continue
		}
		for _, lane := range d.Lanes {
			var free []string
			for _, c := range lane.Slots {
				if c.State == availability.StateAvailable {
					free = append(free, c.Slot.String())
				}
			}
			if err := w.writeRow(d.Date, lane.Lane, lane.Summary.Available, lane.Summary.Booked,
				lane.Summary.Past, strings.Join(free, " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func hoursLabel(h model.BusinessHourWindow, open bool) string {
	if !open {
		return "Closed"
	}
	return h.Opens + "-" + h.Closes
}

func packageLabel(b *model.Booking) string {
	if b.PackageName != "" {
		return b.PackageName
	}
	return b.PackageID
}
