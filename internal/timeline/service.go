// Package timeline turns backend snapshots into the week grid, day view and
// lane availability shown by the dashboard and the public booking page.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"lanebook/internal/availability"
	"lanebook/internal/config"
	"lanebook/internal/metrics"
	"lanebook/internal/model"
)

// ErrInvalidInput marks requests that fail validation before reaching the backend.
var ErrInvalidInput = errors.New("invalid input")

// Source is the backend the presenter reads from and forwards admin edits to.
type Source interface {
	Snapshot(ctx context.Context, from, to time.Time) (*model.Snapshot, error)
	UpdateBusinessHours(ctx context.Context, w model.BusinessHourWindow) error
	UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error
}

// Settings are the venue parameters the views are computed with.
type Settings struct {
	Name             string
	Location         *time.Location
	Lanes            []int
	SlotMinutes      int
	WeekStart        time.Weekday
	ExcludeCancelled bool
}

// SettingsFromVenue converts validated venue config.
func SettingsFromVenue(v *config.Venue) Settings {
	return Settings{
		Name:             v.Name,
		Location:         v.Location(),
		Lanes:            v.LaneNumbers(),
		SlotMinutes:      v.SlotMinutes,
		WeekStart:        v.FirstWeekday(),
		ExcludeCancelled: v.StatsExcludeCancelled,
	}
}

// Service builds views. It is safe for concurrent use; settings may be swapped
// at any time and each request works on the settings it started with.
type Service struct {
	source   Source
	settings atomic.Pointer[Settings]
	now      func() time.Time
	logger   zerolog.Logger
}

// NewService creates a presenter reading from source.
func NewService(source Source, settings Settings, logger *zerolog.Logger) *Service {
	s := &Service{
		source: source,
		now:    time.Now,
		logger: logger.With().Str("component", "timeline").Logger(),
	}
	s.UpdateSettings(settings)
	return s
}

// SetClock replaces the time source. Tests use it to pin "now".
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// UpdateSettings swaps the venue settings used by subsequent requests.
func (s *Service) UpdateSettings(settings Settings) {
	if settings.Location == nil {
		settings.Location = time.Local
	}
	settings.SlotMinutes = availability.NormalizeGranularity(settings.SlotMinutes)
	s.settings.Store(&settings)
	s.logger.Info().
		Str("venue", settings.Name).
		Int("lanes", len(settings.Lanes)).
		Int("slot_minutes", settings.SlotMinutes).
		Str("week_start", settings.WeekStart.String()).
		Msg("venue settings applied")
}

// Settings returns the settings currently in effect.
func (s *Service) Settings() Settings {
	return *s.settings.Load()
}

// Now returns the current time in the venue zone.
func (s *Service) Now() time.Time {
	return s.now().In(s.settings.Load().Location)
}

// Today returns midnight of the current venue date.
func (s *Service) Today() time.Time {
	return model.DateOnly(s.Now())
}

// ParseDate reads "2006-01-02" in the venue zone. An empty string means today.
func (s *Service) ParseDate(v string) (time.Time, error) {
	if v == "" {
		return s.Today(), nil
	}
	d, err := time.ParseInLocation(dateLayout, v, s.settings.Load().Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, v)
	}
	return d, nil
}

// Week builds the grid for the week containing anchor.
func (s *Service) Week(ctx context.Context, anchor time.Time) (*WeekView, error) {
	set := s.Settings()
	now := s.now().In(set.Location)
	window := availability.NewWeekWindow(anchor, set.WeekStart)

	snap, err := s.source.Snapshot(ctx, window.Start, window.End())
	if err != nil {
		return nil, fmt.Errorf("week of %s: %w", window.Start.Format(dateLayout), err)
	}

	view := &WeekView{
		Venue:       set.Name,
		Start:       window.Start.Format(dateLayout),
		End:         window.End().Format(dateLayout),
		WeekStart:   set.WeekStart.String(),
		Previous:    window.Shift(-1).Start.Format(dateLayout),
		Next:        window.Shift(1).Start.Format(dateLayout),
		Lanes:       set.Lanes,
		GeneratedAt: now,
		Bookings:    snap.Bookings,
		Stats: availability.AggregateStats(snap.Bookings, availability.StatsOptions{
			ExcludeCancelled: set.ExcludeCancelled,
		}),
	}

	evaluated := 0
	for _, d := range window.Days {
		col := s.column(set, snap.Hours.OnDate(d), snap.BookingsOn(d), d, set.Lanes, now)
		evaluated += col.Summary.Total()
		view.Summary.Add(col.Summary)
		view.Days = append(view.Days, col)
	}
	metrics.AddSlotsEvaluated(evaluated)

	s.logger.Debug().
		Str("week", view.Start).
		Int("bookings", len(snap.Bookings)).
		Int("slots", evaluated).
		Msg("week timeline built")
	return view, nil
}

// Day builds the booking list and lane slots for one date.
func (s *Service) Day(ctx context.Context, date time.Time, filter DayFilter) (*DayView, error) {
	set := s.Settings()
	if err := filter.validate(set); err != nil {
		return nil, err
	}
	now := s.now().In(set.Location)
	date = model.DateOnly(date)

	snap, err := s.source.Snapshot(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("day %s: %w", date.Format(dateLayout), err)
	}

	all := snap.BookingsOn(date)
	lanes := set.Lanes
	if filter.Lane > 0 {
		lanes = []int{filter.Lane}
	}

	listed := make([]model.Booking, 0, len(all))
	for _, b := range all {
		if filter.matches(&b) {
			listed = append(listed, b)
		}
	}
	sortBookings(listed)

	// Slot occupancy always reflects every booking on the lane, regardless of
	// the status filter on the list.
	col := s.column(set, snap.Hours.OnDate(date), all, date, lanes, now)
	metrics.AddSlotsEvaluated(col.Summary.Total())

	return &DayView{
		Date:     date.Format(dateLayout),
		Weekday:  date.Weekday().String(),
		Filter:   filter,
		Hours:    col.Hours,
		Open:     col.Open,
		IsToday:  col.IsToday,
		Bookings: listed,
		Lanes:    col.Lanes,
		Summary:  col.Summary,
		Stats: availability.AggregateStats(listed, availability.StatsOptions{
			ExcludeCancelled: set.ExcludeCancelled,
		}),
	}, nil
}

// Availability lists the free start times per lane on date for the public page.
func (s *Service) Availability(ctx context.Context, date time.Time) (*AvailabilityView, error) {
	set := s.Settings()
	now := s.now().In(set.Location)
	date = model.DateOnly(date)

	snap, err := s.source.Snapshot(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("availability %s: %w", date.Format(dateLayout), err)
	}

	hours := snap.Hours.OnDate(date)
	bookings := snap.BookingsOn(date)
	view := &AvailabilityView{
		Date:        date.Format(dateLayout),
		Weekday:     date.Weekday().String(),
		Hours:       hours,
		SlotMinutes: set.SlotMinutes,
	}
	_, _, view.Open = availability.OpeningSpan(hours)

	evaluated := 0
	for _, lane := range set.Lanes {
		cls := availability.ClassifyDay(hours, bookings, date, lane, set.SlotMinutes, now)
		evaluated += len(cls)
		view.Lanes = append(view.Lanes, laneAvailability(lane, cls))
	}
	metrics.AddSlotsEvaluated(evaluated)
	return view, nil
}

// CanBook reports whether lane is free for minutes starting at start on date.
func (s *Service) CanBook(ctx context.Context, date time.Time, lane int, start string, minutes int) (bool, error) {
	set := s.Settings()
	if !containsLane(set.Lanes, lane) {
		return false, fmt.Errorf("%w: unknown lane %d", ErrInvalidInput, lane)
	}
	startClock, ok := availability.ParseClock(start)
	if !ok {
		return false, fmt.Errorf("%w: start %q must be HH:MM", ErrInvalidInput, start)
	}
	if minutes <= 0 || minutes%set.SlotMinutes != 0 {
		return false, fmt.Errorf("%w: duration must be a positive multiple of %d minutes", ErrInvalidInput, set.SlotMinutes)
	}

	now := s.now().In(set.Location)
	date = model.DateOnly(date)
	snap, err := s.source.Snapshot(ctx, date, date)
	if err != nil {
		return false, fmt.Errorf("check lane %d on %s: %w", lane, date.Format(dateLayout), err)
	}

	cls := availability.ClassifyDay(snap.Hours.OnDate(date), snap.BookingsOn(date), date, lane, set.SlotMinutes, now)
	return availability.CanBook(cls, startClock, minutes/set.SlotMinutes), nil
}

// SetBusinessHours validates and forwards one weekday window.
func (s *Service) SetBusinessHours(ctx context.Context, w model.BusinessHourWindow) error {
	if !w.IsClosed {
		opens, okOpen := availability.ParseClock(w.Opens)
		closes, okClose := availability.ParseClock(w.Closes)
		if !okOpen || !okClose {
			return fmt.Errorf("%w: opens and closes must be HH:MM", ErrInvalidInput)
		}
		w.Opens, w.Closes = opens.String(), closes.String()
		if _, _, ok := availability.OpeningSpan(w); !ok {
			return fmt.Errorf("%w: %s must open before it closes", ErrInvalidInput, w.DayOfWeek)
		}
	}
	if err := s.source.UpdateBusinessHours(ctx, w); err != nil {
		return err
	}
	s.logger.Info().
		Str("day", w.DayOfWeek.String()).
		Str("opens", w.Opens).
		Str("closes", w.Closes).
		Bool("closed", w.IsClosed).
		Msg("business hours updated")
	return nil
}

// SetBookingStatus forwards a status change for one booking.
func (s *Service) SetBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	if id == "" {
		return fmt.Errorf("%w: booking id is required", ErrInvalidInput)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if err := s.source.UpdateBookingStatus(ctx, id, status); err != nil {
		return err
	}
	s.logger.Info().Str("booking_id", id).Str("status", string(status)).Msg("booking status updated")
	return nil
}

func (s *Service) column(set Settings, hours model.BusinessHourWindow, bookings []model.Booking, date time.Time, lanes []int, now time.Time) DayColumn {
	col := DayColumn{
		Date:     date.Format(dateLayout),
		Weekday:  date.Weekday().String(),
		Hours:    hours,
		IsToday:  model.SameDate(date, now),
		Bookings: len(bookings),
	}
	_, _, col.Open = availability.OpeningSpan(hours)
	for _, slot := range availability.GenerateTimeSlots(hours, set.SlotMinutes) {
		col.Slots = append(col.Slots, slot.String())
	}

	for _, lane := range lanes {
		cls := availability.ClassifyDay(hours, bookings, date, lane, set.SlotMinutes, now)
		sum := availability.Summarize(cls)
		col.Summary.Add(sum)
		col.Lanes = append(col.Lanes, LaneDay{Lane: lane, Slots: cls, Summary: sum})
	}
	return col
}

func laneAvailability(lane int, cls []availability.Classification) LaneAvailability {
	la := LaneAvailability{Lane: lane}
	for _, c := range cls {
		if c.State != availability.StateAvailable {
			continue
		}
		opt := FreeSlot{Start: c.Slot.String()}
		for _, m := range availability.DurationOptions(cls, c.Slot.Label) {
			opt.Durations = append(opt.Durations, Duration{Minutes: m, Label: availability.FormatDuration(m)})
		}
		la.Free = append(la.Free, opt)
	}
	for _, run := range availability.FreeRuns(cls) {
		la.Windows = append(la.Windows, FreeWindow{
			Start: run[0].Slot.String(),
			End:   run[len(run)-1].Slot.End().String(),
		})
	}
	return la
}

// sortBookings orders by start time then lane; unreadable times sort last.
func sortBookings(bookings []model.Booking) {
	key := func(b *model.Booking) int {
		c, ok := availability.ParseClock(b.StartTime)
		if !ok {
			return 1 << 30
		}
		return int(c)
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		ki, kj := key(&bookings[i]), key(&bookings[j])
		if ki != kj {
			return ki < kj
		}
		return bookings[i].Lane < bookings[j].Lane
	})
}

func containsLane(lanes []int, lane int) bool {
	for _, l := range lanes {
		if l == lane {
			return true
		}
	}
	return false
}
