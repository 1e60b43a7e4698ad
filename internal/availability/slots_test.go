package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanebook/internal/model"
)

func labels(slots []TimeSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Label.String())
	}
	return out
}

func TestGenerateTimeSlots(t *testing.T) {
	tests := []struct {
		name        string
		window      model.BusinessHourWindow
		granularity int
		expected    []string
	}{
		{
			name:        "spill-over slot excluded",
			window:      model.BusinessHourWindow{Opens: "12:00", Closes: "14:00"},
			granularity: 60,
			expected:    []string{"12:00", "13:00"},
		},
		{
			name:        "closed day",
			window:      model.BusinessHourWindow{IsClosed: true, Opens: "09:00", Closes: "17:00"},
			granularity: 30,
			expected:    []string{},
		},
		{
			name:        "partial last slot dropped",
			window:      model.BusinessHourWindow{Opens: "12:00", Closes: "13:45"},
			granularity: 30,
			expected:    []string{"12:00", "12:30", "13:00"},
		},
		{
			name:        "zero granularity falls back to 60",
			window:      model.BusinessHourWindow{Opens: "10:00", Closes: "12:00"},
			granularity: 0,
			expected:    []string{"10:00", "11:00"},
		},
		{
			name:        "negative granularity falls back to 60",
			window:      model.BusinessHourWindow{Opens: "10:00", Closes: "11:00"},
			granularity: -15,
			expected:    []string{"10:00"},
		},
		{
			name:        "opens equals closes",
			window:      model.BusinessHourWindow{Opens: "10:00", Closes: "10:00"},
			granularity: 60,
			expected:    []string{},
		},
		{
			name:        "inverted window",
			window:      model.BusinessHourWindow{Opens: "18:00", Closes: "10:00"},
			granularity: 60,
			expected:    []string{},
		},
		{
			name:        "malformed time",
			window:      model.BusinessHourWindow{Opens: "noon", Closes: "22:00"},
			granularity: 60,
			expected:    []string{},
		},
		{
			name:        "midnight closing",
			window:      model.BusinessHourWindow{Opens: "22:00", Closes: "00:00"},
			granularity: 60,
			expected:    []string{"22:00", "23:00"},
		},
		{
			name:        "window shorter than a slot",
			window:      model.BusinessHourWindow{Opens: "10:00", Closes: "10:30"},
			granularity: 60,
			expected:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateTimeSlots(tt.window, tt.granularity)
			assert.Equal(t, tt.expected, labels(got))
			for _, s := range got {
				assert.Equal(t, NormalizeGranularity(tt.granularity), s.Minutes)
			}
		})
	}
}

func booking(lane int, start, end string) model.Booking {
	return model.Booking{
		ID:        start + "-" + end,
		Date:      time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
		StartTime: start,
		EndTime:   end,
		Lane:      lane,
		Status:    model.StatusConfirmed,
	}
}

func TestClassifySlot_HalfOpen(t *testing.T) {
	day := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	bookings := []model.Booking{booking(1, "13:00", "14:00")}

	at13 := ClassifySlot(TimeSlot{Label: 13 * 60, Minutes: 60}, bookings, day, 1, now)
	assert.Equal(t, StateBooked, at13.State)
	assert.Equal(t, 1, at13.Occupancy)

	at14 := ClassifySlot(TimeSlot{Label: 14 * 60, Minutes: 60}, bookings, day, 1, now)
	assert.Equal(t, StateAvailable, at14.State, "adjacent booking must not mark the slot")
	assert.Equal(t, 0, at14.Occupancy)

	at12 := ClassifySlot(TimeSlot{Label: 12 * 60, Minutes: 60}, bookings, day, 1, now)
	assert.Equal(t, StateAvailable, at12.State)
}

func TestClassifySlot_Filters(t *testing.T) {
	day := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	slot := TimeSlot{Label: 15 * 60, Minutes: 30}

	otherLane := booking(2, "15:00", "16:00")
	otherDay := booking(1, "15:00", "16:00")
	otherDay.Date = day.AddDate(0, 0, 1)
	cancelled := booking(1, "15:00", "16:00")
	cancelled.Status = model.StatusCancelled
	broken := booking(1, "bad", "16:00")
	pending := booking(1, "15:15", "15:45")
	pending.Status = model.StatusPending
	partial := booking(1, "14:00", "15:10")

	got := ClassifySlot(slot, []model.Booking{otherLane, otherDay, cancelled, broken}, day, 1, now)
	assert.Equal(t, StateAvailable, got.State)

	got = ClassifySlot(slot, []model.Booking{pending, partial, otherLane}, day, 1, now)
	assert.Equal(t, StateBooked, got.State)
	assert.Equal(t, 2, got.Occupancy)
}

func TestClassifySlot_Past(t *testing.T) {
	day := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 17, 15, 30, 0, 0, time.UTC)
	bookings := []model.Booking{booking(1, "15:00", "16:00")}

	past := ClassifySlot(TimeSlot{Label: 15 * 60, Minutes: 60}, bookings, day, 1, now)
	assert.Equal(t, StatePast, past.State)
	assert.True(t, past.IsPast)
	assert.Equal(t, 1, past.Occupancy)

	future := ClassifySlot(TimeSlot{Label: 16 * 60, Minutes: 60}, bookings, day, 1, now)
	assert.Equal(t, StateAvailable, future.State)
	assert.False(t, future.IsPast)
}

func TestClassifySlot_ZeroWidthSlot(t *testing.T) {
	day := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := ClassifySlot(TimeSlot{Label: 14 * 60}, []model.Booking{booking(1, "14:30", "15:00")}, day, 1, now)
	assert.Equal(t, StateBooked, got.State)
	assert.Equal(t, DefaultGranularity, got.Slot.Minutes)
}

func TestClassifyDay(t *testing.T) {
	day := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 17, 13, 10, 0, 0, time.UTC)
	window := model.BusinessHourWindow{DayOfWeek: time.Wednesday, Opens: "12:00", Closes: "18:00"}
	bookings := []model.Booking{booking(1, "14:00", "16:00"), booking(2, "12:00", "18:00")}

	cls := ClassifyDay(window, bookings, day, 1, 60, now)
	require.Len(t, cls, 6)

	states := make([]SlotState, len(cls))
	for i, c := range cls {
		states[i] = c.State
	}
	assert.Equal(t, []SlotState{StatePast, StatePast, StateBooked, StateBooked, StateAvailable, StateAvailable}, states)

	sum := Summarize(cls)
	assert.Equal(t, Summary{Available: 2, Booked: 2, Past: 2}, sum)
	assert.Equal(t, 6, sum.Total())

	assert.Nil(t, ClassifyDay(model.ClosedWindow(time.Wednesday), bookings, day, 1, 60, now))
}

func TestEngine_Idempotent(t *testing.T) {
	day := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 17, 12, 30, 0, 0, time.UTC)
	window := model.BusinessHourWindow{Opens: "11:00", Closes: "23:00"}
	bookings := []model.Booking{booking(1, "14:00", "16:00"), booking(1, "bad", "x"), booking(3, "20:00", "23:00")}

	assert.Equal(t, WeekDates(day, time.Monday), WeekDates(day, time.Monday))
	assert.Equal(t, GenerateTimeSlots(window, 30), GenerateTimeSlots(window, 30))
	assert.Equal(t, ClassifyDay(window, bookings, day, 1, 30, now), ClassifyDay(window, bookings, day, 1, 30, now))
	assert.Equal(t, AggregateWeeklyStats(bookings), AggregateWeeklyStats(bookings))
	assert.Equal(t, IsSlotInPast(day, "12:00", now), IsSlotInPast(day, "12:00", now))
}

func TestOpeningSpan(t *testing.T) {
	opens, closes, ok := OpeningSpan(model.BusinessHourWindow{Opens: "17:00", Closes: "00:00"})
	assert.True(t, ok)
	assert.Equal(t, Clock(17*60), opens)
	assert.Equal(t, Clock(24*60), closes)

	_, _, ok = OpeningSpan(model.BusinessHourWindow{Opens: "17:00", Closes: "12:00"})
	assert.False(t, ok)
	_, _, ok = OpeningSpan(model.BusinessHourWindow{Opens: "12:00", Closes: "23:00", IsClosed: true})
	assert.False(t, ok)
}
