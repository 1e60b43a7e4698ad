package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lanebook/internal/model"
	"lanebook/internal/timeline"
)

type staticSource struct {
	snap *model.Snapshot
}

func (s staticSource) Snapshot(context.Context, time.Time, time.Time) (*model.Snapshot, error) {
	return s.snap, nil
}

func (staticSource) UpdateBusinessHours(context.Context, model.BusinessHourWindow) error { return nil }

func (staticSource) UpdateBookingStatus(context.Context, string, model.BookingStatus) error {
	return nil
}

func testWeek(t *testing.T) *timeline.WeekView {
	t.Helper()
	cost := model.Money(7550)
	wed := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	snap := &model.Snapshot{
		Hours: model.NewWeekHours([]model.BusinessHourWindow{
			{DayOfWeek: time.Wednesday, Opens: "12:00", Closes: "15:00"},
		}),
		Bookings: []model.Booking{
			{ID: "b1", Date: wed, StartTime: "12:00", EndTime: "13:30", Lane: 1, GuestCount: 5,
				Status: model.StatusConfirmed, CustomerName: "Ann", PackageID: "p1", PackageName: "Strike", PackageCost: &cost},
			{ID: "b2", StartTime: "??", Lane: 2, GuestCount: 2, Status: model.StatusPending},
		},
	}

	logger := zerolog.Nop()
	svc := timeline.NewService(staticSource{snap: snap}, timeline.Settings{
		Name:        "Downtown Lanes",
		Location:    time.UTC,
		Lanes:       []int{1, 2},
		SlotMinutes: 60,
		WeekStart:   time.Monday,
	}, &logger)
	svc.SetClock(func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) })

	view, err := svc.Week(context.Background(), wed)
	require.NoError(t, err)
	return view
}

func TestWriteWeek(t *testing.T) {
	view := testWeek(t)

	var buf bytes.Buffer
	require.NoError(t, WriteWeek(&buf, view))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetBookings, SheetAvailability}, f.GetSheetList())

	cell := func(sheet, axis string) string {
		v, err := f.GetCellValue(sheet, axis)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Downtown Lanes", cell(SheetSummary, "B1"))
	assert.Equal(t, "2024-01-15 to 2024-01-21", cell(SheetSummary, "B2"))
	assert.Equal(t, "2", cell(SheetSummary, "B3"))
	assert.Equal(t, "7", cell(SheetSummary, "B4"))
	assert.Equal(t, "1.5", cell(SheetSummary, "B5"))
	assert.Equal(t, "75.5", cell(SheetSummary, "B6"))

	// Day table starts after a blank row.
	assert.Equal(t, "Date", cell(SheetSummary, "A11"))
	assert.Equal(t, "2024-01-15", cell(SheetSummary, "A12"))
	assert.Equal(t, "Closed", cell(SheetSummary, "C12"))
	assert.Equal(t, "12:00-15:00", cell(SheetSummary, "C14"))

	rows, err := f.GetRows(SheetBookings)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2024-01-17", "12:00", "13:30", "1 hr 30 min", "1", "5", "confirmed", "Ann", "", "Strike", "75.5"}, rows[1])
	assert.Equal(t, "", rows[2][0], "undated booking keeps an empty date")
	assert.Equal(t, "", rows[2][3])

	avail, err := f.GetRows(SheetAvailability)
	require.NoError(t, err)
	require.Len(t, avail, 3, "header plus one row per lane of the only open day")
	assert.Equal(t, []string{"2024-01-17", "1", "1", "2", "0", "14:00"}, avail[1])
	assert.Equal(t, []string{"2024-01-17", "2", "3", "0", "0", "12:00 13:00 14:00"}, avail[2])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "lanebook_week_2024-01-15.xlsx", Filename(&timeline.WeekView{Start: "2024-01-15"}))
}
