package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want Money
	}{
		{"49.99", 4999},
		{"$49.9", 4990},
		{"50", 5000},
		{"1,250.5", 125050},
		{".75", 75},
		{"12.345", 1235},
		{"12.999", 1300},
		{"12.344", 1234},
		{"-3.10", -310},
		{"-0.005", -1},
		{"+7", 700},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "abc", "12.-3", "--5", ".-5", "1.2.3", "-", ".", "1e3", "99999999999999999999"} {
		_, err := ParseMoney(bad)
		assert.Error(t, err, bad)
	}
}

func TestMoney_JSON(t *testing.T) {
	var v struct {
		A Money  `json:"a"`
		B Money  `json:"b"`
		C *Money `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 19.5, "b": "20.25", "c": null}`), &v))
	assert.Equal(t, Money(1950), v.A)
	assert.Equal(t, Money(2025), v.B)
	assert.Nil(t, v.C)

	out, err := json.Marshal(Money(4999))
	require.NoError(t, err)
	assert.Equal(t, `"49.99"`, string(out))
	assert.Equal(t, "-0.05", Money(-5).String())
}

func TestParseBookingStatus(t *testing.T) {
	assert.Equal(t, StatusConfirmed, ParseBookingStatus("confirmed"))
	assert.Equal(t, StatusCancelled, ParseBookingStatus("canceled"))
	assert.Equal(t, StatusCancelled, ParseBookingStatus("CANCELLED"))
	assert.Equal(t, StatusPending, ParseBookingStatus(""))
	assert.Equal(t, StatusPending, ParseBookingStatus("whatever"))
	assert.False(t, BookingStatus("whatever").Valid())
}

func TestBooking_OnDate(t *testing.T) {
	b := Booking{Date: date(2024, 1, 17)}
	assert.True(t, b.OnDate(time.Date(2024, 1, 17, 23, 59, 0, 0, time.UTC)))
	assert.False(t, b.OnDate(date(2024, 1, 18)))
}

func TestDateBetween(t *testing.T) {
	chicago := time.FixedZone("CST", -6*3600)
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, chicago)
	to := time.Date(2024, 1, 21, 0, 0, 0, 0, chicago)

	assert.True(t, DateBetween(date(2024, 1, 15), from, to))
	assert.True(t, DateBetween(date(2024, 1, 21), from, to))
	assert.False(t, DateBetween(date(2024, 1, 14), from, to))
	assert.False(t, DateBetween(date(2024, 1, 22), from, to))
}

func TestBooking_HasPackage(t *testing.T) {
	cost := Money(2500)
	assert.False(t, (&Booking{}).HasPackage())
	assert.True(t, (&Booking{PackageID: "p1"}).HasPackage())
	assert.True(t, (&Booking{PackageCost: &cost}).HasPackage())
}

func TestWeekHours_MissingDayIsClosed(t *testing.T) {
	wh := NewWeekHours([]BusinessHourWindow{
		{DayOfWeek: time.Monday, Opens: "12:00", Closes: "22:00"},
	})

	assert.False(t, wh.For(time.Monday).IsClosed)
	assert.True(t, wh.For(time.Tuesday).IsClosed)
	assert.Equal(t, time.Tuesday, wh.For(time.Tuesday).DayOfWeek)
	assert.Len(t, wh.Slice(), 7)
}

func TestWeekHours_DuplicateKeepsOpenWindow(t *testing.T) {
	wh := NewWeekHours([]BusinessHourWindow{
		{DayOfWeek: time.Friday, IsClosed: true},
		{DayOfWeek: time.Friday, Opens: "12:00", Closes: "23:00"},
		{DayOfWeek: time.Friday, Opens: "08:00", Closes: "09:00"},
	})

	got := wh.For(time.Friday)
	assert.False(t, got.IsClosed)
	assert.Equal(t, "12:00", got.Opens)
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
		ok   bool
	}{
		{"0", time.Sunday, true},
		{"1", time.Monday, true},
		{"6", time.Saturday, true},
		{"7", time.Sunday, true},
		{"8", 0, false},
		{"-1", 0, false},
		{"Friday", time.Friday, true},
		{" thu ", time.Thursday, true},
		{"wednes", time.Wednesday, true},
		{"tu", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseWeekday(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
